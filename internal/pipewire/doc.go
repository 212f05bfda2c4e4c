// Package pipewire abstracts the live audio server state behind small
// capability interfaces.
//
// Three capabilities are exposed:
//
//   - ProfileStore: query and set a card's active profile
//   - LinkGraph: list, create and destroy port-to-port links
//   - Provisioner: idempotently create the virtual sink/source pair
//
// The CLI type implements all three by shelling out to pactl and
// pw-link. Nothing above this package runs external commands directly,
// which keeps the reconciler and the policy testable against the
// in-memory fakes (FakeProfiles, FakeGraph) in this package.
//
// # Consistency Model
//
// Live profile and graph state are shared with the audio server and
// with other watchers. They are treated as eventually consistent:
// callers re-query before every decision instead of caching, tolerating
// races at the cost of an occasional redundant external call.
package pipewire
