// Package policy decides how the routing graph should react to device
// events and applies those decisions.
//
// Decide is the pure decision step: event in, action out. It consults
// only the read-only device catalog, the per-watcher State and live
// profile queries. The rules, in priority order:
//
//   - Connected: never override a higher-priority device that reports
//     an active profile; otherwise prefer the remembered profile, else
//     default to headset-head-unit so the microphone works on first
//     contact.
//   - Disconnected: fall back, but only after re-checking every device;
//     any active device means no change.
//   - TransportStateChanged: re-resolve the profile from a live query
//     (active/idle is not a proxy for profile) and suppress the action
//     entirely if the resolved profile matches the previous decision.
//
// Applier is the impure execution step. A profile set is skipped when
// the live profile already matches, and every profile switch is
// followed by a fixed settle delay before links are touched. All
// external failures are logged and absorbed; nothing here ever kills a
// watcher loop.
package policy
