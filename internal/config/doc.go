// Package config provides the static device catalog for audio-virtual-linker.
//
// The catalog is a YAML file describing the virtual endpoints, the
// tracked Bluetooth headsets (identity, priority rank, supported
// profiles, per-mode wiring tables) and the USB fallback wiring table.
// It is loaded once at startup and treated as immutable afterwards;
// nothing in the daemon writes it back.
//
// # Configuration File Location
//
// The file lives at $XDG_CONFIG_HOME/avl/config.yaml, falling back to
// $HOME/.config/avl/config.yaml. The --config flag overrides the path.
//
// # Priority
//
// Bluetooth devices carry an integer rank; lower rank means higher
// priority. Ranks must be unique. A device never takes over routing
// while a lower-ranked device reports an active profile.
//
// # Usage Example
//
//	registry, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, dev := range registry.BluetoothDevices() {
//	    fmt.Println(dev.Name, dev.Rank)
//	}
//
// # Thread Safety
//
// A loaded Registry is read-only shared state; concurrent readers need
// no synchronization.
package config
