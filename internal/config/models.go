package config

import "strings"

// Device classes. Exactly one usb-fallback device is required; it is the
// wiring target when no Bluetooth device is active.
const (
	ClassPrimary     = "primary"
	ClassSecondary   = "secondary"
	ClassUSBFallback = "usb-fallback"
)

// Registry represents the entire configuration file. It is loaded once at
// startup and never mutated afterwards; every component reads it as an
// immutable catalog.
type Registry struct {
	Version int       `yaml:"version"`
	Adapter string    `yaml:"adapter,omitempty"` // Bluetooth adapter, default "hci0"
	Virtual Virtual   `yaml:"virtual"`
	Devices []*Device `yaml:"devices"`
}

// Virtual names the software-only endpoints that applications attach to.
// All routing decisions move links between these nodes and physical ports.
type Virtual struct {
	Sink   string `yaml:"sink"`   // e.g. "Virtual-Sink"
	Source string `yaml:"source"` // e.g. "Virtual-Mic"
}

// Device is one entry in the device catalog.
//
// Bluetooth devices (class primary/secondary) carry an address, a pactl
// card key, a priority rank and per-profile wiring tables. The
// usb-fallback device carries only a fixed wiring table.
type Device struct {
	Name    string `yaml:"name"`
	Class   string `yaml:"class"`
	Address string `yaml:"address,omitempty"` // stable hardware address, AA:BB:CC:DD:EE:FF
	Rank    int    `yaml:"rank,omitempty"`    // lower = higher priority
	Card    string `yaml:"card,omitempty"`    // pactl card key, e.g. bluez_card.AA_BB_...

	// Profiles lists the operating profiles this device supports
	// ("a2dp-sink", "headset-head-unit").
	Profiles []string `yaml:"profiles,omitempty"`

	// StereoLinks and HFPLinks are the desired virtual-port to
	// physical-port pairs for the device's stereo and voice/mono modes.
	StereoLinks []LinkSpec `yaml:"stereo_links,omitempty"`
	HFPLinks    []LinkSpec `yaml:"hfp_links,omitempty"`

	// Links is the fixed wiring table for the usb-fallback device.
	Links []LinkSpec `yaml:"links,omitempty"`
}

// LinkSpec is one desired routing edge. Ports are opaque strings; the only
// requirement is that both ends are non-empty.
type LinkSpec struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Bluetooth reports whether this device is tracked over the notification
// stream (and therefore gets its own watcher).
func (d *Device) Bluetooth() bool {
	return d.Class == ClassPrimary || d.Class == ClassSecondary
}

// SupportsProfile reports whether the device supports the named profile.
func (d *Device) SupportsProfile(profile string) bool {
	for _, p := range d.Profiles {
		if p == profile {
			return true
		}
	}
	return false
}

// ObjectPath returns the BlueZ D-Bus object path for this device on the
// given adapter, e.g. /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF.
func (d *Device) ObjectPath(adapter string) string {
	return "/org/bluez/" + adapter + "/dev_" + strings.ReplaceAll(d.Address, ":", "_")
}

// BluetoothDevices returns the tracked Bluetooth devices ordered by rank,
// highest priority (lowest rank) first.
func (r *Registry) BluetoothDevices() []*Device {
	var out []*Device
	for _, d := range r.Devices {
		if d.Bluetooth() {
			out = append(out, d)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Rank < out[j-1].Rank; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// USBFallback returns the usb-fallback device, or nil if none is configured.
// Validate guarantees exactly one exists on a loaded registry.
func (r *Registry) USBFallback() *Device {
	for _, d := range r.Devices {
		if d.Class == ClassUSBFallback {
			return d
		}
	}
	return nil
}

// AdapterName returns the configured Bluetooth adapter, defaulting to hci0.
func (r *Registry) AdapterName() string {
	if r.Adapter == "" {
		return "hci0"
	}
	return r.Adapter
}
