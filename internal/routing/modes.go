package routing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
)

// ModeUSB is the fallback wiring mode, always present.
const ModeUSB = "usb"

// StereoMode returns the wiring mode name for a device's stereo profile.
func StereoMode(dev *config.Device) string { return dev.Name + "-stereo" }

// HFPMode returns the wiring mode name for a device's voice/mono profile.
func HFPMode(dev *config.Device) string { return dev.Name + "-hfp" }

// ModeForProfile maps a device's live profile to its wiring mode name.
// Returns false for off or unrecognized profiles.
func ModeForProfile(dev *config.Device, profile pipewire.Profile) (string, bool) {
	switch profile {
	case pipewire.ProfileA2DP:
		return StereoMode(dev), true
	case pipewire.ProfileHeadset:
		return HFPMode(dev), true
	}
	return "", false
}

// Modes is the fixed table mapping wiring-mode names to desired edge
// sets. It is built once from the registry and never changes.
type Modes struct {
	table map[string][]pipewire.Link
}

// BuildModes derives the mode table from the device catalog: "usb" from
// the fallback wiring table, plus "<device>-stereo" and "<device>-hfp"
// for each Bluetooth device supporting the matching profile.
func BuildModes(reg *config.Registry) *Modes {
	table := make(map[string][]pipewire.Link)

	if usb := reg.USBFallback(); usb != nil {
		table[ModeUSB] = toLinks(usb.Links)
	}

	for _, dev := range reg.BluetoothDevices() {
		if dev.SupportsProfile(string(pipewire.ProfileA2DP)) && len(dev.StereoLinks) > 0 {
			table[StereoMode(dev)] = toLinks(dev.StereoLinks)
		}
		if dev.SupportsProfile(string(pipewire.ProfileHeadset)) && len(dev.HFPLinks) > 0 {
			table[HFPMode(dev)] = toLinks(dev.HFPLinks)
		}
	}

	return &Modes{table: table}
}

func toLinks(specs []config.LinkSpec) []pipewire.Link {
	links := make([]pipewire.Link, 0, len(specs))
	for _, s := range specs {
		links = append(links, pipewire.Link{Source: s.Source, Target: s.Target})
	}
	return links
}

// Lookup returns the desired edge set for a mode name.
func (m *Modes) Lookup(name string) ([]pipewire.Link, error) {
	links, ok := m.table[name]
	if !ok {
		return nil, fmt.Errorf("unknown wiring mode %q (available: %s)", name, strings.Join(m.Names(), ", "))
	}
	return links, nil
}

// Names returns all mode names, sorted.
func (m *Modes) Names() []string {
	names := make([]string, 0, len(m.table))
	for name := range m.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
