package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "avl"
	configFile = "config.yaml"
)

// DefaultDir returns the configuration directory, following XDG
// conventions: $XDG_CONFIG_HOME/avl or $HOME/.config/avl. The daemon is
// PipeWire/BlueZ-bound, so only Unix-style locations apply.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the full path to the configuration file.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads and validates the registry at path. If path is empty the
// default location is used.
func Load(path string) (*Registry, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if registry.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", registry.Version)
	}

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &registry, nil
}

// Validate checks the structural invariants of a registry: named virtual
// endpoints, exactly one usb-fallback device, unique names and ranks, a
// complete identity for every Bluetooth device, and non-empty ports on
// every wiring edge.
func (r *Registry) Validate() error {
	if r.Virtual.Sink == "" || r.Virtual.Source == "" {
		return fmt.Errorf("virtual.sink and virtual.source must be set")
	}
	if len(r.Devices) == 0 {
		return fmt.Errorf("no devices configured")
	}

	names := make(map[string]bool)
	ranks := make(map[int]string)
	fallbacks := 0

	for _, d := range r.Devices {
		if d.Name == "" {
			return fmt.Errorf("device with empty name")
		}
		if names[d.Name] {
			return fmt.Errorf("duplicate device name %q", d.Name)
		}
		names[d.Name] = true

		switch d.Class {
		case ClassPrimary, ClassSecondary:
			if d.Address == "" {
				return fmt.Errorf("device %q: address is required", d.Name)
			}
			if d.Card == "" {
				return fmt.Errorf("device %q: card is required", d.Name)
			}
			if len(d.Profiles) == 0 {
				return fmt.Errorf("device %q: at least one profile is required", d.Name)
			}
			if prev, dup := ranks[d.Rank]; dup {
				return fmt.Errorf("device %q: rank %d already used by %q", d.Name, d.Rank, prev)
			}
			ranks[d.Rank] = d.Name
			if err := validateLinks(d.Name, "stereo_links", d.StereoLinks); err != nil {
				return err
			}
			if err := validateLinks(d.Name, "hfp_links", d.HFPLinks); err != nil {
				return err
			}
		case ClassUSBFallback:
			fallbacks++
			if len(d.Links) == 0 {
				return fmt.Errorf("device %q: usb-fallback requires links", d.Name)
			}
			if err := validateLinks(d.Name, "links", d.Links); err != nil {
				return err
			}
		default:
			return fmt.Errorf("device %q: unknown class %q", d.Name, d.Class)
		}
	}

	if fallbacks != 1 {
		return fmt.Errorf("exactly one usb-fallback device is required, found %d", fallbacks)
	}

	return nil
}

func validateLinks(device, field string, links []LinkSpec) error {
	for i, l := range links {
		if l.Source == "" || l.Target == "" {
			return fmt.Errorf("device %q: %s[%d]: source and target must be non-empty", device, field, i)
		}
	}
	return nil
}

// WriteExample writes a commented example configuration to path,
// creating the parent directory if needed. The write is atomic
// (tmp file + rename) to avoid leaving a torn file on crash.
// It refuses to overwrite an existing file.
func WriteExample(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

const exampleConfig = `# audio-virtual-linker configuration
#
# Applications play into virtual.sink and record from virtual.source;
# avl keeps those endpoints linked to the best available physical device.
#
# Port names are opaque strings as reported by "pw-link -o" / "pw-link -i".

version: 1
adapter: hci0

virtual:
  sink: Virtual-Sink
  source: Virtual-Mic

devices:
  - name: xm5
    class: primary
    address: "AA:BB:CC:DD:EE:FF"
    rank: 1
    card: bluez_card.AA_BB_CC_DD_EE_FF
    profiles: [a2dp-sink, headset-head-unit]
    stereo_links:
      - {source: "Virtual-Sink:monitor_FL", target: "bluez_output.AA_BB_CC_DD_EE_FF.1:playback_FL"}
      - {source: "Virtual-Sink:monitor_FR", target: "bluez_output.AA_BB_CC_DD_EE_FF.1:playback_FR"}
    hfp_links:
      - {source: "Virtual-Sink:monitor_FL", target: "bluez_output.AA_BB_CC_DD_EE_FF.1:playback_MONO"}
      - {source: "Virtual-Sink:monitor_FR", target: "bluez_output.AA_BB_CC_DD_EE_FF.1:playback_MONO"}
      - {source: "bluez_input.AA_BB_CC_DD_EE_FF.0:capture_MONO", target: "Virtual-Mic:input_MONO"}

  - name: earfun
    class: secondary
    address: "11:22:33:44:55:66"
    rank: 2
    card: bluez_card.11_22_33_44_55_66
    profiles: [a2dp-sink, headset-head-unit]
    stereo_links:
      - {source: "Virtual-Sink:monitor_FL", target: "bluez_output.11_22_33_44_55_66.1:playback_FL"}
      - {source: "Virtual-Sink:monitor_FR", target: "bluez_output.11_22_33_44_55_66.1:playback_FR"}
    hfp_links:
      - {source: "Virtual-Sink:monitor_FL", target: "bluez_output.11_22_33_44_55_66.1:playback_MONO"}
      - {source: "Virtual-Sink:monitor_FR", target: "bluez_output.11_22_33_44_55_66.1:playback_MONO"}
      - {source: "bluez_input.11_22_33_44_55_66.0:capture_MONO", target: "Virtual-Mic:input_MONO"}

  - name: usb
    class: usb-fallback
    links:
      - {source: "Virtual-Sink:monitor_FL", target: "alsa_output.usb-headset:playback_FL"}
      - {source: "Virtual-Sink:monitor_FR", target: "alsa_output.usb-headset:playback_FR"}
      - {source: "alsa_input.usb-headset:capture_MONO", target: "Virtual-Mic:input_MONO"}
`
