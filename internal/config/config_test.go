package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validRegistry() *Registry {
	return &Registry{
		Version: 1,
		Virtual: Virtual{Sink: "Virtual-Sink", Source: "Virtual-Mic"},
		Devices: []*Device{
			{
				Name:     "earfun",
				Class:    ClassSecondary,
				Address:  "11:22:33:44:55:66",
				Rank:     2,
				Card:     "bluez_card.11_22_33_44_55_66",
				Profiles: []string{"a2dp-sink", "headset-head-unit"},
				StereoLinks: []LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "bt2:playback_FL"},
				},
			},
			{
				Name:     "xm5",
				Class:    ClassPrimary,
				Address:  "AA:BB:CC:DD:EE:FF",
				Rank:     1,
				Card:     "bluez_card.AA_BB_CC_DD_EE_FF",
				Profiles: []string{"a2dp-sink", "headset-head-unit"},
				HFPLinks: []LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "bt1:playback_MONO"},
				},
			},
			{
				Name:  "usb",
				Class: ClassUSBFallback,
				Links: []LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "usb:playback_FL"},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Registry)
		wantErr string
	}{
		{
			name:   "valid registry",
			mutate: func(r *Registry) {},
		},
		{
			name:    "missing virtual sink",
			mutate:  func(r *Registry) { r.Virtual.Sink = "" },
			wantErr: "virtual.sink",
		},
		{
			name:    "no devices",
			mutate:  func(r *Registry) { r.Devices = nil },
			wantErr: "no devices",
		},
		{
			name:    "duplicate name",
			mutate:  func(r *Registry) { r.Devices[0].Name = "xm5" },
			wantErr: "duplicate device name",
		},
		{
			name:    "duplicate rank",
			mutate:  func(r *Registry) { r.Devices[0].Rank = 1 },
			wantErr: "rank 1 already used",
		},
		{
			name:    "bluetooth device without address",
			mutate:  func(r *Registry) { r.Devices[1].Address = "" },
			wantErr: "address is required",
		},
		{
			name:    "bluetooth device without card",
			mutate:  func(r *Registry) { r.Devices[1].Card = "" },
			wantErr: "card is required",
		},
		{
			name:    "bluetooth device without profiles",
			mutate:  func(r *Registry) { r.Devices[1].Profiles = nil },
			wantErr: "at least one profile",
		},
		{
			name:    "unknown class",
			mutate:  func(r *Registry) { r.Devices[0].Class = "bluetooth" },
			wantErr: "unknown class",
		},
		{
			name:    "no usb fallback",
			mutate:  func(r *Registry) { r.Devices = r.Devices[:2] },
			wantErr: "exactly one usb-fallback",
		},
		{
			name: "empty link port",
			mutate: func(r *Registry) {
				r.Devices[0].StereoLinks[0].Target = ""
			},
			wantErr: "source and target must be non-empty",
		},
		{
			name:    "usb fallback without links",
			mutate:  func(r *Registry) { r.Devices[2].Links = nil },
			wantErr: "usb-fallback requires links",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistry()
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestBluetoothDevicesOrderedByRank(t *testing.T) {
	r := validRegistry()

	devs := r.BluetoothDevices()
	if len(devs) != 2 {
		t.Fatalf("BluetoothDevices() returned %d devices, want 2", len(devs))
	}
	if devs[0].Name != "xm5" || devs[1].Name != "earfun" {
		t.Errorf("order = [%s %s], want [xm5 earfun]", devs[0].Name, devs[1].Name)
	}
}

func TestUSBFallback(t *testing.T) {
	r := validRegistry()
	usb := r.USBFallback()
	if usb == nil || usb.Name != "usb" {
		t.Fatalf("USBFallback() = %v, want usb device", usb)
	}
}

func TestObjectPath(t *testing.T) {
	d := &Device{Address: "AA:BB:CC:DD:EE:FF"}
	want := "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF"
	if got := d.ObjectPath("hci0"); got != want {
		t.Errorf("ObjectPath() = %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
version: 1
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
      - {source: "Virtual-Sink:monitor_FL", target: "bt:playback_FL"}
  - name: usb
    class: usb-fallback
    links:
      - {source: "Virtual-Sink:monitor_FL", target: "usb:playback_FL"}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reg.Devices) != 2 {
		t.Fatalf("loaded %d devices, want 2", len(reg.Devices))
	}
	if reg.AdapterName() != "hci0" {
		t.Errorf("AdapterName() = %q, want hci0 default", reg.AdapterName())
	}
	dev := reg.Devices[0]
	if !dev.SupportsProfile("a2dp-sink") || dev.SupportsProfile("nonsense") {
		t.Error("SupportsProfile() gave wrong answers")
	}
}

func TestLoadRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("Load() error = %v, want unsupported version", err)
	}
}

func TestWriteExample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample() error = %v", err)
	}

	// The generated example must itself be a loadable config.
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if reg.USBFallback() == nil {
		t.Error("example config has no usb-fallback device")
	}

	// Second write must refuse to clobber.
	if err := WriteExample(path); err == nil {
		t.Error("WriteExample() overwrote an existing file")
	}
}
