package policy

import (
	"context"
	"testing"

	"github.com/rocketraman/audio-virtual-linker/internal/bluez"
	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
)

const (
	cardXM5    = "bluez_card.AA_BB_CC_DD_EE_FF"
	cardEarfun = "bluez_card.11_22_33_44_55_66"
)

func testRegistry() *config.Registry {
	return &config.Registry{
		Version: 1,
		Virtual: config.Virtual{Sink: "Virtual-Sink", Source: "Virtual-Mic"},
		Devices: []*config.Device{
			{
				Name:     "xm5",
				Class:    config.ClassPrimary,
				Address:  "AA:BB:CC:DD:EE:FF",
				Rank:     1,
				Card:     cardXM5,
				Profiles: []string{"a2dp-sink", "headset-head-unit"},
				StereoLinks: []config.LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "bt1:playback_FL"},
				},
				HFPLinks: []config.LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "bt1:playback_MONO"},
					{Source: "bt1:capture_MONO", Target: "Virtual-Mic:input_MONO"},
				},
			},
			{
				Name:     "earfun",
				Class:    config.ClassSecondary,
				Address:  "11:22:33:44:55:66",
				Rank:     2,
				Card:     cardEarfun,
				Profiles: []string{"a2dp-sink", "headset-head-unit"},
				StereoLinks: []config.LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "bt2:playback_FL"},
				},
				HFPLinks: []config.LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "bt2:playback_MONO"},
				},
			},
			{
				Name:  "usb",
				Class: config.ClassUSBFallback,
				Links: []config.LinkSpec{
					{Source: "Virtual-Sink:monitor_FL", Target: "usb:playback_FL"},
				},
			},
		},
	}
}

func deviceByName(t *testing.T, reg *config.Registry, name string) *config.Device {
	t.Helper()
	for _, d := range reg.Devices {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no device %q in test registry", name)
	return nil
}

func TestDecide_Connected(t *testing.T) {
	tests := []struct {
		name     string
		device   string
		profiles map[string]pipewire.Profile
		state    State
		want     Action
	}{
		{
			name:     "no remembered profile defaults to voice",
			device:   "xm5",
			profiles: map[string]pipewire.Profile{},
			want:     Wire(pipewire.ProfileHeadset, "xm5-hfp"),
		},
		{
			name:     "remembered supported profile wins",
			device:   "xm5",
			profiles: map[string]pipewire.Profile{},
			state:    State{LastProfile: pipewire.ProfileA2DP},
			want:     Wire(pipewire.ProfileA2DP, "xm5-stereo"),
		},
		{
			name:   "lower-ranked connect while higher-priority active is noop",
			device: "earfun",
			profiles: map[string]pipewire.Profile{
				cardXM5: pipewire.ProfileA2DP,
			},
			want: Noop(),
		},
		{
			name:   "higher-priority device with off profile does not block",
			device: "earfun",
			profiles: map[string]pipewire.Profile{
				cardXM5: pipewire.ProfileOff,
			},
			want: Wire(pipewire.ProfileHeadset, "earfun-hfp"),
		},
		{
			name:   "higher-priority connect ignores lower-ranked activity",
			device: "xm5",
			profiles: map[string]pipewire.Profile{
				cardEarfun: pipewire.ProfileA2DP,
			},
			want: Wire(pipewire.ProfileHeadset, "xm5-hfp"),
		},
		{
			name:     "absent competitor card counts as inactive",
			device:   "earfun",
			profiles: map[string]pipewire.Profile{},
			want:     Wire(pipewire.ProfileHeadset, "earfun-hfp"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := testRegistry()
			dev := deviceByName(t, reg, tt.device)
			profiles := pipewire.NewFakeProfiles(tt.profiles)
			st := tt.state

			got := Decide(context.Background(), bluez.DeviceConnected{}, dev, reg, profiles, &st)
			if got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecide_Disconnected(t *testing.T) {
	reg := testRegistry()
	dev := deviceByName(t, reg, "xm5")
	profiles := pipewire.NewFakeProfiles(nil)
	st := State{LastTransport: bluez.TransportActive, LastProfile: pipewire.ProfileA2DP}

	got := Decide(context.Background(), bluez.DeviceDisconnected{}, dev, reg, profiles, &st)
	if got != Fallback() {
		t.Errorf("Decide() = %+v, want Fallback", got)
	}
	if st.LastTransport != "" {
		t.Errorf("LastTransport = %q, want cleared", st.LastTransport)
	}
	// The remembered profile survives disconnect so a reconnect can
	// restore the user's last mode.
	if st.LastProfile != pipewire.ProfileA2DP {
		t.Errorf("LastProfile = %q, want remembered a2dp-sink", st.LastProfile)
	}
}

func TestDecide_Transport(t *testing.T) {
	tests := []struct {
		name     string
		state    bluez.TransportState
		profiles map[string]pipewire.Profile
		prev     State
		want     Action
	}{
		{
			name:  "live profile drives the mode",
			state: bluez.TransportActive,
			profiles: map[string]pipewire.Profile{
				cardXM5: pipewire.ProfileHeadset,
			},
			// The symbol says active (suggesting stereo) but the live
			// profile is voice; the live profile wins.
			want: Wire(pipewire.ProfileHeadset, "xm5-hfp"),
		},
		{
			name:  "unchanged resolved profile is suppressed",
			state: bluez.TransportActive,
			profiles: map[string]pipewire.Profile{
				cardXM5: pipewire.ProfileA2DP,
			},
			prev: State{LastProfile: pipewire.ProfileA2DP},
			want: Noop(),
		},
		{
			name:     "indeterminate profile and active transport uses stereo heuristic",
			state:    bluez.TransportActive,
			profiles: map[string]pipewire.Profile{},
			want:     Wire(pipewire.ProfileA2DP, "xm5-stereo"),
		},
		{
			name:     "indeterminate profile and idle transport uses voice heuristic",
			state:    bluez.TransportIdle,
			profiles: map[string]pipewire.Profile{},
			want:     Wire(pipewire.ProfileHeadset, "xm5-hfp"),
		},
		{
			name:  "off profile treated as indeterminate",
			state: bluez.TransportIdle,
			profiles: map[string]pipewire.Profile{
				cardXM5: pipewire.ProfileOff,
			},
			want: Wire(pipewire.ProfileHeadset, "xm5-hfp"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := testRegistry()
			dev := deviceByName(t, reg, "xm5")
			profiles := pipewire.NewFakeProfiles(tt.profiles)
			st := tt.prev

			got := Decide(context.Background(), bluez.TransportStateChanged{State: tt.state}, dev, reg, profiles, &st)
			if got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
			if st.LastTransport != tt.state {
				t.Errorf("LastTransport = %q, want %q", st.LastTransport, tt.state)
			}
		})
	}
}

func TestDecide_TransportChatterSuppression(t *testing.T) {
	// Two consecutive transport events resolving to the same profile:
	// only the first may trigger a wiring action.
	reg := testRegistry()
	dev := deviceByName(t, reg, "xm5")
	profiles := pipewire.NewFakeProfiles(map[string]pipewire.Profile{
		cardXM5: pipewire.ProfileA2DP,
	})
	st := State{}

	first := Decide(context.Background(), bluez.TransportStateChanged{State: bluez.TransportActive}, dev, reg, profiles, &st)
	if first.Kind != ActionWire {
		t.Fatalf("first decision = %+v, want wire", first)
	}
	// The applier records the applied profile; simulate that.
	st.LastProfile = first.Profile

	second := Decide(context.Background(), bluez.TransportStateChanged{State: bluez.TransportIdle}, dev, reg, profiles, &st)
	if second.Kind != ActionNoop {
		t.Errorf("second decision = %+v, want noop despite active->idle symbol change", second)
	}
}
