package pipewire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeRunner returns canned output per command line and records calls.
type fakeRunner struct {
	outputs map[string]string
	calls   []string
	err     error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.outputs[call]
	if !ok {
		return nil, fmt.Errorf("unexpected command: %s", call)
	}
	return []byte(out), nil
}

func TestParseLinkList(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want []Link
	}{
		{
			name: "forward and reverse views deduplicate",
			out: `Virtual-Sink:monitor_FL
  |-> alsa_output.usb:playback_FL
alsa_output.usb:playback_FL
  |<- Virtual-Sink:monitor_FL
`,
			want: []Link{
				{Source: "Virtual-Sink:monitor_FL", Target: "alsa_output.usb:playback_FL"},
			},
		},
		{
			name: "multiple peers under one port",
			out: `Virtual-Sink:monitor_FL
  |-> bt:playback_FL
  |-> usb:playback_FL
`,
			want: []Link{
				{Source: "Virtual-Sink:monitor_FL", Target: "bt:playback_FL"},
				{Source: "Virtual-Sink:monitor_FL", Target: "usb:playback_FL"},
			},
		},
		{
			name: "ports without peers produce nothing",
			out: `alsa_input.mic:capture_MONO
Virtual-Mic:input_MONO
`,
			want: nil,
		},
		{
			name: "empty output",
			out:  "",
			want: nil,
		},
		{
			name: "indented garbage is ignored",
			out: `Virtual-Sink:monitor_FL
   some unexpected annotation
  |-> bt:playback_FL
`,
			want: []Link{
				{Source: "Virtual-Sink:monitor_FL", Target: "bt:playback_FL"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLinkList(tt.out)
			if len(got) != len(tt.want) {
				t.Fatalf("parseLinkList() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("link[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCLI_ActiveProfile(t *testing.T) {
	cards := `[
  {"name": "alsa_card.pci", "active_profile": "output:analog-stereo"},
  {"name": "bluez_card.AA_BB", "active_profile": "a2dp-sink"}
]`

	tests := []struct {
		name    string
		card    string
		want    Profile
		wantErr error
	}{
		{name: "present card", card: "bluez_card.AA_BB", want: ProfileA2DP},
		{name: "absent card", card: "bluez_card.XX_YY", wantErr: ErrCardNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := &CLI{run: &fakeRunner{outputs: map[string]string{
				"pactl -f json list cards": cards,
			}}}
			got, err := cli.ActiveProfile(context.Background(), tt.card)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ActiveProfile() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ActiveProfile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ActiveProfile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLI_SetProfile(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"pactl set-card-profile bluez_card.AA_BB headset-head-unit": "",
	}}
	cli := &CLI{run: r}

	if err := cli.SetProfile(context.Background(), "bluez_card.AA_BB", ProfileHeadset); err != nil {
		t.Fatalf("SetProfile() error = %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected 1 command, got %v", r.calls)
	}
}

func TestCLI_EnsureVirtualSink(t *testing.T) {
	t.Run("already exists", func(t *testing.T) {
		r := &fakeRunner{outputs: map[string]string{
			"pactl -f json list sinks": `[{"name": "Virtual-Sink"}]`,
		}}
		cli := &CLI{run: r}
		if err := cli.EnsureVirtualSink(context.Background(), "Virtual-Sink"); err != nil {
			t.Fatalf("EnsureVirtualSink() error = %v", err)
		}
		if len(r.calls) != 1 {
			t.Errorf("expected only the list call, got %v", r.calls)
		}
	})

	t.Run("created when missing", func(t *testing.T) {
		r := &fakeRunner{outputs: map[string]string{
			"pactl -f json list sinks": `[]`,
			"pactl load-module module-null-sink sink_name=Virtual-Sink media.class=Audio/Sink sink_properties=device.description=Virtual-Sink": "536870913",
		}}
		cli := &CLI{run: r}
		if err := cli.EnsureVirtualSink(context.Background(), "Virtual-Sink"); err != nil {
			t.Fatalf("EnsureVirtualSink() error = %v", err)
		}
		if len(r.calls) != 2 {
			t.Errorf("expected list + load-module, got %v", r.calls)
		}
	})
}

func TestCLI_LinkOps(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"pw-link Virtual-Sink:monitor_FL bt:playback_FL":    "",
		"pw-link -d Virtual-Sink:monitor_FL bt:playback_FL": "",
	}}
	cli := &CLI{run: r}
	l := Link{Source: "Virtual-Sink:monitor_FL", Target: "bt:playback_FL"}

	if err := cli.CreateLink(context.Background(), l); err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}
	if err := cli.DestroyLink(context.Background(), l); err != nil {
		t.Fatalf("DestroyLink() error = %v", err)
	}
	if want := []string{
		"pw-link Virtual-Sink:monitor_FL bt:playback_FL",
		"pw-link -d Virtual-Sink:monitor_FL bt:playback_FL",
	}; len(r.calls) != 2 || r.calls[0] != want[0] || r.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}
