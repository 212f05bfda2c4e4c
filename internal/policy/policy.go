package policy

import (
	"context"

	"go.uber.org/zap"

	"github.com/rocketraman/audio-virtual-linker/internal/bluez"
	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/logging"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
	"github.com/rocketraman/audio-virtual-linker/internal/routing"
)

// ActionKind identifies what a decision asks the applier to do.
type ActionKind int

const (
	// ActionNoop leaves the routing graph alone.
	ActionNoop ActionKind = iota
	// ActionWire ensures a device profile and applies a wiring mode.
	ActionWire
	// ActionFallback re-evaluates all devices and wires usb if none is active.
	ActionFallback
)

// Action is the outcome of one policy decision.
type Action struct {
	Kind    ActionKind
	Profile pipewire.Profile // target profile, ActionWire only
	Mode    string           // wiring mode name, ActionWire only
}

// Noop returns the do-nothing action.
func Noop() Action { return Action{Kind: ActionNoop} }

// Wire returns an ensure-profile-and-wire action.
func Wire(profile pipewire.Profile, mode string) Action {
	return Action{Kind: ActionWire, Profile: profile, Mode: mode}
}

// Fallback returns the re-evaluate-and-fall-back action.
func Fallback() Action { return Action{Kind: ActionFallback} }

// State is the per-device watcher state. It is owned exclusively by one
// watcher goroutine and read by nobody else; cross-device coordination
// happens only through live profile queries, never through this struct.
// It does not survive restarts: after a restart the system re-derives
// everything from live queries rather than trusting stale memory.
type State struct {
	// LastTransport is the most recent transport state symbol observed.
	LastTransport bluez.TransportState
	// LastProfile is the profile most recently applied (or resolved) for
	// this device. Empty means none remembered.
	LastProfile pipewire.Profile
}

// Decide maps one typed event to an action.
//
// Priority arbitration reads live profiles at decision time: a device
// never takes over while a lower-ranked (higher-priority) device
// reports an active profile. A profile query failure on a competitor is
// treated as that competitor being inactive.
func Decide(ctx context.Context, ev bluez.Event, dev *config.Device, reg *config.Registry, profiles pipewire.ProfileStore, st *State) Action {
	switch e := ev.(type) {
	case bluez.DeviceConnected:
		return decideConnected(ctx, dev, reg, profiles, st)
	case bluez.DeviceDisconnected:
		st.LastTransport = ""
		return Fallback()
	case bluez.TransportStateChanged:
		return decideTransport(ctx, e, dev, profiles, st)
	}
	return Noop()
}

func decideConnected(ctx context.Context, dev *config.Device, reg *config.Registry, profiles pipewire.ProfileStore, st *State) Action {
	for _, other := range reg.BluetoothDevices() {
		if other.Rank >= dev.Rank {
			continue
		}
		p, err := profiles.ActiveProfile(ctx, other.Card)
		if err == nil && p.Active() {
			logging.Info("Higher-priority device active, not rewiring",
				zap.String("device", dev.Name),
				zap.String("active_device", other.Name),
				zap.String("active_profile", string(p)),
			)
			return Noop()
		}
	}

	// Remembered profile wins if still supported; otherwise default to
	// voice/mono so the microphone is available on first contact.
	profile := pipewire.ProfileHeadset
	if st.LastProfile.Active() && dev.SupportsProfile(string(st.LastProfile)) {
		profile = st.LastProfile
	}

	mode, ok := routing.ModeForProfile(dev, profile)
	if !ok {
		return Noop()
	}
	return Wire(profile, mode)
}

func decideTransport(ctx context.Context, ev bluez.TransportStateChanged, dev *config.Device, profiles pipewire.ProfileStore, st *State) Action {
	// The active/idle symbol is never trusted as a proxy for the
	// profile; the live profile is re-read on every transport event.
	resolved, err := profiles.ActiveProfile(ctx, dev.Card)
	if err != nil || !resolved.Active() {
		// Live profile indeterminate: fall back to the transport
		// heuristic and let the applier set the profile as well.
		if ev.State == bluez.TransportActive {
			resolved = pipewire.ProfileA2DP
		} else {
			resolved = pipewire.ProfileHeadset
		}
		logging.Debug("Live profile indeterminate, using transport heuristic",
			zap.String("device", dev.Name),
			zap.String("transport", string(ev.State)),
			zap.String("resolved", string(resolved)),
		)
	}

	st.LastTransport = ev.State

	// Suppress on unchanged resolved profile, not on the raw symbol:
	// transport chatter that does not move the routing target must not
	// cause redundant rewiring.
	if resolved == st.LastProfile {
		logging.Debug("Resolved profile unchanged, suppressing",
			zap.String("device", dev.Name),
			zap.String("profile", string(resolved)),
		)
		return Noop()
	}

	mode, ok := routing.ModeForProfile(dev, resolved)
	if !ok {
		return Noop()
	}
	return Wire(resolved, mode)
}
