package policy

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/logging"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
	"github.com/rocketraman/audio-virtual-linker/internal/routing"
)

// SettleDelay is the fixed pause after a profile change, giving the
// audio server time to rebuild its node/port topology before links are
// touched. It is deliberately not adjustable per call.
const SettleDelay = 400 * time.Millisecond

// Applier executes actions against the live system. Every failure along
// the way is logged and absorbed: a watcher loop never dies because a
// profile set or a link operation failed.
type Applier struct {
	registry   *config.Registry
	profiles   pipewire.ProfileStore
	modes      *routing.Modes
	reconciler *routing.Reconciler

	// settle overrides SettleDelay; tests set it to zero.
	settle time.Duration
}

// NewApplier returns an Applier using the default settle delay.
func NewApplier(reg *config.Registry, profiles pipewire.ProfileStore, modes *routing.Modes, rec *routing.Reconciler) *Applier {
	return &Applier{
		registry:   reg,
		profiles:   profiles,
		modes:      modes,
		reconciler: rec,
		settle:     SettleDelay,
	}
}

// Apply executes act for dev, updating the watcher state on success
// paths. It never returns an error; failure semantics are log-and-continue.
func (a *Applier) Apply(ctx context.Context, dev *config.Device, act Action, st *State) {
	switch act.Kind {
	case ActionNoop:
	case ActionWire:
		a.ensureProfileAndWire(ctx, dev, act, st)
	case ActionFallback:
		a.wireFallback(ctx)
	}
}

// ensureProfileAndWire queries the device's live profile, switches it if
// it differs from the target (followed by the settle delay), then
// reconciles the mode's desired edge set.
func (a *Applier) ensureProfileAndWire(ctx context.Context, dev *config.Device, act Action, st *State) {
	live, err := a.profiles.ActiveProfile(ctx, dev.Card)
	if err != nil && !errors.Is(err, pipewire.ErrCardNotFound) {
		logging.Warn("Failed to query live profile",
			zap.String("device", dev.Name),
			zap.Error(err),
		)
	}

	if err != nil || live != act.Profile {
		logging.LogProfileChange(dev.Card, string(live), string(act.Profile))
		if err := a.profiles.SetProfile(ctx, dev.Card, act.Profile); err != nil {
			logging.Warn("Failed to set card profile",
				zap.String("device", dev.Name),
				zap.String("profile", string(act.Profile)),
				zap.Error(err),
			)
		}
		// The audio server rebuilds nodes asynchronously after a profile
		// switch; linking too early targets ports that do not exist yet.
		time.Sleep(a.settle)
	}

	links, err := a.modes.Lookup(act.Mode)
	if err != nil {
		logging.Error("Wiring mode lookup failed",
			zap.String("device", dev.Name),
			zap.String("mode", act.Mode),
			zap.Error(err),
		)
		return
	}

	if err := a.reconciler.Apply(ctx, links); err != nil {
		logging.Warn("Reconcile failed",
			zap.String("device", dev.Name),
			zap.String("mode", act.Mode),
			zap.Error(err),
		)
		return
	}

	st.LastProfile = act.Profile
	logging.Info("Wired mode",
		zap.String("device", dev.Name),
		zap.String("mode", act.Mode),
		zap.String("profile", string(act.Profile)),
	)
}

// wireFallback re-evaluates every Bluetooth device's live profile. If
// any reports an active profile the graph is left alone (that device's
// own watcher owns the routing); otherwise the usb edge set is applied.
func (a *Applier) wireFallback(ctx context.Context) {
	for _, dev := range a.registry.BluetoothDevices() {
		p, err := a.profiles.ActiveProfile(ctx, dev.Card)
		if err == nil && p.Active() {
			logging.Info("Device still active, skipping usb fallback",
				zap.String("device", dev.Name),
				zap.String("profile", string(p)),
			)
			return
		}
	}

	links, err := a.modes.Lookup(routing.ModeUSB)
	if err != nil {
		logging.Error("No usb wiring mode configured", zap.Error(err))
		return
	}

	if err := a.reconciler.Apply(ctx, links); err != nil {
		logging.Warn("Fallback reconcile failed", zap.Error(err))
		return
	}

	logging.Info("Wired mode", zap.String("mode", routing.ModeUSB))
}
