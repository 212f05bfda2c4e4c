package watcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rocketraman/audio-virtual-linker/internal/bluez"
	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/logging"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
	"github.com/rocketraman/audio-virtual-linker/internal/policy"
)

// Watcher runs the interpret-decide-apply loop for one device. Events
// are processed strictly in arrival order; the per-device State is
// owned by this goroutine alone.
type Watcher struct {
	dev      *config.Device
	registry *config.Registry
	profiles pipewire.ProfileStore
	applier  *policy.Applier
	lines    bluez.LineSource
	interp   *bluez.Interpreter

	state policy.State
}

// New returns a Watcher consuming lines for dev.
func New(dev *config.Device, reg *config.Registry, profiles pipewire.ProfileStore, applier *policy.Applier, lines bluez.LineSource) *Watcher {
	return &Watcher{
		dev:      dev,
		registry: reg,
		profiles: profiles,
		applier:  applier,
		lines:    lines,
		interp:   bluez.NewInterpreter(dev.ObjectPath(reg.AdapterName())),
	}
}

// Run consumes the notification stream until it ends or ctx is
// cancelled. The stream ending is an error: it means the monitoring
// invariant for this device no longer holds, and the supervisor reacts
// by tearing down the whole group.
func (w *Watcher) Run(ctx context.Context) error {
	logging.Info("Watcher started",
		zap.String("device", w.dev.Name),
		zap.Int("rank", w.dev.Rank),
	)

	for {
		select {
		case line, ok := <-w.lines.Lines():
			if !ok {
				return fmt.Errorf("notification stream for %s ended", w.dev.Name)
			}
			ev, decoded := w.interp.Feed(line)
			if !decoded {
				continue
			}
			logging.LogDeviceEvent(w.dev.Name, ev.String())
			act := policy.Decide(ctx, ev, w.dev, w.registry, w.profiles, &w.state)
			w.applier.Apply(ctx, w.dev, act, &w.state)
		case <-ctx.Done():
			logging.Info("Watcher stopping", zap.String("device", w.dev.Name))
			return ctx.Err()
		}
	}
}
