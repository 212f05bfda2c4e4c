package watcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rocketraman/audio-virtual-linker/internal/bluez"
	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/logging"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
	"github.com/rocketraman/audio-virtual-linker/internal/policy"
	"github.com/rocketraman/audio-virtual-linker/internal/routing"
)

// startupGrace is the fixed pause before the initial reconciliation,
// giving the audio server time to enumerate devices after login.
const startupGrace = 2 * time.Second

// MonitorFactory creates and starts a line source for a device object
// path. The default factory spawns a dbus-monitor subprocess.
type MonitorFactory func(ctx context.Context, devicePath string) (bluez.LineSource, error)

// StartMonitor is the default MonitorFactory.
func StartMonitor(ctx context.Context, devicePath string) (bluez.LineSource, error) {
	m := bluez.NewMonitor(devicePath)
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Supervisor runs one watcher per tracked Bluetooth device. The loops
// share only the read-only catalog and the live external state; there
// is no partial-degradation mode: the first watcher to exit tears down
// every sibling.
type Supervisor struct {
	registry    *config.Registry
	profiles    pipewire.ProfileStore
	provisioner pipewire.Provisioner
	modes       *routing.Modes
	reconciler  *routing.Reconciler
	applier     *policy.Applier
	newMonitor  MonitorFactory

	// grace overrides startupGrace; tests set it to zero.
	grace time.Duration
}

// NewSupervisor assembles a Supervisor over the given capabilities.
func NewSupervisor(reg *config.Registry, profiles pipewire.ProfileStore, prov pipewire.Provisioner, modes *routing.Modes, rec *routing.Reconciler, applier *policy.Applier, factory MonitorFactory) *Supervisor {
	if factory == nil {
		factory = StartMonitor
	}
	return &Supervisor{
		registry:    reg,
		profiles:    profiles,
		provisioner: prov,
		modes:       modes,
		reconciler:  rec,
		applier:     applier,
		newMonitor:  factory,
		grace:       startupGrace,
	}
}

// Run provisions the virtual endpoints, performs the deterministic
// initial reconciliation, then runs the watch loops until one of them
// exits or ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	time.Sleep(s.grace)

	if err := s.provisioner.EnsureVirtualSink(ctx, s.registry.Virtual.Sink); err != nil {
		return fmt.Errorf("failed to provision virtual sink: %w", err)
	}
	if err := s.provisioner.EnsureVirtualSource(ctx, s.registry.Virtual.Source); err != nil {
		return fmt.Errorf("failed to provision virtual source: %w", err)
	}

	s.initialReconcile(ctx)

	g, ctx := errgroup.WithContext(ctx)
	for _, dev := range s.registry.BluetoothDevices() {
		lines, err := s.newMonitor(ctx, dev.ObjectPath(s.registry.AdapterName()))
		if err != nil {
			return fmt.Errorf("failed to start monitor for %s: %w", dev.Name, err)
		}
		w := New(dev, s.registry, s.profiles, s.applier, lines)
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	return g.Wait()
}

// initialReconcile applies the same priority rule as a connect event:
// the highest-priority device reporting a live active profile wins; if
// none does, the usb fallback is wired. Best-effort, like every other
// routing operation.
func (s *Supervisor) initialReconcile(ctx context.Context) {
	for _, dev := range s.registry.BluetoothDevices() {
		p, err := s.profiles.ActiveProfile(ctx, dev.Card)
		if err != nil || !p.Active() {
			continue
		}
		mode, ok := routing.ModeForProfile(dev, p)
		if !ok {
			continue
		}
		links, err := s.modes.Lookup(mode)
		if err != nil {
			continue
		}
		logging.Info("Initial reconciliation",
			zap.String("device", dev.Name),
			zap.String("mode", mode),
		)
		if err := s.reconciler.Apply(ctx, links); err != nil {
			logging.Warn("Initial reconcile failed", zap.Error(err))
		}
		return
	}

	links, err := s.modes.Lookup(routing.ModeUSB)
	if err != nil {
		logging.Error("No usb wiring mode configured", zap.Error(err))
		return
	}
	logging.Info("Initial reconciliation", zap.String("mode", routing.ModeUSB))
	if err := s.reconciler.Apply(ctx, links); err != nil {
		logging.Warn("Initial reconcile failed", zap.Error(err))
	}
}
