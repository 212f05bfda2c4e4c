package bluez

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rocketraman/audio-virtual-linker/internal/logging"
)

// monitorWaitDelay bounds how long a terminating monitor subprocess may
// linger after SIGTERM before it is killed outright.
const monitorWaitDelay = 3 * time.Second

// LineSource produces the raw notification lines for one device. The
// channel is unbounded in time: it blocks until the next line and closes
// when the underlying source ends.
type LineSource interface {
	Lines() <-chan string
}

// Monitor runs a dbus-monitor subprocess scoped to one device's object
// path namespace and exposes its output line by line.
//
// The subprocess is the ordering authority: lines arrive in the order
// the bus delivered them and are never reordered or buffered beyond the
// scanner. When the subprocess exits for any reason the Lines channel
// closes, which the watcher treats as loop death.
type Monitor struct {
	devicePath string
	lines      chan string
}

// NewMonitor returns an unstarted Monitor for the given device object path.
func NewMonitor(devicePath string) *Monitor {
	return &Monitor{
		devicePath: devicePath,
		lines:      make(chan string),
	}
}

// Start launches the subprocess. Cancellation of ctx sends SIGTERM;
// a stuck process is killed after monitorWaitDelay. No in-flight line
// is forcibly dropped: the reader drains until the pipe closes.
func (m *Monitor) Start(ctx context.Context) error {
	rule := fmt.Sprintf("type='signal',sender='org.bluez',path_namespace='%s'", m.devicePath)
	cmd := exec.CommandContext(ctx, "dbus-monitor", "--system", rule)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = monitorWaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open monitor pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start dbus-monitor: %w", err)
	}

	logging.Debug("Started notification monitor",
		zap.String("path", m.devicePath),
		zap.Int("pid", cmd.Process.Pid),
	)

	go func() {
		defer close(m.lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			m.lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logging.Warn("Monitor stream read error",
				zap.String("path", m.devicePath),
				zap.Error(err),
			)
		}
		// Reap the subprocess; a SIGTERM-induced exit is not noteworthy.
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			logging.Warn("Monitor exited",
				zap.String("path", m.devicePath),
				zap.Error(err),
			)
		}
	}()

	return nil
}

// Lines implements LineSource.
func (m *Monitor) Lines() <-chan string {
	return m.lines
}
