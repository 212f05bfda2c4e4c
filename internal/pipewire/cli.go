package pipewire

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/rocketraman/audio-virtual-linker/internal/logging"
)

// runner executes an external command and returns its combined stdout.
// It exists as a seam so the CLI parsers can be tested without pactl or
// pw-link installed.
type runner interface {
	run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.Debug("Running command",
		zap.String("command", name),
		zap.Strings("args", args),
	)
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// CLI implements ProfileStore, LinkGraph and Provisioner by shelling out
// to pactl and pw-link, the same operations the audio server's own
// tooling performs.
type CLI struct {
	run runner
}

// NewCLI returns a CLI backed by the real pactl and pw-link binaries.
func NewCLI() *CLI {
	return &CLI{run: execRunner{}}
}

// pactlCard is the subset of `pactl -f json list cards` output we read.
type pactlCard struct {
	Name          string `json:"name"`
	ActiveProfile string `json:"active_profile"`
}

// pactlNode is the subset of `pactl -f json list sinks|sources` we read.
type pactlNode struct {
	Name string `json:"name"`
}

// ActiveProfile implements ProfileStore.
func (c *CLI) ActiveProfile(ctx context.Context, card string) (Profile, error) {
	out, err := c.run.run(ctx, "pactl", "-f", "json", "list", "cards")
	if err != nil {
		return "", err
	}

	var cards []pactlCard
	if err := json.Unmarshal(out, &cards); err != nil {
		return "", fmt.Errorf("failed to parse pactl card list: %w", err)
	}

	for _, entry := range cards {
		if entry.Name == card {
			return Profile(entry.ActiveProfile), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCardNotFound, card)
}

// SetProfile implements ProfileStore.
func (c *CLI) SetProfile(ctx context.Context, card string, profile Profile) error {
	_, err := c.run.run(ctx, "pactl", "set-card-profile", card, string(profile))
	return err
}

// Links implements LinkGraph by parsing `pw-link -l` output.
//
// The listing shows each port at column 0 followed by indented peer
// lines: "|->" peers are targets of the current port, "|<-" peers are
// sources feeding it. Every link therefore appears twice (once from
// each side); parseLinkList deduplicates.
func (c *CLI) Links(ctx context.Context) ([]Link, error) {
	out, err := c.run.run(ctx, "pw-link", "-l")
	if err != nil {
		return nil, err
	}
	return parseLinkList(string(out)), nil
}

func parseLinkList(out string) []Link {
	var links []Link
	seen := make(map[Link]bool)
	current := ""

	add := func(l Link) {
		if l.Source == "" || l.Target == "" || seen[l] {
			return
		}
		seen[l] = true
		links = append(links, l)
	}

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			current = strings.TrimSpace(line)
			continue
		}

		peer := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(peer, "|->"):
			add(Link{Source: current, Target: strings.TrimSpace(peer[3:])})
		case strings.HasPrefix(peer, "|<-"):
			add(Link{Source: strings.TrimSpace(peer[3:]), Target: current})
		}
	}

	return links
}

// CreateLink implements LinkGraph.
func (c *CLI) CreateLink(ctx context.Context, link Link) error {
	_, err := c.run.run(ctx, "pw-link", link.Source, link.Target)
	return err
}

// DestroyLink implements LinkGraph.
func (c *CLI) DestroyLink(ctx context.Context, link Link) error {
	_, err := c.run.run(ctx, "pw-link", "-d", link.Source, link.Target)
	return err
}

// EnsureVirtualSink implements Provisioner. It is a no-op when a sink
// with the given name already exists.
func (c *CLI) EnsureVirtualSink(ctx context.Context, name string) error {
	exists, err := c.nodeExists(ctx, "sinks", name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	logging.Info("Creating virtual sink", zap.String("name", name))
	_, err = c.run.run(ctx, "pactl", "load-module", "module-null-sink",
		"sink_name="+name,
		"media.class=Audio/Sink",
		"sink_properties=device.description="+name,
	)
	return err
}

// EnsureVirtualSource implements Provisioner. The virtual microphone is
// a null sink reclassified as a virtual source so recording applications
// see it as an input device.
func (c *CLI) EnsureVirtualSource(ctx context.Context, name string) error {
	exists, err := c.nodeExists(ctx, "sources", name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	logging.Info("Creating virtual source", zap.String("name", name))
	_, err = c.run.run(ctx, "pactl", "load-module", "module-null-sink",
		"sink_name="+name,
		"media.class=Audio/Source/Virtual",
		"sink_properties=device.description="+name,
	)
	return err
}

func (c *CLI) nodeExists(ctx context.Context, kind, name string) (bool, error) {
	out, err := c.run.run(ctx, "pactl", "-f", "json", "list", kind)
	if err != nil {
		return false, err
	}

	var nodes []pactlNode
	if err := json.Unmarshal(out, &nodes); err != nil {
		return false, fmt.Errorf("failed to parse pactl %s list: %w", kind, err)
	}

	for _, n := range nodes {
		if n.Name == name {
			return true, nil
		}
	}
	return false, nil
}
