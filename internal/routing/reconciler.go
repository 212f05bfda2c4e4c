package routing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/logging"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
)

// Reconciler moves the live routing graph to a desired edge set with
// the minimal number of link mutations.
//
// Only edges touching the virtual sink or virtual source are
// considered; links between other nodes are never inspected or removed.
// Graphs are compared as sets: edge order carries no meaning.
type Reconciler struct {
	graph     pipewire.LinkGraph
	endpoints []string
}

// NewReconciler returns a Reconciler scoped to the registry's virtual
// endpoints.
func NewReconciler(graph pipewire.LinkGraph, virtual config.Virtual) *Reconciler {
	return &Reconciler{
		graph:     graph,
		endpoints: []string{virtual.Sink, virtual.Source},
	}
}

// Apply reconciles the live graph against desired.
//
// All additions are attempted before any removal, so a channel changing
// target always has its new path in place before the old one is torn
// down; the two may briefly coexist but there is never a moment with
// zero links on a changing channel. Each mutation is independent: a
// failure is logged and the rest of the batch still runs. Applying the
// same desired set twice performs zero mutations on the second call.
//
// The returned error reflects only the inability to read the live
// graph; mutation failures are not propagated.
func (r *Reconciler) Apply(ctx context.Context, desired []pipewire.Link) error {
	all, err := r.graph.Links(ctx)
	if err != nil {
		return fmt.Errorf("failed to list current links: %w", err)
	}

	current := make(map[pipewire.Link]bool)
	for _, l := range all {
		if r.TouchesBoundary(l) {
			current[l] = true
		}
	}

	want := make(map[pipewire.Link]bool, len(desired))
	for _, l := range desired {
		want[l] = true
	}

	var toAdd, toRemove []pipewire.Link
	for l := range want {
		if !current[l] {
			toAdd = append(toAdd, l)
		}
	}
	for l := range current {
		if !want[l] {
			toRemove = append(toRemove, l)
		}
	}

	if len(toAdd) == 0 && len(toRemove) == 0 {
		logging.Debug("Routing graph already converged",
			zap.Int("edges", len(want)),
		)
		return nil
	}

	for _, l := range toAdd {
		if err := r.graph.CreateLink(ctx, l); err != nil {
			logging.Warn("Failed to create link",
				zap.String("source", l.Source),
				zap.String("target", l.Target),
				zap.Error(err),
			)
			continue
		}
		logging.LogLinkChange("add", l.Source, l.Target)
	}

	for _, l := range toRemove {
		if err := r.graph.DestroyLink(ctx, l); err != nil {
			logging.Warn("Failed to destroy link",
				zap.String("source", l.Source),
				zap.String("target", l.Target),
				zap.Error(err),
			)
			continue
		}
		logging.LogLinkChange("remove", l.Source, l.Target)
	}

	return nil
}

// TouchesBoundary reports whether the link has an endpoint on the
// virtual sink or virtual source. Ports are "node:port" strings.
func (r *Reconciler) TouchesBoundary(l pipewire.Link) bool {
	for _, ep := range r.endpoints {
		prefix := ep + ":"
		if strings.HasPrefix(l.Source, prefix) || strings.HasPrefix(l.Target, prefix) {
			return true
		}
	}
	return false
}
