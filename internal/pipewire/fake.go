package pipewire

import (
	"context"
	"fmt"
	"sync"
)

// FakeProfiles is an in-memory ProfileStore for tests. Cards not present
// in the map behave like disconnected devices (ErrCardNotFound).
type FakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]Profile

	// SetCalls records every SetProfile invocation in order.
	SetCalls []string

	// FailSet, when set, makes SetProfile for that card fail.
	FailSet map[string]bool
}

// NewFakeProfiles returns a FakeProfiles seeded with the given cards.
func NewFakeProfiles(profiles map[string]Profile) *FakeProfiles {
	if profiles == nil {
		profiles = make(map[string]Profile)
	}
	return &FakeProfiles{profiles: profiles, FailSet: make(map[string]bool)}
}

// ActiveProfile implements ProfileStore.
func (f *FakeProfiles) ActiveProfile(_ context.Context, card string) (Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[card]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCardNotFound, card)
	}
	return p, nil
}

// SetProfile implements ProfileStore.
func (f *FakeProfiles) SetProfile(_ context.Context, card string, profile Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCalls = append(f.SetCalls, card+"="+string(profile))
	if f.FailSet[card] {
		return fmt.Errorf("set-card-profile %s: injected failure", card)
	}
	f.profiles[card] = profile
	return nil
}

// Set replaces a card's profile directly, bypassing call recording.
func (f *FakeProfiles) Set(card string, profile Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[card] = profile
}

// Remove drops a card, as if the device disconnected.
func (f *FakeProfiles) Remove(card string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, card)
}

// FakeGraph is an in-memory LinkGraph for tests. It records every
// mutation so tests can assert on operation counts and ordering.
type FakeGraph struct {
	mu    sync.Mutex
	links map[Link]bool

	// Ops records each mutation as "add src -> dst" / "remove src -> dst",
	// in application order.
	Ops []string

	// FailCreate and FailDestroy inject failures for specific links.
	FailCreate map[Link]bool
	FailDestroy map[Link]bool
}

// NewFakeGraph returns a FakeGraph seeded with the given links.
func NewFakeGraph(links ...Link) *FakeGraph {
	g := &FakeGraph{
		links:       make(map[Link]bool),
		FailCreate:  make(map[Link]bool),
		FailDestroy: make(map[Link]bool),
	}
	for _, l := range links {
		g.links[l] = true
	}
	return g
}

// Links implements LinkGraph.
func (g *FakeGraph) Links(_ context.Context) ([]Link, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Link, 0, len(g.links))
	for l := range g.links {
		out = append(out, l)
	}
	return out, nil
}

// CreateLink implements LinkGraph.
func (g *FakeGraph) CreateLink(_ context.Context, link Link) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "add "+link.String())
	if g.FailCreate[link] {
		return fmt.Errorf("create %s: injected failure", link)
	}
	g.links[link] = true
	return nil
}

// DestroyLink implements LinkGraph.
func (g *FakeGraph) DestroyLink(_ context.Context, link Link) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "remove "+link.String())
	if g.FailDestroy[link] {
		return fmt.Errorf("destroy %s: injected failure", link)
	}
	delete(g.links, link)
	return nil
}

// Has reports whether the link is currently present.
func (g *FakeGraph) Has(link Link) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.links[link]
}

// ResetOps clears the recorded operation log.
func (g *FakeGraph) ResetOps() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = nil
}
