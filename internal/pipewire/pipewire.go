package pipewire

import (
	"context"
	"errors"
	"fmt"
)

// Profile is a card's active operating configuration. The live profile is
// external mutable state: it is queried fresh at every decision and never
// cached beyond a single decision.
type Profile string

const (
	// ProfileOff indicates the card is not active.
	ProfileOff Profile = "off"
	// ProfileA2DP is stereo playback only.
	ProfileA2DP Profile = "a2dp-sink"
	// ProfileHeadset is mono playback plus microphone.
	ProfileHeadset Profile = "headset-head-unit"
)

// Active reports whether the profile is a usable audio configuration
// (anything other than off).
func (p Profile) Active() bool {
	return p != "" && p != ProfileOff
}

// ErrCardNotFound is returned by ActiveProfile when the card is not
// present on the audio server (device disconnected or never seen).
var ErrCardNotFound = errors.New("card not found")

// Link is one directed routing edge between two ports. Ports are opaque
// strings; the only validation anywhere is non-emptiness.
type Link struct {
	Source string
	Target string
}

func (l Link) String() string {
	return fmt.Sprintf("%s -> %s", l.Source, l.Target)
}

// ProfileStore queries and sets card profiles.
type ProfileStore interface {
	// ActiveProfile returns the card's current profile. Returns
	// ErrCardNotFound (wrapped) when the card does not exist.
	ActiveProfile(ctx context.Context, card string) (Profile, error)
	// SetProfile switches the card to the given profile.
	SetProfile(ctx context.Context, card string, profile Profile) error
}

// LinkGraph reads and edits the live routing graph.
type LinkGraph interface {
	// Links returns every link currently present in the graph.
	Links(ctx context.Context) ([]Link, error)
	CreateLink(ctx context.Context, link Link) error
	DestroyLink(ctx context.Context, link Link) error
}

// Provisioner creates the virtual endpoints. Both operations are
// idempotent and called once at startup.
type Provisioner interface {
	EnsureVirtualSink(ctx context.Context, name string) error
	EnsureVirtualSource(ctx context.Context, name string) error
}
