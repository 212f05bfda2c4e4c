// Package routing reconciles the desired audio-routing graph against
// the live one.
//
// A wiring mode is a named, fixed set of desired edges between the
// virtual endpoints and one physical device's ports. The mode table is
// derived from the device catalog at startup ("usb" plus
// "<device>-stereo" / "<device>-hfp" per Bluetooth device).
//
// The Reconciler computes the set difference between desired and
// current edges, restricted to the virtual sink/source boundary, and
// applies all additions before any removal so that an audio channel is
// never left without a path while its target changes. Individual link
// failures are logged and skipped; reconciliation is best-effort and
// idempotent.
package routing
