// Package watcher runs the per-device watch loops and their supervisor.
//
// Each tracked Bluetooth device gets one goroutine owning its monitor
// subprocess, interpreter and State; loops never share mutable data.
// The supervisor performs a deterministic initial reconciliation (same
// priority rule as a connect event, highest-priority live-active device
// wins, usb otherwise) and then runs the loops under an errgroup: the
// first loop to exit cancels all siblings, because a device without an
// active watcher breaks the monitoring invariant for the whole group.
//
// Cancellation is best-effort. A watcher mid-settle-delay or mid
// external command finishes that step before observing cancellation;
// latency is bounded by the longest fixed sleep.
package watcher
