// Package bluez interprets the BlueZ property-change notification
// stream for a single device.
//
// The input is the line-oriented text emitted by dbus-monitor for
// signals under one device's object path namespace. The output is a
// lazy, unbounded sequence of typed events: DeviceConnected,
// DeviceDisconnected and TransportStateChanged.
//
// # Grammar
//
// Notification blocks begin with a column-0 header line carrying the
// block's object path. Inside a block, two sub-grammars are tracked
// with independent parse cursors:
//
//	signal ... path=/org/bluez/hci0/dev_AA_BB; interface=org.freedesktop.DBus.Properties; ...
//	   string "org.bluez.Device1"
//	   ...
//	         string "Connected"
//	         variant             boolean true
//
// produces DeviceConnected, while a MediaTransport1 block under the
// device path (e.g. .../dev_AA_BB/sep1/fd0) whose "State" property's
// value is "active" or "idle" produces TransportStateChanged.
//
// A new block header resets all cursors, so a property announcement in
// one block can never be completed by a value in a later block. Input
// the interpreter does not recognize is ignored; Feed never returns an
// error.
//
// # Monitor
//
// Monitor supervises the dbus-monitor subprocess that produces the
// stream. The subprocess's exit closes the line channel, which the
// watcher layer treats as fatal to the whole supervised group.
package bluez
