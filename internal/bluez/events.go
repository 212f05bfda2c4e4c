package bluez

import "fmt"

// Kind identifies the type of a decoded event.
type Kind int

const (
	KindConnected Kind = iota
	KindDisconnected
	KindTransportState
)

// TransportState is the reported media transport state. It is a hint
// about activity, not a statement about the active profile; consumers
// must re-query the profile rather than infer it from this value.
type TransportState string

const (
	TransportActive TransportState = "active"
	TransportIdle   TransportState = "idle"
)

// Event is a typed event decoded from the raw notification stream.
type Event interface {
	Kind() Kind
	String() string
}

// DeviceConnected is emitted when the device reports Connected=true.
type DeviceConnected struct{}

func (DeviceConnected) Kind() Kind     { return KindConnected }
func (DeviceConnected) String() string { return "DeviceConnected" }

// DeviceDisconnected is emitted when the device reports Connected=false.
type DeviceDisconnected struct{}

func (DeviceDisconnected) Kind() Kind     { return KindDisconnected }
func (DeviceDisconnected) String() string { return "DeviceDisconnected" }

// TransportStateChanged is emitted when a media transport under the
// device's object path reports a new state.
type TransportStateChanged struct {
	State TransportState
}

func (TransportStateChanged) Kind() Kind { return KindTransportState }

func (e TransportStateChanged) String() string {
	return fmt.Sprintf("TransportStateChanged(%s)", e.State)
}
