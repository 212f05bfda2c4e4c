package bluez

import "strings"

// Interface markers and property names in the notification stream.
const (
	deviceInterface    = "org.bluez.Device1"
	transportInterface = "org.bluez.MediaTransport1"
)

// lineKind is the result of classifying one raw line.
type lineKind int

const (
	lineOther lineKind = iota
	lineBlockHeader
	lineDeviceMarker
	lineTransportMarker
	lineConnectedProp
	lineStateProp
)

// Interpreter turns the raw property-change notification stream for one
// device into typed events.
//
// The stream carries two independent sub-grammars that interleave within
// and across notification blocks, so each has its own parse cursor:
//
//   - connection: a Device1-tagged block, a "Connected" property, then a
//     boolean value on the following line
//   - transport: a MediaTransport1-tagged block whose object path lies
//     under the device path, a "State" property, then "active" or "idle"
//
// A new block header (a line starting at column 0 carrying the block's
// object path) resets every cursor; state never leaks from one block
// into the next. Anything unrecognized is ignored. Feed never fails.
//
// An Interpreter is owned by a single watcher goroutine and is not safe
// for concurrent use.
type Interpreter struct {
	devicePath string

	blockPath        string
	inDeviceBlock    bool
	inTransportBlock bool
	expectConnected  bool
	expectState      bool
}

// NewInterpreter returns an Interpreter for the device at the given
// D-Bus object path, e.g. /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF.
func NewInterpreter(devicePath string) *Interpreter {
	return &Interpreter{devicePath: devicePath}
}

// Feed consumes one raw line and returns the decoded event, if the line
// completes one. It is resilient to malformed input and block boundaries
// appearing anywhere: unmatched lines simply produce no event.
func (in *Interpreter) Feed(line string) (Event, bool) {
	// Value cursors are armed by the previous line and consumed by this
	// one, whatever it is. A property announcement whose value never
	// arrives is dropped, not carried forward.
	if in.expectConnected {
		in.expectConnected = false
		if v, ok := parseBool(line); ok {
			if v {
				return DeviceConnected{}, true
			}
			return DeviceDisconnected{}, true
		}
	}
	if in.expectState {
		in.expectState = false
		if s, ok := parseTransportState(line); ok {
			return TransportStateChanged{State: s}, true
		}
	}

	switch in.classify(line) {
	case lineBlockHeader:
		in.blockPath = extractPath(line)
		in.inDeviceBlock = false
		in.inTransportBlock = false
		in.expectConnected = false
		in.expectState = false
	case lineDeviceMarker:
		in.inDeviceBlock = in.blockPath == in.devicePath
	case lineTransportMarker:
		in.inTransportBlock = strings.HasPrefix(in.blockPath, in.devicePath+"/")
	case lineConnectedProp:
		if in.inDeviceBlock {
			in.expectConnected = true
		}
	case lineStateProp:
		if in.inTransportBlock {
			in.expectState = true
		}
	}

	return nil, false
}

// classify identifies the role a raw line plays in the grammar.
func (in *Interpreter) classify(line string) lineKind {
	if line == "" {
		return lineOther
	}

	// A block header starts at column 0 and carries the object path.
	if line[0] != ' ' && line[0] != '\t' {
		if strings.Contains(line, "path=") {
			return lineBlockHeader
		}
		return lineOther
	}

	switch {
	case strings.Contains(line, `"`+deviceInterface+`"`):
		return lineDeviceMarker
	case strings.Contains(line, `"`+transportInterface+`"`):
		return lineTransportMarker
	case strings.Contains(line, `"Connected"`):
		return lineConnectedProp
	case strings.Contains(line, `"State"`):
		return lineStateProp
	}
	return lineOther
}

// extractPath pulls the object path out of a block header line, which
// looks like:
//
//	signal time=... sender=:1.12 -> destination=... serial=123 path=/org/bluez/hci0/dev_AA_BB; interface=...; member=PropertiesChanged
func extractPath(line string) string {
	idx := strings.Index(line, "path=")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("path="):]
	if end := strings.IndexAny(rest, "; \t"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func parseBool(line string) (value bool, ok bool) {
	switch {
	case strings.Contains(line, "boolean true"):
		return true, true
	case strings.Contains(line, "boolean false"):
		return false, true
	}
	return false, false
}

func parseTransportState(line string) (TransportState, bool) {
	switch {
	case strings.Contains(line, `"active"`):
		return TransportActive, true
	case strings.Contains(line, `"idle"`):
		return TransportIdle, true
	}
	return "", false
}
