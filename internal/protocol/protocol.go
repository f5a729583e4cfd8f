// internal/protocol/protocol.go
package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Wire framing for the KJLC-ASCII addressed request/response protocol.
// Request:  '#' + 2-digit address + command + CR
// Success:  '*' + 2-digit address + ' ' + payload + CR
// Fault:    '?' + 2-digit address + ' ' + fault token + CR
const (
	RequestDelim byte = '#'
	AckDelim     byte = '*'
	NakDelim     byte = '?'
	Terminator   byte = '\r'
)

// Command selects which channel's pressure a request asks for.
type Command string

const (
	ReadIonization  Command = "RD"
	ReadConvection1 Command = "RDCG1"
	ReadConvection2 Command = "RDCG2"
)

// MaxAddress is the highest bus address representable in the 2-digit field.
const MaxAddress = 99

// Encode builds a complete request frame for the given unit address.
// The address is always zero-padded to two digits.
func Encode(addr uint8, cmd Command) []byte {
	return []byte(fmt.Sprintf("%c%02d%s%c", RequestDelim, addr, cmd, Terminator))
}

// Kind classifies why a response could not be turned into a value.
type Kind int

const (
	// Malformed means the buffer does not match the frame grammar at all.
	Malformed Kind = iota
	// AddressMismatch means a well-formed frame echoed a different unit address.
	AddressMismatch
	// InstrumentError means the controller answered with a fault frame ('?').
	InstrumentError
	// NotNumeric means the success payload did not parse as a pressure value.
	NotNumeric
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case AddressMismatch:
		return "address mismatch"
	case InstrumentError:
		return "instrument error"
	case NotNumeric:
		return "not numeric"
	default:
		return "unknown"
	}
}

// ParseError reports a response frame that could not be decoded.
// It is never fatal; callers recover it as a missing reading.
type ParseError struct {
	Kind  Kind
	Raw   string // frame as received, terminator stripped
	Addr  uint8  // echoed address, valid for AddressMismatch and InstrumentError
	Fault string // controller fault token, valid for InstrumentError
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case AddressMismatch:
		return fmt.Sprintf("protocol: address mismatch: frame from unit %02d: %q", e.Addr, e.Raw)
	case InstrumentError:
		return fmt.Sprintf("protocol: instrument fault %q: %q", e.Fault, e.Raw)
	case NotNumeric:
		return fmt.Sprintf("protocol: payload not numeric: %q", e.Raw)
	default:
		return fmt.Sprintf("protocol: malformed frame: %q", e.Raw)
	}
}

// Decode parses a raw response buffer and returns the pressure payload in Torr.
// The buffer must contain the frame terminator; everything after it is ignored.
// addr is the unit address the request was sent to.
func Decode(raw []byte, addr uint8) (float64, error) {
	end := bytes.IndexByte(raw, Terminator)
	if end < 0 {
		return 0, &ParseError{Kind: Malformed, Raw: string(raw)}
	}
	frame := string(raw[:end])

	// delimiter(1) + address(2) is the minimum shape of any frame
	if len(frame) < 3 {
		return 0, &ParseError{Kind: Malformed, Raw: frame}
	}

	delim := frame[0]
	if delim != AckDelim && delim != NakDelim {
		return 0, &ParseError{Kind: Malformed, Raw: frame}
	}

	echo, err := strconv.Atoi(frame[1:3])
	if err != nil || frame[1] < '0' || frame[1] > '9' {
		return 0, &ParseError{Kind: Malformed, Raw: frame}
	}

	rest := strings.TrimSpace(frame[3:])

	if delim == NakDelim {
		return 0, &ParseError{Kind: InstrumentError, Raw: frame, Addr: uint8(echo), Fault: rest}
	}

	if echo != int(addr) {
		return 0, &ParseError{Kind: AddressMismatch, Raw: frame, Addr: uint8(echo)}
	}

	// Payloads look like "1.23E-06". Some firmware appends a unit or status
	// word after the value; take the first field only.
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		rest = rest[:i]
	}

	v, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, &ParseError{Kind: NotNumeric, Raw: frame}
	}
	return v, nil
}
