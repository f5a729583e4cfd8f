// internal/gauge/reading.go
package gauge

// Channel identifies one of the controller's pressure channels.
// The set is fixed by the instrument: one ionization gauge and two
// convection gauges.
type Channel int

const (
	Ionization Channel = iota
	Convection1
	Convection2
)

// Channels lists all channels in query order.
var Channels = [...]Channel{Ionization, Convection1, Convection2}

func (c Channel) String() string {
	switch c {
	case Ionization:
		return "ION"
	case Convection1:
		return "CG1"
	case Convection2:
		return "CG2"
	default:
		return "???"
	}
}

// Status tags what a reading actually is.
type Status int

const (
	// Present is a real pressure value.
	Present Status = iota
	// Off means the instrument answered with its gauge-off sentinel
	// (ionization filament unpowered). Value holds the sentinel magnitude
	// as received.
	Off
	// Absent means no usable answer for the channel.
	Absent
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case Off:
		return "off"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// AbsentCause records why a reading is Absent. Both causes normalize to the
// same stored value; the distinction exists for diagnostics and presentation.
type AbsentCause int

const (
	CauseNone AbsentCause = iota
	// CauseSilent: no response before the timeout (channel powered off).
	CauseSilent
	// CauseMalformed: a response arrived but could not be decoded.
	CauseMalformed
)

func (c AbsentCause) String() string {
	switch c {
	case CauseSilent:
		return "silent"
	case CauseMalformed:
		return "malformed"
	default:
		return "none"
	}
}

// Reading is one channel's result, tagged so that a stored zero stays
// distinguishable from "gauge off" and "no response" upstream of storage.
type Reading struct {
	Status Status
	Value  float64 // Torr; meaningful for Present and Off
	Cause  AbsentCause
}

func PresentReading(v float64) Reading { return Reading{Status: Present, Value: v} }
func OffReading(v float64) Reading     { return Reading{Status: Off, Value: v} }
func AbsentReading(c AbsentCause) Reading {
	return Reading{Status: Absent, Cause: c}
}

// Stored flattens the reading to the value that goes into the record:
// Off and Absent both store 0.0 Torr. The unflattened Reading is what the
// presentation layer receives.
func (r Reading) Stored() float64 {
	if r.Status != Present {
		return 0
	}
	return r.Value
}
