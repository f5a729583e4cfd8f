// internal/sampler/types.go
package sampler

import "github.com/viperlab/vaclog/internal/gauge"

// Record is the unit of persistence: one row of the append-only store.
// All three pressures are normalized (Off and Absent flattened to 0.0 Torr).
// Index is assigned by the Recorder at append time, continuing whatever
// index already exists in the store.
type Record struct {
	Index       int64
	Timestamp   float64 // seconds since epoch
	Ionization  float64 // Torr
	Convection1 float64 // Torr
	Convection2 float64 // Torr
}

// Snapshot is the unnormalized per-tick view handed to outputs, so an
// operator can tell "gauge off" and "no response" apart from a zero reading.
type Snapshot struct {
	Index       int64
	Timestamp   float64
	Ionization  gauge.Reading
	Convection1 gauge.Reading
	Convection2 gauge.Reading
}

// Querier is the per-channel gauge operation the sampler drives.
// A non-nil error is a transport failure and ends the run.
type Querier interface {
	Query(ch gauge.Channel) (gauge.Reading, error)
}

// Recorder persists records. Append assigns rec.Index from its append
// position and must be all-or-nothing per record; LastIndex reports the
// last committed index, or 0 when the store is absent or empty.
type Recorder interface {
	Append(rec *Record) error
	LastIndex() int64
}

// Output receives the unnormalized snapshot of each tick.
// Outputs are best-effort: publish failures never stop sampling.
type Output interface {
	Publish(s Snapshot) error
}
