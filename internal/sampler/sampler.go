// internal/sampler/sampler.go
package sampler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/viperlab/vaclog/internal/gauge"
)

// Config is the minimal runtime config the sampler needs.
type Config struct {
	// Interval is the nominal time between the starts of consecutive ticks.
	Interval time.Duration
	// RunLength is the number of records to produce; 0 means sample until
	// cancelled.
	RunLength int64
}

// Sampler drives the fixed-cadence sampling loop. It is the single owner of
// the gauge connection and the store for the lifetime of a run; everything
// happens sequentially on the calling goroutine.
type Sampler struct {
	cfg  Config
	gc   Querier
	rec  Recorder // nil when persistence is disabled
	outs []Output

	state State
	count int64 // snapshot index source when rec is nil
}

// New creates a sampler with immutable config. rec may be nil to disable
// persistence; outs may be empty.
func New(cfg Config, gc Querier, rec Recorder, outs []Output) (*Sampler, error) {
	if gc == nil {
		return nil, errors.New("sampler: querier required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("sampler: interval must be > 0")
	}
	if cfg.RunLength < 0 {
		return nil, errors.New("sampler: run length must be >= 0")
	}
	return &Sampler{cfg: cfg, gc: gc, rec: rec, outs: outs, state: Idle}, nil
}

// State reports the sampler's lifecycle position. Meaningful only before
// Run is called or after it returns; Run mutates it from its own goroutine.
func (s *Sampler) State() State { return s.state }

// SampleOnce performs exactly one tick: query every channel, persist the
// normalized record, fan the unnormalized snapshot out to the outputs.
// Channel failures degrade to absent readings; only transport and recorder
// failures surface as errors.
func (s *Sampler) SampleOnce() (Snapshot, error) {
	readings := make([]gauge.Reading, len(gauge.Channels))
	for i, ch := range gauge.Channels {
		r, err := s.gc.Query(ch)
		if err != nil {
			return Snapshot{}, err
		}
		if r.Status != gauge.Present {
			log.Printf("sampler: %s: no reading (%s)", ch, describe(r))
		}
		readings[i] = r
	}

	rec := Record{
		Timestamp:   float64(time.Now().UnixNano()) / 1e9,
		Ionization:  readings[0].Stored(),
		Convection1: readings[1].Stored(),
		Convection2: readings[2].Stored(),
	}

	if s.rec != nil {
		// A failed append threatens data integrity; silent loss defeats
		// the logger's purpose, so this ends the run.
		if err := s.rec.Append(&rec); err != nil {
			return Snapshot{}, fmt.Errorf("sampler: append: %w", err)
		}
	} else {
		rec.Index = s.count
	}
	s.count++

	snap := Snapshot{
		Index:       rec.Index,
		Timestamp:   rec.Timestamp,
		Ionization:  readings[0],
		Convection1: readings[1],
		Convection2: readings[2],
	}

	for _, out := range s.outs {
		if err := out.Publish(snap); err != nil {
			log.Printf("sampler: output error: %v", err)
		}
	}

	return snap, nil
}

func describe(r gauge.Reading) string {
	if r.Status == gauge.Off {
		return "gauge off"
	}
	return r.Cause.String()
}
