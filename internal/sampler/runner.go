// internal/sampler/runner.go
package sampler

import (
	"context"
	"log"
	"time"
)

// Run executes the sampling loop until RunLength records are produced or ctx
// is cancelled. Cancellation is observed at tick boundaries only; an
// in-flight query or append always completes first, so the instrument's
// command/response cursor is never left mid-frame.
//
// The inter-tick sleep is interval minus the measured tick duration (queries,
// persistence and fan-out included), clamped at zero, so tick starts stay on
// the requested cadence instead of drifting by the tick's own cost.
func (s *Sampler) Run(ctx context.Context) error {
	s.state = Sampling
	defer func() { s.state = Stopped }()

	if s.rec != nil {
		log.Printf("sampler: store last index %d", s.rec.LastIndex())
	}

	for produced := int64(0); ; {
		select {
		case <-ctx.Done():
			s.state = Draining
			return nil
		default:
		}

		tickStart := time.Now()

		if _, err := s.SampleOnce(); err != nil {
			return err
		}
		produced++

		if s.cfg.RunLength > 0 && produced >= s.cfg.RunLength {
			s.state = Draining
			return nil
		}

		sleep := s.cfg.Interval - time.Since(tickStart)
		if sleep < 0 {
			sleep = 0
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.state = Draining
			return nil
		case <-timer.C:
		}
	}
}
