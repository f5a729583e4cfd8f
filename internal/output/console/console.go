// internal/output/console/console.go
package console

import (
	"fmt"
	"io"

	"github.com/viperlab/vaclog/internal/gauge"
	"github.com/viperlab/vaclog/internal/output"
	"github.com/viperlab/vaclog/internal/sampler"
)

// Console prints each tick's unnormalized readings, so the operator can tell
// a gauge that is off, a channel that is silent, and a genuine zero apart.
type Console struct {
	w io.Writer
}

func New(w io.Writer) output.Output { return &Console{w: w} }

func (c *Console) Publish(s sampler.Snapshot) error {
	_, err := fmt.Fprintf(c.w, "[%d] [%.3fs] ION=%s CG1=%s CG2=%s Torr\n",
		s.Index, s.Timestamp,
		format(s.Ionization), format(s.Convection1), format(s.Convection2))
	return err
}

func (c *Console) Close() error { return nil }

func format(r gauge.Reading) string {
	switch r.Status {
	case gauge.Off:
		return fmt.Sprintf("%.2E(off)", r.Value)
	case gauge.Absent:
		return "--"
	default:
		return fmt.Sprintf("%.2E", r.Value)
	}
}
