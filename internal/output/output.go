// internal/output/output.go
package output

import "github.com/viperlab/vaclog/internal/sampler"

// Output is a live-view sink for tick snapshots. Implementations live in
// subpackages; all of them satisfy sampler.Output plus a Close for main's
// shutdown path.
type Output interface {
	Publish(s sampler.Snapshot) error
	Close() error
}
