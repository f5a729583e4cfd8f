// internal/recorder/csv.go

// Package recorder persists sample records to an append-only CSV table.
// Reopening an existing store resumes index assignment after its last
// committed row; a trailing partial line (crash artifact) is dropped so the
// next append starts on a clean row boundary.
package recorder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/viperlab/vaclog/internal/sampler"
)

var header = []string{"index", "timestamp", "ionization", "convection1", "convection2"}

// CSV implements sampler.Recorder on a single append-only file.
// One writer per store for the process lifetime; no locking.
type CSV struct {
	path string
	f    *os.File
	w    *csv.Writer

	next      int64
	last      int64
	count     int64
	hasHeader bool
}

// Open opens or creates the store at path and positions for appending.
func Open(path string) (*CSV, error) {
	if path == "" {
		return nil, errors.New("recorder: store path required")
	}

	c := &CSV{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fresh store
	case err != nil:
		return nil, fmt.Errorf("recorder: read store: %w", err)
	default:
		if err := c.resume(data); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("recorder: open store: %w", err)
	}
	c.f = f
	c.w = csv.NewWriter(f)

	if !c.hasHeader {
		if err := c.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return c, nil
}

// resume scans existing content, validates the shape, truncates a trailing
// partial line and restores the index counters.
func (c *CSV) resume(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	// keep complete lines only; a partial tail is an interrupted append
	complete := data
	if nl := bytes.LastIndexByte(data, '\n'); nl < 0 {
		complete = nil
	} else if nl != len(data)-1 {
		complete = data[:nl+1]
	}
	if len(complete) != len(data) {
		if err := os.Truncate(c.path, int64(len(complete))); err != nil {
			return fmt.Errorf("recorder: truncate partial row: %w", err)
		}
	}
	if len(complete) == 0 {
		return nil
	}

	r := csv.NewReader(bytes.NewReader(complete))
	r.FieldsPerRecord = len(header)
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("recorder: store not a %d-column table: %w", len(header), err)
	}
	if len(rows) == 0 {
		return nil
	}
	for i, col := range header {
		if rows[0][i] != col {
			return fmt.Errorf("recorder: unexpected store header %v", rows[0])
		}
	}
	c.hasHeader = true

	c.count = int64(len(rows) - 1)
	if c.count > 0 {
		last, err := strconv.ParseInt(rows[len(rows)-1][0], 10, 64)
		if err != nil {
			return fmt.Errorf("recorder: bad index in last row: %w", err)
		}
		c.last = last
		c.next = last + 1
	}
	return nil
}

func (c *CSV) writeHeader() error {
	if err := c.w.Write(header); err != nil {
		return fmt.Errorf("recorder: write header: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("recorder: write header: %w", err)
	}
	return nil
}

// Append commits one record and assigns its index. The row is flushed and
// synced before returning so a completed tick is durable.
func (c *CSV) Append(rec *sampler.Record) error {
	if c == nil || c.f == nil {
		return errors.New("recorder: store closed")
	}

	rec.Index = c.next

	row := []string{
		strconv.FormatInt(rec.Index, 10),
		strconv.FormatFloat(rec.Timestamp, 'f', 3, 64),
		strconv.FormatFloat(rec.Ionization, 'E', 6, 64),
		strconv.FormatFloat(rec.Convection1, 'E', 6, 64),
		strconv.FormatFloat(rec.Convection2, 'E', 6, 64),
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("recorder: append: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("recorder: append: %w", err)
	}
	if err := c.f.Sync(); err != nil {
		return fmt.Errorf("recorder: sync: %w", err)
	}

	c.last = rec.Index
	c.next++
	c.count++
	return nil
}

// LastIndex reports the last committed index, or 0 for an absent or empty
// store.
func (c *CSV) LastIndex() int64 {
	if c.count == 0 {
		return 0
	}
	return c.last
}

// Close flushes and closes the store file.
func (c *CSV) Close() error {
	if c == nil || c.f == nil {
		return nil
	}
	c.w.Flush()
	err := c.w.Error()
	if cerr := c.f.Close(); err == nil {
		err = cerr
	}
	c.f = nil
	return err
}
