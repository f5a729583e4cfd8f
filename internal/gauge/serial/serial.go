// internal/gauge/serial/serial.go
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	gserial "github.com/goburrow/serial"

	"github.com/viperlab/vaclog/internal/gauge"
)

// Transport implements gauge.Transport over an RS-485/RS-232 serial port.
// This adapter is byte-delivery only: framing, pacing and timeouts belong
// to the gauge client.
type Transport struct {
	port gserial.Port
}

// Config is minimal port config. The KJLC controllers speak 8N1 only.
type Config struct {
	Port     string
	BaudRate int
}

// readPoll bounds a single blocking read so ReadUntil can enforce its own
// deadline and Flush can drain without hanging.
const readPoll = 50 * time.Millisecond

// New opens the port. Fail fast at startup: an unopenable port aborts the run.
func New(cfg Config) (*Transport, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial: port required")
	}
	if cfg.BaudRate <= 0 {
		return nil, errors.New("serial: baud rate must be > 0")
	}

	port, err := gserial.Open(&gserial.Config{
		Address:  cfg.Port,
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  readPoll,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Port, err)
	}

	return &Transport{port: port}, nil
}

// Close closes the port.
func (t *Transport) Close() error {
	if t == nil || t.port == nil {
		return nil
	}
	return t.port.Close()
}

// ---- gauge.Transport ----

func (t *Transport) Write(p []byte) error {
	for len(p) > 0 {
		n, err := t.port.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// ReadUntil accumulates bytes until the terminator arrives or the timeout
// elapses. Bytes read before a timeout are discarded with the frame; a
// partial frame is useless to the caller.
func (t *Transport) ReadUntil(term byte, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, 32)
	one := make([]byte, 1)

	for {
		n, err := t.port.Read(one)
		if n > 0 {
			buf = append(buf, one[0])
			if one[0] == term {
				return buf, nil
			}
		}
		if err != nil && !errors.Is(err, gserial.ErrTimeout) && err != io.EOF {
			return nil, err
		}
		if !time.Now().Before(deadline) {
			return nil, gauge.ErrTimeout
		}
	}
}

// Flush drains whatever is sitting in the receive buffer. Costs at most one
// readPoll of wall time when the buffer is already empty.
func (t *Transport) Flush() error {
	buf := make([]byte, 64)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			if errors.Is(err, gserial.ErrTimeout) || err == io.EOF {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}
