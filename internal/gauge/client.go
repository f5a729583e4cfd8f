// internal/gauge/client.go
package gauge

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/viperlab/vaclog/internal/protocol"
)

// ErrTimeout is returned by Transport.ReadUntil when no terminator arrives
// within the timeout. The client recovers it as an Absent reading.
var ErrTimeout = errors.New("gauge: response timeout")

// Transport abstracts the serial link.
// The client depends on byte delivery only; pacing and framing discipline
// live here, not in the transport.
type Transport interface {
	Write(p []byte) error
	ReadUntil(term byte, timeout time.Duration) ([]byte, error)
	// Flush discards any stale bytes sitting in the receive buffer so a
	// leftover partial response cannot be matched to a fresh command.
	Flush() error
}

// Default off-sentinel policy for the KJLC 354 family. The controller
// reports roughly 9.9E+09 Torr on the ionization channel when the filament
// is unpowered; the exact magnitude fluctuates, so classification uses a
// relative band below the sentinel rather than exact equality.
const (
	DefaultOffSentinel  = 9.9e9
	DefaultOffTolerance = 0.02
)

// Config is the immutable per-connection configuration.
type Config struct {
	Address  uint8         // 2-digit bus address
	Timeout  time.Duration // per-query response bound
	MinDelay time.Duration // quiescence required between commands

	// OffSentinel and OffTolerance override the gauge-off classification
	// band. Zero values select the defaults.
	OffSentinel  float64
	OffTolerance float64
}

// Client owns one serial connection to one controller.
// Not safe for concurrent use: the protocol requires strictly serialized
// request/response pairs.
type Client struct {
	cfg Config
	tr  Transport

	// end of the previous exchange; pacing reference for MinDelay
	lastDone time.Time
}

// New creates a client with immutable config.
func New(cfg Config, tr Transport) (*Client, error) {
	if tr == nil {
		return nil, errors.New("gauge: transport required")
	}
	if cfg.Address > protocol.MaxAddress {
		return nil, fmt.Errorf("gauge: address %d out of range 0-%d", cfg.Address, protocol.MaxAddress)
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("gauge: timeout must be > 0")
	}
	if cfg.MinDelay < 0 {
		return nil, errors.New("gauge: min delay must be >= 0")
	}
	if cfg.OffSentinel == 0 {
		cfg.OffSentinel = DefaultOffSentinel
	}
	if cfg.OffSentinel < 0 {
		return nil, errors.New("gauge: off sentinel must be > 0")
	}
	if cfg.OffTolerance == 0 {
		cfg.OffTolerance = DefaultOffTolerance
	}
	if cfg.OffTolerance < 0 || cfg.OffTolerance >= 1 {
		return nil, errors.New("gauge: off tolerance must be in [0, 1)")
	}
	return &Client{cfg: cfg, tr: tr}, nil
}

// Query performs one request/response exchange for the channel.
// A non-nil error is a transport failure and aborts the run; every
// protocol-level failure (timeout, malformed frame, instrument fault)
// is recovered as an Absent reading.
func (c *Client) Query(ch Channel) (Reading, error) {
	cmd, err := command(ch)
	if err != nil {
		return Reading{}, err
	}

	c.pace()

	_ = c.tr.Flush()

	if err := c.tr.Write(protocol.Encode(c.cfg.Address, cmd)); err != nil {
		c.lastDone = time.Now()
		return Reading{}, fmt.Errorf("gauge: write %s: %w", ch, err)
	}

	raw, err := c.tr.ReadUntil(protocol.Terminator, c.cfg.Timeout)
	c.lastDone = time.Now()
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return AbsentReading(CauseSilent), nil
		}
		return Reading{}, fmt.Errorf("gauge: read %s: %w", ch, err)
	}

	v, err := protocol.Decode(raw, c.cfg.Address)
	if err != nil {
		log.Printf("gauge: %s: %v", ch, err)
		return AbsentReading(CauseMalformed), nil
	}
	if v < 0 {
		log.Printf("gauge: %s: negative pressure %g rejected", ch, v)
		return AbsentReading(CauseMalformed), nil
	}
	if c.off(v) {
		return OffReading(v), nil
	}
	return PresentReading(v), nil
}

// pace sleeps until MinDelay has elapsed since the end of the previous
// exchange. The bus needs quiescence between commands or the controller
// misses the next one.
func (c *Client) pace() {
	if c.lastDone.IsZero() || c.cfg.MinDelay <= 0 {
		return
	}
	if wait := c.cfg.MinDelay - time.Since(c.lastDone); wait > 0 {
		time.Sleep(wait)
	}
}

func (c *Client) off(v float64) bool {
	return v >= c.cfg.OffSentinel*(1-c.cfg.OffTolerance)
}

func command(ch Channel) (protocol.Command, error) {
	switch ch {
	case Ionization:
		return protocol.ReadIonization, nil
	case Convection1:
		return protocol.ReadConvection1, nil
	case Convection2:
		return protocol.ReadConvection2, nil
	default:
		return "", fmt.Errorf("gauge: unknown channel %d", ch)
	}
}
