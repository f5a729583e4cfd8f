// internal/gauge/client_test.go
package gauge

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeTransport replays canned responses and records the time of each write.
type fakeTransport struct {
	responses []string // consumed in order; "" means timeout
	writes    []string
	writeAt   []time.Time
	writeErr  error
	readErr   error
	flushes   int
}

func (f *fakeTransport) Write(p []byte) error {
	f.writes = append(f.writes, string(p))
	f.writeAt = append(f.writeAt, time.Now())
	return f.writeErr
}

func (f *fakeTransport) ReadUntil(term byte, timeout time.Duration) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.responses) == 0 {
		return nil, ErrTimeout
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	if r == "" {
		return nil, ErrTimeout
	}
	return []byte(r), nil
}

func (f *fakeTransport) Flush() error {
	f.flushes++
	return nil
}

func newTestClient(t *testing.T, cfg Config, tr Transport) *Client {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	c, err := New(cfg, tr)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return c
}

func TestQuery_Present(t *testing.T) {
	tr := &fakeTransport{responses: []string{"*01 1.23E-06\r"}}
	c := newTestClient(t, Config{Address: 1}, tr)

	r, err := c.Query(Ionization)
	if err != nil {
		t.Fatalf("Query err=%v", err)
	}
	if r.Status != Present {
		t.Fatalf("status=%v want present", r.Status)
	}
	if r.Value < 1.22e-6 || r.Value > 1.24e-6 {
		t.Fatalf("value=%g", r.Value)
	}
	if got, want := tr.writes[0], "#01RD\r"; got != want {
		t.Fatalf("wrote %q want %q", got, want)
	}
	if tr.flushes != 1 {
		t.Fatalf("flushes=%d want 1", tr.flushes)
	}
}

func TestQuery_CommandPerChannel(t *testing.T) {
	tr := &fakeTransport{responses: []string{"*07 1E-3\r", "*07 2E-3\r", "*07 3E-3\r"}}
	c := newTestClient(t, Config{Address: 7}, tr)

	for _, ch := range Channels {
		if _, err := c.Query(ch); err != nil {
			t.Fatalf("Query(%s) err=%v", ch, err)
		}
	}

	want := []string{"#07RD\r", "#07RDCG1\r", "#07RDCG2\r"}
	for i, w := range want {
		if tr.writes[i] != w {
			t.Fatalf("write[%d]=%q want %q", i, tr.writes[i], w)
		}
	}
}

func TestQuery_TimeoutIsAbsentSilent(t *testing.T) {
	tr := &fakeTransport{} // no responses queued
	c := newTestClient(t, Config{Address: 1}, tr)

	r, err := c.Query(Convection1)
	if err != nil {
		t.Fatalf("timeout must not be fatal, got err=%v", err)
	}
	if r.Status != Absent || r.Cause != CauseSilent {
		t.Fatalf("got %+v want absent/silent", r)
	}
	if r.Stored() != 0 {
		t.Fatalf("stored=%g want 0", r.Stored())
	}
}

func TestQuery_DecodeFailuresAreAbsentMalformed(t *testing.T) {
	frames := []string{
		"*02 1.23E-06\r", // address mismatch
		"?01 SYNTX ER\r", // instrument fault
		"*01 JUNK\r",     // not numeric
		"garbage",        // no terminator
		"*01 -1.0E-03\r", // negative pressure
	}
	for _, frame := range frames {
		tr := &fakeTransport{responses: []string{frame}}
		c := newTestClient(t, Config{Address: 1}, tr)

		r, err := c.Query(Ionization)
		if err != nil {
			t.Fatalf("frame %q: err=%v", frame, err)
		}
		if r.Status != Absent || r.Cause != CauseMalformed {
			t.Fatalf("frame %q: got %+v want absent/malformed", frame, r)
		}
	}
}

func TestQuery_OffSentinelBand(t *testing.T) {
	tests := []struct {
		payload string
		want    Status
	}{
		{"9.90E+09", Off},     // exact sentinel
		{"9.75E+09", Off},     // fluctuating just below, inside 2% band
		{"1.10E+10", Off},     // above sentinel
		{"9.50E+09", Present}, // below the band
		{"1.00E-06", Present},
	}
	for _, tt := range tests {
		tr := &fakeTransport{responses: []string{fmt.Sprintf("*01 %s\r", tt.payload)}}
		c := newTestClient(t, Config{Address: 1}, tr)

		r, err := c.Query(Ionization)
		if err != nil {
			t.Fatalf("payload %s: err=%v", tt.payload, err)
		}
		if r.Status != tt.want {
			t.Fatalf("payload %s: status=%v want %v", tt.payload, r.Status, tt.want)
		}
		if tt.want == Off {
			if r.Value == 0 {
				t.Fatalf("payload %s: off reading lost its magnitude", tt.payload)
			}
			if r.Stored() != 0 {
				t.Fatalf("payload %s: off must store 0, got %g", tt.payload, r.Stored())
			}
		}
	}
}

func TestQuery_OffSentinelOverride(t *testing.T) {
	tr := &fakeTransport{responses: []string{"*01 5.00E+05\r", "*01 5.00E+05\r"}}
	c := newTestClient(t, Config{Address: 1, OffSentinel: 5e5, OffTolerance: 0.01}, tr)

	r, err := c.Query(Ionization)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if r.Status != Off {
		t.Fatalf("status=%v want off with overridden sentinel", r.Status)
	}
}

func TestQuery_MinDelayPacing(t *testing.T) {
	const minDelay = 30 * time.Millisecond

	tr := &fakeTransport{responses: []string{"*01 1E-6\r", "*01 1E-6\r"}}
	c := newTestClient(t, Config{Address: 1, MinDelay: minDelay}, tr)

	if _, err := c.Query(Ionization); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := c.Query(Convection1); err != nil {
		t.Fatalf("err=%v", err)
	}

	if len(tr.writeAt) != 2 {
		t.Fatalf("writes=%d want 2", len(tr.writeAt))
	}
	if gap := tr.writeAt[1].Sub(tr.writeAt[0]); gap < minDelay {
		t.Fatalf("inter-command gap %v < min delay %v", gap, minDelay)
	}
}

func TestQuery_WriteErrorIsFatal(t *testing.T) {
	tr := &fakeTransport{writeErr: errors.New("port gone")}
	c := newTestClient(t, Config{Address: 1}, tr)

	if _, err := c.Query(Ionization); err == nil {
		t.Fatal("expected fatal transport error")
	}
}

func TestQuery_ReadIOErrorIsFatal(t *testing.T) {
	tr := &fakeTransport{readErr: errors.New("device unplugged")}
	c := newTestClient(t, Config{Address: 1}, tr)

	if _, err := c.Query(Ionization); err == nil {
		t.Fatal("expected fatal transport error")
	}
}

func TestNew_Validation(t *testing.T) {
	tr := &fakeTransport{}
	cases := []Config{
		{Address: 100, Timeout: time.Second}, // address out of range
		{Address: 1},                         // missing timeout
		{Address: 1, Timeout: time.Second, MinDelay: -1},
		{Address: 1, Timeout: time.Second, OffTolerance: 1.5},
	}
	for i, cfg := range cases {
		if _, err := New(cfg, tr); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	if _, err := New(Config{Address: 1, Timeout: time.Second}, nil); err == nil {
		t.Fatal("expected error for nil transport")
	}
}
