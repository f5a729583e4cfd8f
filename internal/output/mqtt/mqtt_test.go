// internal/output/mqtt/mqtt_test.go
package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/viperlab/vaclog/internal/gauge"
	"github.com/viperlab/vaclog/internal/sampler"
)

func TestPayload(t *testing.T) {
	snap := sampler.Snapshot{
		Index:       7,
		Timestamp:   1756700123.456,
		Ionization:  gauge.OffReading(9.9e9),
		Convection1: gauge.PresentReading(7.6e-1),
		Convection2: gauge.AbsentReading(gauge.CauseSilent),
	}

	b, err := json.Marshal(payload(snap))
	if err != nil {
		t.Fatalf("marshal err=%v", err)
	}

	var got struct {
		Index       int64                  `json:"index"`
		Timestamp   float64                `json:"timestamp"`
		Ionization  map[string]interface{} `json:"ionization"`
		Convection1 map[string]interface{} `json:"convection1"`
		Convection2 map[string]interface{} `json:"convection2"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal err=%v", err)
	}

	if got.Index != 7 {
		t.Fatalf("index=%d", got.Index)
	}
	if got.Ionization["state"] != "off" {
		t.Fatalf("ionization state=%v", got.Ionization["state"])
	}
	if got.Ionization["torr"].(float64) != 9.9e9 {
		t.Fatalf("off payload lost sentinel magnitude: %v", got.Ionization["torr"])
	}
	if got.Convection1["state"] != "present" {
		t.Fatalf("convection1 state=%v", got.Convection1["state"])
	}
	if _, ok := got.Convection2["torr"]; ok {
		t.Fatal("absent channel must not carry a value")
	}
	if got.Convection2["state"] != "absent" {
		t.Fatalf("convection2 state=%v", got.Convection2["state"])
	}
}
