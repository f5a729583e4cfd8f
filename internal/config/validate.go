// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/viperlab/vaclog/internal/protocol"
)

// ValidateGauge checks gauge configuration correctness.
// It performs declarative validation only and MUST NOT mutate configuration.
func ValidateGauge(cfg *GaugeConfig) error {
	if cfg.Port == "" {
		return fmt.Errorf("config: port must not be empty")
	}
	if cfg.BaudRate <= 0 {
		return fmt.Errorf("config: baudrate %d must be > 0", cfg.BaudRate)
	}
	if cfg.Address < 0 || cfg.Address > protocol.MaxAddress {
		return fmt.Errorf("config: address %d out of range 0-%d", cfg.Address, protocol.MaxAddress)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be > 0")
	}
	if cfg.MinDelay < 0 {
		return fmt.Errorf("config: min_delay must be >= 0")
	}
	if cfg.OffSentinel < 0 {
		return fmt.Errorf("config: off_sentinel must be > 0")
	}
	if cfg.OffTolerance < 0 || cfg.OffTolerance >= 1 {
		return fmt.Errorf("config: off_tolerance must be in [0, 1)")
	}
	return nil
}

// ValidateRecording checks recording configuration correctness.
func ValidateRecording(cfg *RecordingConfig) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("config: interval must be > 0")
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("config: duration must be >= 0")
	}
	if cfg.StoreData && cfg.StorePath == "" {
		return fmt.Errorf("config: store_data is set but no store path is defined")
	}
	return nil
}
