// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// GaugeConfig is the immutable serial/instrument configuration,
// read from the [Serial] section:
//
//	[Serial]
//	port = /dev/ttyUSB0
//	baudrate = 19200
//	address = 01
//	timeout = 1.0
//	min_delay = 0.05
//	off_sentinel = 9.9e9
//	off_tolerance = 0.02
type GaugeConfig struct {
	Port     string
	BaudRate int
	Address  int
	Timeout  time.Duration
	MinDelay time.Duration

	// gauge-off classification band; zero means library default
	OffSentinel  float64
	OffTolerance float64
}

// PublishConfig is the optional [Publish] section enabling the MQTT live
// view.
type PublishConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
}

// RecordingConfig is the immutable sampling/persistence configuration,
// read from the [Logging] section:
//
//	[Logging]
//	store_data = true
//	store = ${VIPER_DIR}/data/vacuum_data_5min.csv
//	interval = 5.0
//	duration = 300
//
// `h5file` is accepted as an alias for `store` so config files from the old
// logger keep working. duration counts samples; 0 means run until stopped.
type RecordingConfig struct {
	StoreData bool
	StorePath string
	Interval  time.Duration
	Duration  int64
	Publish   PublishConfig
}

// LoadGauge reads and maps the gauge config file. Mapping only; range
// checking lives in ValidateGauge.
func LoadGauge(path string) (*GaugeConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	s := f.Section("Serial")

	// the address field is zero-padded on the wire ("01"); parse it
	// explicitly so the padding never reads as an octal literal
	addr, err := strconv.Atoi(strings.TrimSpace(s.Key("address").MustString("01")))
	if err != nil {
		return nil, fmt.Errorf("config: %s: address: %w", path, err)
	}

	return &GaugeConfig{
		Port:         s.Key("port").MustString("/dev/ttyUSB0"),
		BaudRate:     s.Key("baudrate").MustInt(19200),
		Address:      addr,
		Timeout:      seconds(s.Key("timeout").MustFloat64(1.0)),
		MinDelay:     seconds(s.Key("min_delay").MustFloat64(0.05)),
		OffSentinel:  s.Key("off_sentinel").MustFloat64(0),
		OffTolerance: s.Key("off_tolerance").MustFloat64(0),
	}, nil
}

// LoadRecording reads and maps the recording config file.
func LoadRecording(path string) (*RecordingConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	s := f.Section("Logging")

	storeKey := "store"
	if !s.HasKey(storeKey) && s.HasKey("h5file") {
		storeKey = "h5file"
	}

	cfg := &RecordingConfig{
		StoreData: s.Key("store_data").MustBool(true),
		StorePath: os.ExpandEnv(s.Key(storeKey).MustString("")),
		Interval:  seconds(s.Key("interval").MustFloat64(5.0)),
		Duration:  int64(s.Key("duration").MustFloat64(300)),
	}

	if p, err := f.GetSection("Publish"); err == nil {
		cfg.Publish = PublishConfig{
			Enabled:  p.Key("enabled").MustBool(false),
			Broker:   p.Key("broker").MustString(""),
			ClientID: p.Key("client_id").MustString(""),
			Topic:    p.Key("topic").MustString(""),
			Username: p.Key("username").MustString(""),
			Password: p.Key("password").MustString(""),
		}
	}

	return cfg, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
