// cmd/vaclog/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/viperlab/vaclog/internal/config"
	"github.com/viperlab/vaclog/internal/gauge"
	"github.com/viperlab/vaclog/internal/gauge/serial"
	"github.com/viperlab/vaclog/internal/output"
	"github.com/viperlab/vaclog/internal/output/console"
	"github.com/viperlab/vaclog/internal/output/mqtt"
	"github.com/viperlab/vaclog/internal/recorder"
	"github.com/viperlab/vaclog/internal/sampler"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("usage: vaclog <gauge_config.ini> <recording_config.ini>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	gcfg, err := config.LoadGauge(os.Args[1])
	if err != nil {
		log.Fatalf("gauge config load failed: %v", err)
	}
	if err := config.ValidateGauge(gcfg); err != nil {
		log.Fatalf("gauge config validation failed: %v", err)
	}

	rcfg, err := config.LoadRecording(os.Args[2])
	if err != nil {
		log.Fatalf("recording config load failed: %v", err)
	}
	if err := config.ValidateRecording(rcfg); err != nil {
		log.Fatalf("recording config validation failed: %v", err)
	}

	// Stop at the next tick boundary on SIGINT/SIGTERM; an in-flight
	// exchange always completes first.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Build the pipeline
	// --------------------

	tr, err := serial.New(serial.Config{Port: gcfg.Port, BaudRate: gcfg.BaudRate})
	if err != nil {
		log.Fatalf("serial open failed: %v", err)
	}
	defer tr.Close()
	log.Printf("connected to %s @ %d baud (unit %02d)", gcfg.Port, gcfg.BaudRate, gcfg.Address)

	gc, err := gauge.New(gauge.Config{
		Address:      uint8(gcfg.Address),
		Timeout:      gcfg.Timeout,
		MinDelay:     gcfg.MinDelay,
		OffSentinel:  gcfg.OffSentinel,
		OffTolerance: gcfg.OffTolerance,
	}, tr)
	if err != nil {
		log.Fatalf("gauge client build failed: %v", err)
	}

	var rec sampler.Recorder
	if rcfg.StoreData {
		store, err := recorder.Open(rcfg.StorePath)
		if err != nil {
			log.Fatalf("store open failed: %v", err)
		}
		defer store.Close()
		rec = store
		log.Printf("appending to %s after index %d", rcfg.StorePath, store.LastIndex())
	}

	outs := []output.Output{console.New(os.Stdout)}
	if rcfg.Publish.Enabled {
		pub, err := mqtt.New(mqtt.Config{
			Broker:   rcfg.Publish.Broker,
			ClientID: rcfg.Publish.ClientID,
			Topic:    rcfg.Publish.Topic,
			Username: rcfg.Publish.Username,
			Password: rcfg.Publish.Password,
		})
		if err != nil {
			// live view is best-effort; sampling proceeds without it
			log.Printf("mqtt publish disabled: %v", err)
		} else {
			defer pub.Close()
			outs = append(outs, pub)
		}
	}

	souts := make([]sampler.Output, len(outs))
	for i, o := range outs {
		souts[i] = o
	}

	s, err := sampler.New(sampler.Config{
		Interval:  rcfg.Interval,
		RunLength: rcfg.Duration,
	}, gc, rec, souts)
	if err != nil {
		log.Fatalf("sampler build failed: %v", err)
	}

	// --------------------
	// Run until done or stopped
	// --------------------

	if err := s.Run(ctx); err != nil {
		log.Fatalf("sampling aborted: %v", err)
	}
}
