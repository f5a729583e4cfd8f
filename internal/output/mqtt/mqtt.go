// internal/output/mqtt/mqtt.go
package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/viperlab/vaclog/internal/gauge"
	"github.com/viperlab/vaclog/internal/output"
	"github.com/viperlab/vaclog/internal/sampler"
)

const (
	DefaultBroker   = "tcp://localhost:1883"
	DefaultClientID = "vaclog"
	DefaultTopic    = "vaclog/pressures"
)

// Config holds broker connection settings.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
}

// Publisher pushes each tick's unnormalized snapshot to an MQTT topic as
// JSON. Live view only; persistence never depends on it.
type Publisher struct {
	client mqtt.Client
	topic  string
}

func New(cfg Config) (output.Output, error) {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return &Publisher{client: client, topic: cfg.Topic}, nil
}

func (p *Publisher) Publish(s sampler.Snapshot) error {
	b, err := json.Marshal(payload(s))
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, b)
	token.Wait()
	return token.Error()
}

func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	return nil
}

func payload(s sampler.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"index":       s.Index,
		"timestamp":   s.Timestamp,
		"ionization":  channel(s.Ionization),
		"convection1": channel(s.Convection1),
		"convection2": channel(s.Convection2),
	}
}

func channel(r gauge.Reading) map[string]interface{} {
	m := map[string]interface{}{"state": r.Status.String()}
	if r.Status != gauge.Absent {
		m["torr"] = r.Value
	}
	return m
}
