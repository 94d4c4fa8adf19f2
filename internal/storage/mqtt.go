package storage

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/motion_logger/internal/imu"
)

// MQTTSink mirrors each record to an MQTT topic as JSON, so a console or
// another machine can watch the run live. It is always paired with a durable
// sink; it never replaces one.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

func NewMQTTSink(broker, clientID, topic string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}

	return &MQTTSink{client: client, topic: topic}, nil
}

func (s *MQTTSink) Append(rec imu.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", rec.Tick, err)
	}
	if token := s.client.Publish(s.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish record %d: %w", rec.Tick, token.Error())
	}
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
