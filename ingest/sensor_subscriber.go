package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"roomrec-server/dao"
	"roomrec-server/metrics"
	"roomrec-server/models"
)

const (
	connectTimeout = 10 * time.Second
	storeTimeout   = 5 * time.Second
	disconnectWait = 250 // ms
)

// ErrInvalidPayload marks payloads that can never be stored, as opposed to store failures.
var ErrInvalidPayload = errors.New("invalid sensor payload")

// SensorSubscriber receives sensor readings from an MQTT topic and appends them to the store.
// A payload is a single reading object or an array of them.
type SensorSubscriber struct {
	broker   string
	topic    string
	clientID string

	store   dao.RoomDAO
	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time

	client mqtt.Client
}

func NewSensorSubscriber(broker, topic, clientID string, store dao.RoomDAO, m *metrics.Metrics, logger *log.Logger) *SensorSubscriber {
	if logger == nil {
		logger = log.Default()
	}
	return &SensorSubscriber{
		broker:   broker,
		topic:    topic,
		clientID: clientID,
		store:    store,
		metrics:  m,
		logger:   logger.WithPrefix("SensorSubscriber"),
		now:      time.Now,
	}
}

// Start connects to the broker and subscribes. The subscription is renewed after every
// reconnect; the client disconnects when ctx is cancelled.
func (s *SensorSubscriber) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(s.clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			token := c.Subscribe(s.topic, 1, s.onMessage)
			token.Wait()
			if err := token.Error(); err != nil {
				s.logger.Error("subscribe failed", "topic", s.topic, "err", err)
				return
			}
			s.logger.Info("subscribed", "broker", s.broker, "topic", s.topic)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.logger.Warn("connection lost", "broker", s.broker, "err", err)
		})

	s.client = mqtt.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timed out connecting to mqtt broker %s", s.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker %s: %w", s.broker, err)
	}

	go func() {
		<-ctx.Done()
		s.client.Disconnect(disconnectWait)
		s.logger.Info("disconnected", "broker", s.broker)
	}()
	return nil
}

func (s *SensorSubscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	n, err := s.handlePayload(ctx, msg.Payload())
	switch {
	case errors.Is(err, ErrInvalidPayload):
		s.metrics.ReadingIngested("invalid")
		s.logger.Warn("dropping payload", "topic", msg.Topic(), "err", err)
	case err != nil:
		s.metrics.ReadingIngested("error")
		s.logger.Error("failed to store readings", "topic", msg.Topic(), "err", err)
	default:
		s.metrics.ReadingIngested("stored")
		s.logger.Debug("stored readings", "topic", msg.Topic(), "count", n)
	}
}

// handlePayload decodes payload and appends its readings, returning how many were stored.
// Readings without a timestamp are stamped with the receive time.
func (s *SensorSubscriber) handlePayload(ctx context.Context, payload []byte) (int, error) {
	readings, err := decodeReadings(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(readings) == 0 {
		return 0, fmt.Errorf("%w: no readings", ErrInvalidPayload)
	}

	received := s.now()
	for i := range readings {
		if readings[i].RoomName == "" {
			return 0, fmt.Errorf("%w: reading %d has no room_name", ErrInvalidPayload, i)
		}
		if readings[i].Timestamp.IsZero() {
			readings[i].Timestamp = received
		}
	}

	if err := s.store.AppendReadings(ctx, readings...); err != nil {
		return 0, err
	}
	return len(readings), nil
}

func decodeReadings(payload []byte) ([]models.SensorReading, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var readings []models.SensorReading
		if err := json.Unmarshal(trimmed, &readings); err != nil {
			return nil, err
		}
		return readings, nil
	}
	var r models.SensorReading
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return nil, err
	}
	return []models.SensorReading{r}, nil
}
