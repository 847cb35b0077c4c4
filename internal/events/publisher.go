package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher delivers session and invite events.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Metadata keys set on every outgoing message.
const (
	MetaEventType = "event_type"
	MetaSessionID = "session_id"
	MetaSource    = "source"
	MetaVersion   = "version"
	MetaTimestamp = "timestamp"
)

type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// WatermillPublisher publishes events as JSON messages on one topic of any
// watermill backend.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatermillPublisher{publisher: publisher, topic: topic, logger: logger}
}

// NewKafkaEventPublisher connects to Kafka. Messages are keyed by session id
// so one session's events land on one partition in order.
func NewKafkaEventPublisher(cfg PublisherConfig) (*WatermillPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers: cfg.KafkaBrokers,
		Marshaler: kafka.NewWithPartitioningMarshaler(func(_ string, msg *message.Message) (string, error) {
			return msg.Metadata.Get(MetaSessionID), nil
		}),
	}, watermill.NewSlogLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return NewWatermillPublisher(publisher, cfg.TopicName, cfg.Logger), nil
}

// ToMessage encodes an event for the wire.
func ToMessage(ctx context.Context, event *Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetaEventType, string(event.Type))
	msg.Metadata.Set(MetaSource, event.Source)
	msg.Metadata.Set(MetaVersion, event.Version)
	msg.Metadata.Set(MetaTimestamp, event.Timestamp.Format(time.RFC3339))
	if event.SessionID != "" {
		msg.Metadata.Set(MetaSessionID, event.SessionID)
	}
	return msg, nil
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	msg, err := ToMessage(ctx, event)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"session_id", event.SessionID,
			"error", err)
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Published event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topic)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory for development and tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(_ context.Context, event *Event) error {
	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	m.logger.Debug("Recorded event", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of everything recorded so far.
func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *MockEventPublisher) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.GetPublishedEvents() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
