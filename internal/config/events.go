package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/proficiency-service/internal/events"
)

// EventConfig selects where session and invite events go.
type EventConfig struct {
	Enabled         bool   // EVENTS_ENABLED
	Publisher       string // EVENTS_PUBLISHER: kafka or mock
	KafkaBrokers    string // KAFKA_BROKERS, comma separated
	AssessmentTopic string // ASSESSMENT_EVENTS_TOPIC
}

// Brokers splits KAFKA_BROKERS, dropping blanks.
func (c EventConfig) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c EventConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Publisher {
	case "mock":
		return nil
	case "kafka":
		if len(c.Brokers()) == 0 {
			return fmt.Errorf("kafka publisher requires KAFKA_BROKERS")
		}
		if c.AssessmentTopic == "" {
			return fmt.Errorf("kafka publisher requires ASSESSMENT_EVENTS_TOPIC")
		}
		return nil
	}
	return fmt.Errorf("invalid EVENTS_PUBLISHER %q: must be kafka or mock", c.Publisher)
}

// CreateEventPublisher builds the configured publisher. Disabled events get the
// in-memory publisher so callers never branch on nil.
func (c EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if !c.Enabled || c.Publisher == "mock" {
		logger.Info("Using in-memory event publisher", "enabled", c.Enabled)
		return events.NewMockEventPublisher(logger), nil
	}

	logger.Info("Creating Kafka event publisher", "brokers", c.Brokers(), "topic", c.AssessmentTopic)
	pub, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: c.Brokers(),
		TopicName:    c.AssessmentTopic,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	return pub, nil
}
