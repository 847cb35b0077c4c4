package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	ev := NewEvent(EventSessionStarted, "s-1", SessionStartedEvent{SessionID: "s-1"}, at)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventSessionStarted, ev.Type)
	assert.Equal(t, "s-1", ev.SessionID)
	assert.Equal(t, time.UTC, ev.Timestamp.Location())
	assert.Equal(t, "proficiency-service", ev.Source)
	assert.NotEqual(t, ev.ID, NewEvent(EventSessionStarted, "s-1", nil, at).ID)
}

func TestMockEventPublisherIsConcurrencySafe(t *testing.T) {
	pub := NewMockEventPublisher(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, pub.Publish(context.Background(), NewEvent(EventProctoring, "s", nil, time.Now())))
		}()
	}
	wg.Wait()

	assert.Len(t, pub.GetPublishedEvents(), 50)
	assert.Len(t, pub.EventsOfType(EventProctoring), 50)
	assert.Empty(t, pub.EventsOfType(EventInviteCreated))

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
	assert.NoError(t, pub.Close())
}

func TestWatermillPublisherDeliversEnvelope(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	messages, err := pubsub.Subscribe(ctx, "assessment-events")
	require.NoError(t, err)

	pub := NewWatermillPublisher(pubsub, "assessment-events", nil)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ev := NewEvent(EventSessionCompleted, "s-42", SessionCompletedEvent{SessionID: "s-42", OverallScore: 81}, at)
	require.NoError(t, pub.Publish(ctx, ev))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, ev.ID, msg.UUID)
		assert.Equal(t, "session.completed", msg.Metadata.Get(MetaEventType))
		assert.Equal(t, "s-42", msg.Metadata.Get(MetaSessionID))
		assert.Equal(t, "2025-03-01T10:00:00Z", msg.Metadata.Get(MetaTimestamp))

		var decoded struct {
			Type      EventType `json:"type"`
			SessionID string    `json:"session_id"`
			Data      struct {
				OverallScore int `json:"overall_score"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventSessionCompleted, decoded.Type)
		assert.Equal(t, 81, decoded.Data.OverallScore)
	case <-ctx.Done():
		t.Fatal("message was not delivered")
	}

	assert.NoError(t, pub.Close())
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                             { return nil }

func TestWatermillPublisherWrapsBackendErrors(t *testing.T) {
	pub := NewWatermillPublisher(failingPublisher{}, "t", nil)
	err := pub.Publish(context.Background(), NewEvent(EventInviteCreated, "", nil, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invite.created")
	assert.Contains(t, err.Error(), "broker down")
}

func TestToMessageOmitsEmptySession(t *testing.T) {
	msg, err := ToMessage(context.Background(), NewEvent(EventInviteCreated, "", nil, time.Now()))
	require.NoError(t, err)
	assert.Empty(t, msg.Metadata.Get(MetaSessionID))
	assert.Equal(t, "proficiency-service", msg.Metadata.Get(MetaSource))
}
