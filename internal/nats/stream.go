package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/explorejh/travel-assistant/internal/model"
)

const (
	// StreamName is the name of the transcript stream.
	StreamName = "EXPLOREJH"

	// SubjectPrefix is the prefix for all transcript subjects.
	SubjectPrefix = "jh"

	// transcriptMaxAge bounds how long transcript entries are kept. The stream is a
	// fan-out buffer for consumers, not a session store.
	transcriptMaxAge = time.Hour
)

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream creates the transcript stream if it does not exist.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      transcriptMaxAge,
		MaxBytes:    256 * 1024 * 1024,
		Storage:     jetstream.MemoryStorage,
		Replicas:    1,
		Description: "Travel assistant session transcripts",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// MessageSubject returns the subject for a message.
func MessageSubject(sessionID string, origin model.Origin) string {
	return fmt.Sprintf("%s.%s.msg.%s", SubjectPrefix, sessionID, origin)
}

// EventSubject returns the subject for an event.
func EventSubject(sessionID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.event.%s", SubjectPrefix, sessionID, eventType)
}

// SessionFilter returns the filter subject for everything published for a session.
func SessionFilter(sessionID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, sessionID)
}

// PublishMessage publishes a message to JetStream.
func (m *StreamManager) PublishMessage(ctx context.Context, msg *model.Message) (uint64, error) {
	return m.publish(ctx, MessageSubject(msg.SessionID, msg.Origin), msg)
}

// PublishEvent publishes an event to JetStream.
func (m *StreamManager) PublishEvent(ctx context.Context, event *model.SessionEvent) (uint64, error) {
	return m.publish(ctx, EventSubject(event.SessionID, event.Type), event)
}

func (m *StreamManager) publish(ctx context.Context, subject string, v any) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal %s: %w", subject, err)
	}

	ack, err := m.client.JetStream().Publish(ctx, subject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	return ack.Sequence, nil
}
