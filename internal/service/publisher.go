package service

import (
	"context"

	"github.com/explorejh/travel-assistant/internal/model"
)

// TranscriptPublisher forwards appended messages and session events to consumers
// outside the process. Publishing is best effort; sessions never read it back.
type TranscriptPublisher interface {
	PublishMessage(ctx context.Context, msg *model.Message) (uint64, error)
	PublishEvent(ctx context.Context, event *model.SessionEvent) (uint64, error)
}

// NopPublisher discards everything. It is used when NATS is not configured.
type NopPublisher struct{}

// PublishMessage implements TranscriptPublisher.
func (NopPublisher) PublishMessage(context.Context, *model.Message) (uint64, error) {
	return 0, nil
}

// PublishEvent implements TranscriptPublisher.
func (NopPublisher) PublishEvent(context.Context, *model.SessionEvent) (uint64, error) {
	return 0, nil
}
