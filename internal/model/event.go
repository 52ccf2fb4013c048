package model

import (
	"time"
)

// EventType represents the type of session event.
type EventType string

const (
	EventTypeFlowStarted   EventType = "flow_started"
	EventTypeFlowCompleted EventType = "flow_completed"
	EventTypeSessionClosed EventType = "session_closed"
)

// SessionEvent is published alongside messages to describe state changes.
type SessionEvent struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Type      EventType      `json:"type"`
	Phase     Phase          `json:"phase"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ErrorEvent represents an error event on a stream.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HeartbeatEvent represents a heartbeat event.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// ReplayCompleteEvent marks the end of history replay on a stream.
type ReplayCompleteEvent struct {
	LastSequence uint64 `json:"last_sequence"`
	MessageCount int    `json:"message_count"`
}
