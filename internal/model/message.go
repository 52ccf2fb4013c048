// Package model defines data structures for the travel assistant.
package model

import (
	"time"
)

// Origin identifies who authored a message.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Message is one entry of a session's append-only conversation log.
// Messages are never mutated after they are appended.
type Message struct {
	// Identity
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Sequence  uint64 `json:"sequence"`

	// Content
	Origin       Origin         `json:"origin"`
	Text         string         `json:"text"`
	QuickReplies []string       `json:"quick_replies,omitempty"`
	Itinerary    *ItineraryPlan `json:"itinerary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest is the request to submit a user utterance.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse is the response after submitting an utterance.
// Accepted is false when the text was blank and nothing was appended.
type SendMessageResponse struct {
	Accepted bool     `json:"accepted"`
	Message  *Message `json:"message,omitempty"`
}

// ListMessagesResponse is the response for listing messages.
type ListMessagesResponse struct {
	Messages     []Message `json:"messages"`
	LastSequence uint64    `json:"last_sequence"`
	Pending      int       `json:"pending"`
}
