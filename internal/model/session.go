package model

import (
	"time"
)

// SessionSummary describes a session without its message log.
type SessionSummary struct {
	ID           string        `json:"id"`
	OwnerID      string        `json:"owner_id"`
	State        DialogueState `json:"state"`
	MessageCount int           `json:"message_count"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
}

// SessionView is a session with a snapshot of its message log.
type SessionView struct {
	SessionSummary
	Messages []Message `json:"messages"`
}

// ListSessionsResponse is the response for listing sessions.
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
	HasMore  bool             `json:"has_more"`
}
