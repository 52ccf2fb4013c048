package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxMessageLength is the largest accepted utterance in bytes.
const MaxMessageLength = 4096

// ValidateMessageText validates an utterance. Blank text is valid; the session
// treats it as a no-op.
func ValidateMessageText(text string) error {
	if len(text) > MaxMessageLength {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}
