package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/explorejh/travel-assistant/internal/model"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "jh.s1.msg.user", MessageSubject("s1", model.OriginUser))
	assert.Equal(t, "jh.s1.msg.assistant", MessageSubject("s1", model.OriginAssistant))
	assert.Equal(t, "jh.s1.event.flow_completed", EventSubject("s1", model.EventTypeFlowCompleted))
	assert.Equal(t, "jh.s1.>", SessionFilter("s1"))
}

func TestIsConnectedOnNilClient(t *testing.T) {
	var c *Client
	assert.False(t, c.IsConnected())
}
