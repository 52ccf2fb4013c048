package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

func TestRunChatPlansTrip(t *testing.T) {
	in := strings.NewReader("plan my trip\nBetla National Park\n20000\n2\n1\n/quit\nhello\n")
	var out bytes.Buffer

	require.NoError(t, runChat(in, &out, catalog.Default(), 0, logger.NewNop()))

	text := out.String()
	assert.Contains(t, text, "ExploreJH AI travel assistant")
	assert.Contains(t, text, "I've noted Betla National Park")
	assert.Contains(t, text, "₹20,000")
	assert.Contains(t, text, "2 days is perfect")
	assert.Contains(t, text, "2-day itinerary for 1 person")
	assert.Contains(t, text, "Day 1: Betla National Park")
	assert.NotContains(t, text, "Hello! I'm your AI travel assistant for Jharkhand")
}

func TestRunChatSkipsBlankLines(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runChat(strings.NewReader("\n   \n"), &out, catalog.Default(), 0, logger.NewNop()))

	assert.Equal(t, 1, strings.Count(out.String(), "ExploreJH"))
}

func TestRunPlanJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runPlan(&out, catalog.Default(), []string{"Ranchi Lake"}, 9000, 2, 3, true))

	var plan model.ItineraryPlan
	require.NoError(t, json.Unmarshal(out.Bytes(), &plan))
	assert.Equal(t, []string{"Ranchi Lake"}, plan.Places)
	assert.Equal(t, 3, plan.PartySize)
	assert.Len(t, plan.DailyPlans, 2)
}

func TestRunPlanText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runPlan(&out, catalog.Default(), nil, 10000, 3, 1, false))

	text := out.String()
	assert.Contains(t, text, "3-day trip for 1: Hundru Falls, Netarhat Hill Station, Betla National Park")
	assert.Contains(t, text, "Hotel Ranchi Plaza")
}
