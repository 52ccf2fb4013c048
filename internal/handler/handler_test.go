package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/config"
	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

type testAPI struct {
	t        *testing.T
	server   *httptest.Server
	sessions *service.SessionService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:         "handler-test-secret",
		JWTExpiration:     time.Hour,
		AuthEnabled:       true,
		RateLimitRequests: 10000,
		RateLimitWindow:   time.Minute,
		AllowedOrigins:    []string{"*"},
	}

	log := logger.NewNop()
	store := catalog.NewStore(catalog.Default(), log)
	sessions := service.NewSessionService(store, nil, service.Config{TypingDelay: time.Millisecond}, log)

	server := httptest.NewServer(NewRouter(Dependencies{
		Config:            cfg,
		Sessions:          sessions,
		Logger:            log,
		HeartbeatInterval: time.Hour,
	}))
	t.Cleanup(func() {
		server.Close()
		sessions.Shutdown(context.Background())
	})

	return &testAPI{t: t, server: server, sessions: sessions}
}

func (a *testAPI) guest() (token, userID string) {
	a.t.Helper()
	resp, err := http.Post(a.server.URL+"/auth/guest", "application/json", nil)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)

	var body GuestTokenResponse
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Token, body.UserID
}

func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(a.t, err)
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) createSession(token string) model.SessionView {
	a.t.Helper()
	var view model.SessionView
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/sessions", token, nil, &view))
	return view
}

func (a *testAPI) wait(userID, sessionID string) {
	a.t.Helper()
	sess, err := a.sessions.Get(context.Background(), userID, sessionID)
	require.NoError(a.t, err)
	sess.Wait()
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil, nil))
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/ready", "", nil, nil))
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/metrics", "", nil, nil))
}

func (a *testAPI) ready() (int, ReadinessResponse) {
	a.t.Helper()
	resp, err := http.Get(a.server.URL + "/ready")
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var body ReadinessResponse
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestReadinessReflectsSessions(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.guest()

	status, body := api.ready()
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, TranscriptsDisabled, body.Transcripts)
	assert.Zero(t, body.ActiveSessions)

	api.createSession(token)
	api.createSession(token)
	_, body = api.ready()
	assert.Equal(t, 2, body.ActiveSessions)
	assert.False(t, body.Draining)

	api.sessions.Drain()

	status, body = api.ready()
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "not ready", body.Status)
	assert.Equal(t, "shutting down", body.Reason)
	assert.True(t, body.Draining)
	assert.Equal(t, 2, body.ActiveSessions)

	assert.Equal(t, http.StatusServiceUnavailable, api.do(http.MethodPost, "/api/v1/sessions", token, nil, nil))
}

func TestAPIRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/v1/sessions", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/catalog", "bogus", nil, nil))
}

func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.guest()

	view := api.createSession(token)
	require.Len(t, view.Messages, 1)
	assert.Equal(t, model.OriginAssistant, view.Messages[0].Origin)
	assert.Equal(t, model.PhaseInitial, view.State.Phase)

	var got model.SessionView
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/sessions/"+view.ID, token, nil, &got))
	assert.Equal(t, view.ID, got.ID)

	var list model.ListSessionsResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/sessions", token, nil, &list))
	assert.Equal(t, 1, list.Total)

	otherToken, _ := api.guest()
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/sessions/"+view.ID, otherToken, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/sessions/not-a-uuid", token, nil, nil))

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/sessions/"+view.ID, token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/sessions/"+view.ID, token, nil, nil))
}

func TestSendAndPollMessages(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.guest()
	view := api.createSession(token)
	path := "/api/v1/sessions/" + view.ID + "/messages"

	var sent model.SendMessageResponse
	require.Equal(t, http.StatusAccepted, api.do(http.MethodPost, path, token, model.SendMessageRequest{Text: "hello"}, &sent))
	require.True(t, sent.Accepted)
	assert.Equal(t, uint64(2), sent.Message.Sequence)
	assert.Equal(t, model.OriginUser, sent.Message.Origin)

	api.wait(userID, view.ID)

	var page model.ListMessagesResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path+"?after_sequence=2", token, nil, &page))
	require.Len(t, page.Messages, 1)
	assert.Equal(t, model.OriginAssistant, page.Messages[0].Origin)
	assert.Equal(t, uint64(3), page.LastSequence)
	assert.Zero(t, page.Pending)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path+"?after_sequence=3", token, nil, &page))
	assert.Empty(t, page.Messages)
	assert.Equal(t, uint64(3), page.LastSequence)
}

func TestSendRejectsBadInput(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.guest()
	view := api.createSession(token)
	path := "/api/v1/sessions/" + view.ID + "/messages"

	var blank model.SendMessageResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, path, token, model.SendMessageRequest{Text: "  "}, &blank))
	assert.False(t, blank.Accepted)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, path, token, "{not json", nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, path, token,
		model.SendMessageRequest{Text: strings.Repeat("x", 5000)}, nil))
}

func TestPlanningFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.guest()
	view := api.createSession(token)
	path := "/api/v1/sessions/" + view.ID + "/messages"

	for _, text := range []string{"plan my trip", "Hundru Falls", "5000", "3", "2"} {
		require.Equal(t, http.StatusAccepted, api.do(http.MethodPost, path, token, model.SendMessageRequest{Text: text}, nil))
		api.wait(userID, view.ID)
	}

	var page model.ListMessagesResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path+"?after_sequence=10", token, nil, &page))
	require.Len(t, page.Messages, 1)
	plan := page.Messages[0].Itinerary
	require.NotNil(t, plan)
	assert.Equal(t, []string{"Hundru Falls"}, plan.Places)
	assert.Equal(t, 5000, plan.TotalBudget)
	assert.Len(t, plan.DailyPlans, 3)
}

func TestItineraryEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.guest()

	var plan model.ItineraryPlan
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/itineraries", token, model.ItineraryRequest{
		Places: []string{"Hundru Falls", "Netarhat Hill Station"},
		Budget: 10000,
		Days:   3,
		People: 1,
	}, &plan))
	assert.Len(t, plan.DailyPlans, 3)
	assert.Len(t, plan.TransportationLegs, 2)
	assert.Equal(t, 3000.0, plan.CostBreakdown.FoodTotal)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/v1/itineraries", token,
		model.ItineraryRequest{Places: []string{"Hundru Falls"}, Budget: 10000}, nil))
}

func TestCatalogEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.guest()

	var resp CatalogResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/catalog", token, nil, &resp))
	assert.Len(t, resp.Destinations, 8)
	assert.Equal(t, []string{"greeting", "help", "famous", "food", "culture", "transport", "safety"}, resp.Topics)
	assert.Equal(t, 10000, resp.Defaults.BudgetInRupees)
	assert.Equal(t, catalog.DefaultMaxDurationInDays, resp.MaxDurationDays)
	assert.Contains(t, resp.QuickReplies.Budget, "₹10,000")
}

type sseEvent struct {
	name string
	data string
}

func readSSE(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamReplaysThenFollows(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.guest()
	view := api.createSession(token)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		api.server.URL+"/api/v1/sessions/"+view.ID+"/stream?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readSSE(t, r).name)

	welcome := readSSE(t, r)
	require.Equal(t, "message", welcome.name)

	done := readSSE(t, r)
	require.Equal(t, "replay_complete", done.name)
	var replay model.ReplayCompleteEvent
	require.NoError(t, json.Unmarshal([]byte(done.data), &replay))
	assert.Equal(t, uint64(1), replay.LastSequence)
	assert.Equal(t, 1, replay.MessageCount)

	require.Equal(t, http.StatusAccepted, api.do(http.MethodPost, "/api/v1/sessions/"+view.ID+"/messages", token,
		model.SendMessageRequest{Text: "what food should I try"}, nil))

	var got []model.Message
	for len(got) < 2 {
		ev := readSSE(t, r)
		require.Equal(t, "message", ev.name)
		var msg model.Message
		require.NoError(t, json.Unmarshal([]byte(ev.data), &msg))
		got = append(got, msg)
	}

	assert.Equal(t, model.OriginUser, got[0].Origin)
	assert.Equal(t, uint64(2), got[0].Sequence)
	assert.Equal(t, model.OriginAssistant, got[1].Origin)
	assert.Equal(t, uint64(3), got[1].Sequence)
	assert.Contains(t, got[1].Text, "Litti Chokha")
}

func TestWebSocketChat(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.guest()
	view := api.createSession(token)

	url := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/api/v1/sessions/" + view.ID + "/ws?access_token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var frame ServerFrame
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, FrameMessage, frame.Type)
	assert.Equal(t, uint64(1), frame.Message.Sequence)

	frame = ServerFrame{}
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, FrameReplayComplete, frame.Type)

	require.NoError(t, conn.WriteJSON(ClientFrame{Text: "Plan my trip"}))

	var got []model.Message
	for len(got) < 2 {
		frame = ServerFrame{}
		require.NoError(t, conn.ReadJSON(&frame))
		require.Equal(t, FrameMessage, frame.Type)
		got = append(got, *frame.Message)
	}

	assert.Equal(t, "Plan my trip", got[0].Text)
	assert.Equal(t, model.OriginAssistant, got[1].Origin)
	assert.Len(t, got[1].QuickReplies, 8)

	require.NoError(t, conn.WriteJSON(ClientFrame{Text: strings.Repeat("y", 5000)}))
	frame = ServerFrame{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, FrameError, frame.Type)
}
