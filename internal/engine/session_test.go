package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type ruleCall struct {
	rule     string
	from, to model.Phase
}

type recordingObserver struct {
	mu       sync.Mutex
	appended []model.Message
	rules    []ruleCall
}

func (o *recordingObserver) MessageAppended(_ string, msg model.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.appended = append(o.appended, msg)
}

func (o *recordingObserver) RuleMatched(_ string, rule string, from, to model.Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rules = append(o.rules, ruleCall{rule, from, to})
}

func newTestSession(opts ...SessionOption) *Session {
	opts = append([]SessionOption{WithTypingDelay(0, 0)}, opts...)
	return NewSession("session-1", "owner-1", newTestRouter(), opts...)
}

func say(t *testing.T, s *Session, text string) model.Message {
	t.Helper()
	msg, ok := s.SubmitUserMessage(text)
	require.True(t, ok, text)
	s.Wait()
	return msg
}

func TestNewSessionWelcomes(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	msgs := s.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.OriginAssistant, msgs[0].Origin)
	assert.Equal(t, uint64(1), msgs[0].Sequence)
	assert.Equal(t, welcomeText, msgs[0].Text)
	assert.Equal(t, welcomeReplies, msgs[0].QuickReplies)
	assert.Equal(t, model.PhaseInitial, s.State().Phase)
}

func TestBlankInputIsIgnored(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, ok := s.SubmitUserMessage(text)
		assert.False(t, ok)
	}

	assert.Len(t, s.Snapshot(), 1)
	assert.Zero(t, s.Pending())
	assert.Equal(t, model.PhaseInitial, s.State().Phase)
}

func TestSessionPlanningFlow(t *testing.T) {
	obs := &recordingObserver{}
	s := newTestSession(WithObserver(obs))
	defer s.Close()

	user := say(t, s, "plan my trip")
	assert.Equal(t, model.OriginUser, user.Origin)
	assert.Equal(t, "plan my trip", user.Text)
	assert.Equal(t, model.PhaseCollectingPlaces, s.State().Phase)

	say(t, s, "Hundru Falls")
	say(t, s, "abc")
	assert.Equal(t, 10000, s.State().Draft.BudgetInRupees)

	say(t, s, "0")
	assert.Equal(t, 3, s.State().Draft.DurationInDays)

	say(t, s, "2")
	state := s.State()
	assert.Equal(t, model.PhaseComplete, state.Phase)

	msgs := s.Snapshot()
	require.Len(t, msgs, 11)
	ids := map[string]bool{}
	for i, msg := range msgs {
		assert.Equal(t, uint64(i+1), msg.Sequence)
		assert.Equal(t, "session-1", msg.SessionID)
		assert.False(t, ids[msg.ID], "duplicate id")
		ids[msg.ID] = true
		if i > 0 {
			want := model.OriginUser
			if i%2 == 0 {
				want = model.OriginAssistant
			}
			assert.Equal(t, want, msg.Origin, "message %d", i+1)
		}
	}

	plan := msgs[10].Itinerary
	require.NotNil(t, plan)
	assert.Equal(t, 10000, plan.TotalBudget)
	assert.Equal(t, 3, plan.DurationInDays)
	assert.Equal(t, 2, plan.PartySize)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Len(t, obs.appended, 11)
	assert.Equal(t, []ruleCall{
		{RuleStartPlanning, model.PhaseInitial, model.PhaseCollectingPlaces},
		{RuleCollectPlaces, model.PhaseCollectingPlaces, model.PhaseCollectingBudget},
		{RuleCollectBudget, model.PhaseCollectingBudget, model.PhaseCollectingDuration},
		{RuleCollectDuration, model.PhaseCollectingDuration, model.PhaseCollectingPartySize},
		{RuleCollectPartySize, model.PhaseCollectingPartySize, model.PhaseComplete},
	}, obs.rules)
}

func TestUserMessageAppendsBeforeReply(t *testing.T) {
	s := newTestSession(WithTypingDelay(time.Hour, 0), WithCancelOnClose(true))

	msg, ok := s.SubmitUserMessage("hello")
	require.True(t, ok)
	assert.Equal(t, uint64(2), msg.Sequence)
	assert.Len(t, s.Snapshot(), 2)
	assert.Equal(t, 1, s.Pending())

	assert.Equal(t, 1, s.Close())
	s.Wait()
	assert.Len(t, s.Snapshot(), 2)
	assert.Zero(t, s.Pending())
}

func TestCloseLetsPendingRepliesLand(t *testing.T) {
	s := newTestSession(WithTypingDelay(20*time.Millisecond, 0))

	_, ok := s.SubmitUserMessage("hello")
	require.True(t, ok)
	assert.Zero(t, s.Close())

	s.Wait()
	msgs := s.Snapshot()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.OriginAssistant, msgs[2].Origin)
}

func TestMessagesAfter(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	say(t, s, "hello")

	assert.Len(t, s.MessagesAfter(0), 3)
	after := s.MessagesAfter(1)
	require.Len(t, after, 2)
	assert.Equal(t, uint64(2), after[0].Sequence)
	assert.Empty(t, s.MessagesAfter(3))
	assert.Empty(t, s.MessagesAfter(100))
}

func TestSubscribe(t *testing.T) {
	s := newTestSession()

	updates, unsubscribe := s.Subscribe()
	say(t, s, "hello")

	first := <-updates
	second := <-updates
	assert.Equal(t, model.OriginUser, first.Origin)
	assert.Equal(t, model.OriginAssistant, second.Origin)
	assert.Equal(t, catalog.Default().Topics[0].Response, second.Text)

	unsubscribe()
	_, open := <-updates
	assert.False(t, open)
	unsubscribe()

	other, _ := s.Subscribe()
	s.Close()
	_, open = <-other
	assert.False(t, open)

	late, _ := s.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for range subscriberBuffer {
		say(t, s, "hello")
	}

	received := 0
	for range updates {
		received++
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestWithClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTestSession(WithClock(func() time.Time { return now }))
	defer s.Close()

	say(t, s, "hello")

	for _, msg := range s.Snapshot() {
		assert.Equal(t, now, msg.CreatedAt)
	}
	summary := s.Summary()
	assert.Equal(t, now, summary.CreatedAt)
	assert.Equal(t, now, summary.LastActiveAt)
	assert.Equal(t, 3, summary.MessageCount)
	assert.Equal(t, "owner-1", summary.OwnerID)
}

func TestSharedTypistCancelsPerSession(t *testing.T) {
	typist := NewTypist()
	a := NewSession("a", "o", newTestRouter(), WithTypist(typist), WithTypingDelay(time.Hour, 0), WithCancelOnClose(true))
	b := NewSession("b", "o", newTestRouter(), WithTypist(typist), WithTypingDelay(time.Hour, 0), WithCancelOnClose(true))

	a.SubmitUserMessage("hello")
	b.SubmitUserMessage("hello")
	b.SubmitUserMessage("food")
	assert.Equal(t, 1, typist.Pending("a"))
	assert.Equal(t, 2, typist.Pending("b"))

	assert.Equal(t, 1, a.Close())
	assert.Equal(t, 2, typist.Pending("b"))
	assert.Equal(t, 2, b.Close())
	assert.Zero(t, typist.Pending("b"))
}

func TestStateIsACopy(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	say(t, s, "plan my trip")
	say(t, s, "Rock Garden")

	state := s.State()
	state.Draft.Places[0] = "changed"

	assert.Equal(t, []string{"Rock Garden"}, s.State().Draft.Places)
}
