package engine

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

// DefaultTypingDelay is how long the assistant "types" before answering.
const DefaultTypingDelay = 1500 * time.Millisecond

const subscriberBuffer = 64

// Observer is notified of session activity. Calls happen outside the session lock
// and may arrive from timer goroutines.
type Observer interface {
	MessageAppended(sessionID string, msg model.Message)
	RuleMatched(sessionID, rule string, from, to model.Phase)
}

type nopObserver struct{}

func (nopObserver) MessageAppended(string, model.Message)                {}
func (nopObserver) RuleMatched(string, string, model.Phase, model.Phase) {}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithTypist shares a reply scheduler between sessions.
func WithTypist(t *Typist) SessionOption {
	return func(s *Session) {
		s.typist = t
	}
}

// WithTypingDelay sets the reply delay. A positive jitter adds a random extra
// delay in [0, jitter).
func WithTypingDelay(delay, jitter time.Duration) SessionOption {
	return func(s *Session) {
		s.delay = delay
		s.jitter = jitter
	}
}

// WithCancelOnClose makes Close cancel replies that have not been appended yet.
// By default pending replies are still appended after Close.
func WithCancelOnClose(cancel bool) SessionOption {
	return func(s *Session) {
		s.cancelOnClose = cancel
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// Session is one conversation: an append-only message log and a dialogue state,
// both owned here and guarded by mu.
type Session struct {
	id        string
	ownerID   string
	createdAt time.Time

	router        *Router
	typist        *Typist
	delay         time.Duration
	jitter        time.Duration
	cancelOnClose bool
	observer      Observer
	logger        *logger.Logger
	now           func() time.Time

	mu         sync.Mutex
	idle       *sync.Cond
	state      model.DialogueState
	log        []model.Message
	lastActive time.Time
	pending    int
	closed     bool
	subs       map[uint64]chan model.Message
	nextSub    uint64
}

// NewSession starts a session answered by router. The log begins with the
// assistant's welcome message.
func NewSession(id, ownerID string, router *Router, opts ...SessionOption) *Session {
	s := &Session{
		id:       id,
		ownerID:  ownerID,
		router:   router,
		delay:    DefaultTypingDelay,
		observer: nopObserver{},
		logger:   logger.NewNop(),
		now:      time.Now,
		state:    model.DialogueState{Phase: model.PhaseInitial},
		subs:     make(map[uint64]chan model.Message),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.typist == nil {
		s.typist = NewTypist()
	}
	s.idle = sync.NewCond(&s.mu)
	s.createdAt = s.now()
	s.lastActive = s.createdAt

	s.mu.Lock()
	welcome := s.appendLocked(model.OriginAssistant, welcomeText, copyStrings(welcomeReplies), nil)
	s.mu.Unlock()
	s.observer.MessageAppended(s.id, welcome)

	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// OwnerID returns the id of the user the session belongs to.
func (s *Session) OwnerID() string { return s.ownerID }

// Router returns the routing table answering this session.
func (s *Session) Router() *Router { return s.router }

// SubmitUserMessage appends text as a user message and schedules exactly one
// assistant reply. Blank text is ignored: nothing is appended and ok is false.
func (s *Session) SubmitUserMessage(text string) (msg model.Message, ok bool) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, false
	}

	s.mu.Lock()
	msg = s.appendLocked(model.OriginUser, text, nil, nil)
	s.pending++
	s.mu.Unlock()

	s.observer.MessageAppended(s.id, msg)
	s.typist.Schedule(s.id, s.typingDelay(), func() { s.answer(text) }, s.dropPending)

	return msg, true
}

func (s *Session) typingDelay() time.Duration {
	if s.jitter <= 0 {
		return s.delay
	}
	return s.delay + rand.N(s.jitter)
}

// answer routes text against the state at the time the reply fires and appends
// the assistant message.
func (s *Session) answer(text string) {
	s.mu.Lock()
	from := s.state.Phase
	out := s.router.Route(s.state, text)
	s.state = out.State
	msg := s.appendLocked(model.OriginAssistant, out.Reply.Text, out.Reply.QuickReplies, out.Reply.Itinerary)
	s.donePendingLocked()
	s.mu.Unlock()

	if from != out.State.Phase {
		s.logger.Debug("phase changed",
			zap.String("rule", out.Rule),
			zap.String("from", string(from)),
			zap.String("to", string(out.State.Phase)),
		)
	}

	s.observer.RuleMatched(s.id, out.Rule, from, out.State.Phase)
	s.observer.MessageAppended(s.id, msg)
}

func (s *Session) dropPending() {
	s.mu.Lock()
	s.donePendingLocked()
	s.mu.Unlock()
}

func (s *Session) donePendingLocked() {
	s.pending--
	if s.pending == 0 {
		s.idle.Broadcast()
	}
}

// appendLocked adds a message to the log and hands it to subscribers.
// Subscribers that cannot keep up are dropped.
func (s *Session) appendLocked(origin model.Origin, text string, quickReplies []string, plan *model.ItineraryPlan) model.Message {
	now := s.now()
	msg := model.Message{
		ID:           uuid.Must(uuid.NewV7()).String(),
		SessionID:    s.id,
		Sequence:     uint64(len(s.log)) + 1,
		Origin:       origin,
		Text:         text,
		QuickReplies: quickReplies,
		Itinerary:    plan,
		CreatedAt:    now,
	}
	s.log = append(s.log, msg)
	s.lastActive = now

	for id, ch := range s.subs {
		select {
		case ch <- msg:
		default:
			close(ch)
			delete(s.subs, id)
			s.logger.Warn("dropping slow subscriber", zap.Uint64("subscriber", id))
		}
	}
	return msg
}

// Snapshot returns a copy of the message log. Messages are never modified after
// being appended, so the copy shares their quick replies and itineraries.
func (s *Session) Snapshot() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.log...)
}

// MessagesAfter returns the messages whose sequence is greater than seq.
func (s *Session) MessagesAfter(seq uint64) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq >= uint64(len(s.log)) {
		return nil
	}
	return append([]model.Message(nil), s.log[seq:]...)
}

// State returns a copy of the dialogue state.
func (s *Session) State() model.DialogueState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Pending returns the number of replies not yet appended.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastActive returns the time of the latest append.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Summary describes the session without its log.
func (s *Session) Summary() model.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SessionSummary{
		ID:           s.id,
		OwnerID:      s.ownerID,
		State:        s.state.Clone(),
		MessageCount: len(s.log),
		CreatedAt:    s.createdAt,
		LastActiveAt: s.lastActive,
	}
}

// View returns the summary together with a snapshot of the log.
func (s *Session) View() model.SessionView {
	summary := s.Summary()
	return model.SessionView{SessionSummary: summary, Messages: s.Snapshot()}
}

// Subscribe returns a channel receiving every message appended from now on and a
// function that ends the subscription. The channel is closed when the session is
// closed, when unsubscribed, or when the subscriber falls behind.
func (s *Session) Subscribe() (<-chan model.Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan model.Message, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	s.nextSub++
	id := s.nextSub
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

// Wait blocks until every scheduled reply has been appended or cancelled.
func (s *Session) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.idle.Wait()
	}
}

// Close ends all subscriptions. Pending replies are cancelled only when the
// session was created WithCancelOnClose; otherwise they are still appended.
// It returns the number of cancelled replies.
func (s *Session) Close() int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	if !s.cancelOnClose {
		return 0
	}
	return s.typist.Cancel(s.id)
}
