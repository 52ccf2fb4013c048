// Package service provides business logic for the travel assistant.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/engine"
	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/pkg/logger"
	"github.com/explorejh/travel-assistant/pkg/metrics"
)

var (
	// ErrSessionNotFound is returned for unknown sessions and sessions owned by someone else.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidItinerary is returned when a direct itinerary request is malformed.
	ErrInvalidItinerary = errors.New("invalid itinerary request")

	// ErrDraining is returned by Create once the service has begun shutting down.
	ErrDraining = errors.New("session service is draining")
)

// Stats is a point-in-time view of the service.
type Stats struct {
	ActiveSessions    int    `json:"active_sessions"`
	PendingReplies    int    `json:"pending_replies"`
	CatalogGeneration uint64 `json:"catalog_generation"`
	Draining          bool   `json:"draining"`
}

// Config controls session behaviour.
type Config struct {
	TypingDelay          time.Duration
	TypingJitter         time.Duration
	CancelPendingOnClose bool
	IdleTimeout          time.Duration
	PublishTimeout       time.Duration
}

// SessionService owns every chat session of the process.
type SessionService struct {
	catalogs  *catalog.Store
	typist    *engine.Typist
	publisher TranscriptPublisher
	logger    *logger.Logger
	tracer    trace.Tracer
	cfg       Config
	now       func() time.Time

	routerMu sync.Mutex
	router   *engine.Router

	// Sessions live only in memory; they end when deleted or idle too long.
	sessions map[string]*engine.Session
	mu       sync.RWMutex
	draining atomic.Bool
}

// NewSessionService creates a new session service.
func NewSessionService(catalogs *catalog.Store, publisher TranscriptPublisher, cfg Config, log *logger.Logger) *SessionService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}

	return &SessionService{
		catalogs:  catalogs,
		typist:    engine.NewTypist(),
		publisher: publisher,
		logger:    log,
		tracer:    otel.Tracer("github.com/explorejh/travel-assistant/internal/service"),
		cfg:       cfg,
		now:       time.Now,
		sessions:  make(map[string]*engine.Session),
	}
}

// Catalog returns the reference data new sessions are created with.
func (s *SessionService) Catalog() *catalog.Catalog {
	return s.catalogs.Current()
}

// currentRouter returns a router for the current catalog, rebuilding it after a reload.
func (s *SessionService) currentRouter() *engine.Router {
	c := s.catalogs.Current()

	s.routerMu.Lock()
	defer s.routerMu.Unlock()

	if s.router == nil || s.router.Catalog() != c {
		s.router = engine.NewRouter(c, nil)
	}
	return s.router
}

// Create starts a new session for ownerID.
func (s *SessionService) Create(ctx context.Context, ownerID string) (*engine.Session, error) {
	_, span := s.tracer.Start(ctx, "SessionService.Create")
	defer span.End()

	if s.draining.Load() {
		return nil, ErrDraining
	}

	id := uuid.Must(uuid.NewV7()).String()
	log := s.logger.WithSession(id, ownerID)

	sess := engine.NewSession(id, ownerID, s.currentRouter(),
		engine.WithTypist(s.typist),
		engine.WithTypingDelay(s.cfg.TypingDelay, s.cfg.TypingJitter),
		engine.WithCancelOnClose(s.cfg.CancelPendingOnClose),
		engine.WithObserver(s),
		engine.WithLogger(log),
	)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	metrics.SessionsActive.Inc()
	span.SetAttributes(attribute.String("session.id", id))
	log.Info("session created")

	return sess, nil
}

// Get retrieves a session owned by ownerID.
func (s *SessionService) Get(ctx context.Context, ownerID, sessionID string) (*engine.Session, error) {
	s.mu.RLock()
	sess, exists := s.sessions[sessionID]
	s.mu.RUnlock()

	if !exists || sess.OwnerID() != ownerID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// List returns ownerID's sessions, oldest first.
func (s *SessionService) List(ctx context.Context, ownerID string, limit, offset int) (*model.ListSessionsResponse, error) {
	s.mu.RLock()
	var summaries []model.SessionSummary
	for _, sess := range s.sessions {
		if sess.OwnerID() == ownerID {
			summaries = append(summaries, sess.Summary())
		}
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})

	total := len(summaries)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}

	return &model.ListSessionsResponse{
		Sessions: append([]model.SessionSummary{}, summaries[start:end]...),
		Total:    total,
		HasMore:  end < total,
	}, nil
}

// Delete ends a session.
func (s *SessionService) Delete(ctx context.Context, ownerID, sessionID string) error {
	s.mu.Lock()
	sess, exists := s.sessions[sessionID]
	if !exists || sess.OwnerID() != ownerID {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.end(ctx, sess, "deleted")
	return nil
}

// Submit appends a user utterance to a session. Blank text is accepted as a no-op.
func (s *SessionService) Submit(ctx context.Context, ownerID, sessionID, text string) (*model.SendMessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SessionService.Submit",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	sess, err := s.Get(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	msg, ok := sess.SubmitUserMessage(text)
	span.SetAttributes(attribute.Bool("message.accepted", ok))
	if !ok {
		return &model.SendMessageResponse{Accepted: false}, nil
	}
	return &model.SendMessageResponse{Accepted: true, Message: &msg}, nil
}

// Synthesize builds an itinerary directly from request parameters.
func (s *SessionService) Synthesize(ctx context.Context, req *model.ItineraryRequest) (*model.ItineraryPlan, error) {
	_, span := s.tracer.Start(ctx, "SessionService.Synthesize")
	defer span.End()

	router := s.currentRouter()
	maxDays := router.Catalog().MaxDuration()

	switch {
	case len(req.Places) == 0:
		return nil, fmt.Errorf("%w: at least one place is required", ErrInvalidItinerary)
	case req.Budget < 1:
		return nil, fmt.Errorf("%w: budget must be positive", ErrInvalidItinerary)
	case req.Days < 1 || req.Days > maxDays:
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidItinerary, maxDays)
	case req.People < 1:
		return nil, fmt.Errorf("%w: people must be positive", ErrInvalidItinerary)
	}

	plan := router.Synthesizer().Synthesize(req.Places, req.Budget, req.Days, req.People)
	metrics.RecordItinerary("api", plan.DurationInDays)
	span.SetAttributes(attribute.Int("itinerary.days", plan.DurationInDays))

	return plan, nil
}

// SweepIdle ends sessions whose last message is older than the idle timeout and
// returns how many were ended.
func (s *SessionService) SweepIdle(ctx context.Context) int {
	if s.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.IdleTimeout)

	s.mu.Lock()
	var expired []*engine.Session
	for id, sess := range s.sessions {
		if sess.Pending() == 0 && sess.LastActive().Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.end(ctx, sess, "idle")
	}
	return len(expired)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepIdle(ctx); n > 0 {
				s.logger.Info("idle sessions ended", zap.Int("count", n))
			}
		}
	}
}

// Shutdown ends every session.
func (s *SessionService) Shutdown(ctx context.Context) {
	s.Drain()

	s.mu.Lock()
	all := make([]*engine.Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		s.end(ctx, sess, "shutdown")
	}
}

// Drain stops the service from accepting new sessions. Existing sessions keep
// working until Shutdown.
func (s *SessionService) Drain() {
	if s.draining.CompareAndSwap(false, true) {
		s.logger.Info("session service draining")
	}
}

// Stats reports live sessions, replies still being typed and the catalog generation.
func (s *SessionService) Stats() Stats {
	s.mu.RLock()
	st := Stats{ActiveSessions: len(s.sessions)}
	for _, sess := range s.sessions {
		st.PendingReplies += sess.Pending()
	}
	s.mu.RUnlock()

	st.CatalogGeneration = s.catalogs.Generation()
	st.Draining = s.draining.Load()
	return st
}

func (s *SessionService) end(ctx context.Context, sess *engine.Session, reason string) {
	cancelled := sess.Close()

	metrics.SessionsActive.Dec()
	metrics.SessionsEndedTotal.WithLabelValues(reason).Inc()

	s.publishEvent(ctx, &model.SessionEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: sess.ID(),
		Type:      model.EventTypeSessionClosed,
		Phase:     sess.State().Phase,
		Metadata:  map[string]any{"reason": reason, "cancelled_replies": cancelled},
		CreatedAt: s.now(),
	})

	s.logger.WithSession(sess.ID(), sess.OwnerID()).Info("session ended",
		zap.String("reason", reason),
		zap.Int("cancelled_replies", cancelled),
	)
}

// MessageAppended implements engine.Observer.
func (s *SessionService) MessageAppended(sessionID string, msg model.Message) {
	metrics.MessagesTotal.WithLabelValues(string(msg.Origin)).Inc()
	if msg.Itinerary != nil {
		metrics.RecordItinerary("chat", msg.Itinerary.DurationInDays)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PublishTimeout)
	defer cancel()

	if _, err := s.publisher.PublishMessage(ctx, &msg); err != nil {
		metrics.TranscriptPublishFailures.Inc()
		s.logger.Warn("failed to publish message",
			zap.String("session_id", sessionID),
			zap.Uint64("sequence", msg.Sequence),
			zap.Error(err),
		)
	}
}

// RuleMatched implements engine.Observer.
func (s *SessionService) RuleMatched(sessionID, rule string, from, to model.Phase) {
	metrics.RuleMatchesTotal.WithLabelValues(rule).Inc()
	metrics.RecordPhaseTransition(string(from), string(to))

	var eventType model.EventType
	switch {
	case rule == engine.RuleStartPlanning:
		eventType = model.EventTypeFlowStarted
	case to == model.PhaseComplete && from != model.PhaseComplete:
		eventType = model.EventTypeFlowCompleted
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PublishTimeout)
	defer cancel()

	s.publishEvent(ctx, &model.SessionEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: sessionID,
		Type:      eventType,
		Phase:     to,
		CreatedAt: s.now(),
	})
}

func (s *SessionService) publishEvent(ctx context.Context, event *model.SessionEvent) {
	if _, err := s.publisher.PublishEvent(ctx, event); err != nil {
		metrics.TranscriptPublishFailures.Inc()
		s.logger.Warn("failed to publish event",
			zap.String("session_id", event.SessionID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}
