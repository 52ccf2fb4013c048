package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/explorejh/travel-assistant/internal/engine"
	"github.com/explorejh/travel-assistant/internal/middleware"
	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/internal/service"
	"github.com/explorejh/travel-assistant/pkg/logger"
	"github.com/explorejh/travel-assistant/pkg/metrics"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// Frame types sent to WebSocket clients.
const (
	FrameMessage        = "message"
	FrameReplayComplete = "replay_complete"
	FrameError          = "error"
)

// ClientFrame is a frame sent by a WebSocket client. Quick replies are sent as
// ordinary text.
type ClientFrame struct {
	Text string `json:"text"`
}

// ServerFrame is a frame sent to a WebSocket client.
type ServerFrame struct {
	Type    string                     `json:"type"`
	Message *model.Message             `json:"message,omitempty"`
	Replay  *model.ReplayCompleteEvent `json:"replay,omitempty"`
	Error   *model.ErrorEvent          `json:"error,omitempty"`
}

// WebSocketHandler serves a bidirectional chat transport.
type WebSocketHandler struct {
	service  *service.SessionService
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. Connections are accepted
// from allowedOrigins, or from any origin when the list contains "*".
func NewWebSocketHandler(svc *service.SessionService, allowedOrigins []string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		service: svc,
		logger:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Serve handles GET /api/v1/sessions/:id/ws
// Supports ?after_sequence=N like the SSE stream.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	sess, ok := loadSession(w, r, h.service)
	if !ok {
		return
	}
	after := afterSequence(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.IncrementStreamConnections("websocket")
	defer metrics.DecrementStreamConnections("websocket")

	log := h.logger.WithSession(sess.ID(), sess.OwnerID())

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	rejected := make(chan model.ErrorEvent, 8)
	done := make(chan struct{})
	go h.readLoop(r.Context(), conn, sess, rejected, done, log)

	lastSequence := after
	replay := sess.MessagesAfter(after)
	for i := range replay {
		if err := writeFrame(conn, &ServerFrame{Type: FrameMessage, Message: &replay[i]}); err != nil {
			return
		}
		lastSequence = replay[i].Sequence
	}
	if err := writeFrame(conn, &ServerFrame{
		Type:   FrameReplayComplete,
		Replay: &model.ReplayCompleteEvent{LastSequence: lastSequence, MessageCount: len(replay)},
	}); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			log.Debug("websocket client disconnected")
			return

		case msg, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"),
					time.Now().Add(wsWriteWait))
				return
			}
			if msg.Sequence <= lastSequence {
				continue
			}
			if err := writeFrame(conn, &ServerFrame{Type: FrameMessage, Message: &msg}); err != nil {
				return
			}
			lastSequence = msg.Sequence

		case e := <-rejected:
			if err := writeFrame(conn, &ServerFrame{Type: FrameError, Error: &e}); err != nil {
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readLoop submits client frames until the connection fails. It is the only
// reader; all writes happen in Serve.
func (h *WebSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *engine.Session, rejected chan<- model.ErrorEvent, done chan<- struct{}, log *logger.Logger) {
	defer close(done)

	conn.SetReadLimit(middleware.MaxMessageLength * 2)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var in ClientFrame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		if err := middleware.ValidateMessageText(in.Text); err != nil {
			select {
			case rejected <- model.ErrorEvent{Code: "invalid_message", Message: err.Error()}:
			default:
			}
			continue
		}

		// Blank text is accepted and ignored by the session.
		if _, err := h.service.Submit(ctx, sess.OwnerID(), sess.ID(), in.Text); err != nil {
			log.Debug("websocket submit failed", zap.Error(err))
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame *ServerFrame) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(frame)
}
