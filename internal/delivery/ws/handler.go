package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"spontimeet/internal/delivery/http/middleware"
	"spontimeet/internal/domain"
)

const (
	sendTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
)

// Frame is the envelope for every WebSocket message in both directions.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type joinRoomPayload struct {
	ActivityID string `json:"activityId"`
}

type sendMessagePayload struct {
	ActivityID string `json:"activityId"`
	Content    string `json:"content"`
}

// connSubscriber adapts a websocket connection to domain.RoomSubscriber.
// gorilla connections allow one concurrent writer, so all writes go through
// the mutex.
type connSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *connSubscriber) Deliver(msg *domain.MessageWithSender) error {
	return s.writeJSON(outFrame{Type: "receive_message", Data: msg})
}

func (s *connSubscriber) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A peer that stops reading must not wedge the room's fan-out. The
	// write errors once the deadline passes and the relay detaches the
	// handle.
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

// Handler upgrades authenticated requests to WebSocket connections and
// bridges them to the room relay.
type Handler struct {
	Logger   *slog.Logger
	Chat     domain.ChatService
	Relay    domain.RoomRelay
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler. Origins in allowedOrigins may
// connect; an empty list rejects all cross-origin upgrades.
func NewHandler(logger *slog.Logger, chat domain.ChatService, relay domain.RoomRelay, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &Handler{
		Logger: logger,
		Chat:   chat,
		Relay:  relay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[strings.TrimSuffix(origin, "/")]
				return ok
			},
		},
	}
}

// ServeWS godoc
// @Summary Open the realtime messaging socket
// @Description Upgrades to a WebSocket. Clients send frames {type, data}: join_room and leave_room with {activityId}, send_message with {activityId, content}, and ping. The server pushes receive_message frames for rooms the connection joined. Authenticate with a Bearer header or token query parameter.
// @Tags chat
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "user", userID, "err", err)
		return
	}
	defer conn.Close()

	sub := &connSubscriber{conn: conn}
	joined := make(map[string]struct{})
	defer func() {
		for roomID := range joined {
			h.Relay.Unsubscribe(roomID, sub)
		}
		h.Logger.Info("websocket disconnected", "user", userID)
	}()

	h.Logger.Info("websocket connected", "user", userID)

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("websocket read failed", "user", userID, "err", err)
			}
			return
		}

		switch frame.Type {
		case "join_room":
			var p joinRoomPayload
			if err := json.Unmarshal(frame.Data, &p); err != nil || p.ActivityID == "" {
				h.sendError(sub, "join_room requires an activityId")
				continue
			}
			h.Relay.Subscribe(p.ActivityID, sub)
			joined[p.ActivityID] = struct{}{}
			_ = sub.writeJSON(outFrame{Type: "room_joined", Data: map[string]string{"activityId": p.ActivityID}})

		case "leave_room":
			var p joinRoomPayload
			if err := json.Unmarshal(frame.Data, &p); err != nil || p.ActivityID == "" {
				h.sendError(sub, "leave_room requires an activityId")
				continue
			}
			h.Relay.Unsubscribe(p.ActivityID, sub)
			delete(joined, p.ActivityID)

		case "send_message":
			var p sendMessagePayload
			if err := json.Unmarshal(frame.Data, &p); err != nil || p.ActivityID == "" {
				h.sendError(sub, "send_message requires an activityId and content")
				continue
			}
			h.handleSend(sub, userID, p)

		case "ping":
			_ = sub.writeJSON(outFrame{Type: "pong", Data: "pong"})

		default:
			h.sendError(sub, "unknown frame type: "+frame.Type)
		}
	}
}

// handleSend persists and fans out one message. The connection's read loop
// should not be held hostage by a slow store, so each send gets its own
// deadline instead of the request context, which ends when the HTTP
// handler returns.
func (h *Handler) handleSend(sub *connSubscriber, userID string, p sendMessagePayload) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg, _, err := h.Chat.Send(ctx, p.ActivityID, userID, p.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.sendError(sub, "message content cannot be empty")
		case errors.Is(err, domain.ErrNotFound):
			h.sendError(sub, "activity not found")
		default:
			h.Logger.Error("send message failed", "user", userID, "activity", p.ActivityID, "err", err)
			h.sendError(sub, "failed to send message")
		}
		return
	}
	// The sender gets the stored message back even if they have not joined
	// the room on this connection.
	_ = sub.writeJSON(outFrame{Type: "message_sent", Data: msg})
}

func (h *Handler) sendError(sub *connSubscriber, msg string) {
	_ = sub.writeJSON(outFrame{Type: "error", Data: msg})
}
