package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/server/api"
	"github.com/gorilla/websocket"
)

// maxMessageSize bounds one client message; a frame of 21 landmarks is well under 4 KiB.
const maxMessageSize = 64 * 1024

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message types exchanged on /ws/real-time.
const (
	MessageGestureLandmarks = "gesture_landmarks"
	MessageGestureResult    = "gesture_result"
	MessagePing             = "ping"
	MessagePong             = "pong"
	MessageError            = "error"
)

type clientMessage struct {
	Type      string             `json:"type"`
	Landmarks []detector.Point3D `json:"landmarks"`
}

type serverMessage struct {
	Type         string          `json:"type"`
	SessionID    string          `json:"session_id,omitempty"`
	Data         *gesture.Result `json:"data"`
	Message      string          `json:"message,omitempty"`
	ServerStatus string          `json:"server_status,omitempty"`
	Timestamp    string          `json:"timestamp"`
}

// RealtimeHandler serves /ws/real-time. Every connection is its own session
// with its own classifier, so concurrent clients never share history.
type RealtimeHandler struct {
	registry *api.Registry

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewRealtimeHandler creates a RealtimeHandler whose sessions live in registry.
func NewRealtimeHandler(registry *api.Registry) *RealtimeHandler {
	return &RealtimeHandler{
		registry: registry,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and answers client messages until the
// connection closes.
func (h *RealtimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	sessionID := h.registry.Open("")
	h.track(conn, true)
	defer func() {
		h.track(conn, false)
		h.registry.Close(sessionID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		reply := h.handleMessage(sessionID, data)
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("websocket write error: %v", err)
			return
		}
	}
}

// handleMessage turns one client message into its reply.
func (h *RealtimeHandler) handleMessage(sessionID string, data []byte) serverMessage {
	now := time.Now().Format(time.RFC3339Nano)

	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return serverMessage{Type: MessageError, Message: "invalid message: " + err.Error(), Timestamp: now}
	}

	switch msg.Type {
	case MessageGestureLandmarks:
		_, result := h.registry.Classify(sessionID, msg.Landmarks)
		return serverMessage{Type: MessageGestureResult, SessionID: sessionID, Data: result, Timestamp: now}
	case MessagePing:
		return serverMessage{Type: MessagePong, ServerStatus: "running", Timestamp: now}
	default:
		return serverMessage{Type: MessageError, Message: "unknown message type: " + msg.Type, Timestamp: now}
	}
}

func (h *RealtimeHandler) track(conn *websocket.Conn, add bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if add {
		h.conns[conn] = struct{}{}
	} else {
		delete(h.conns, conn)
	}
}

// Count returns the number of connected clients.
func (h *RealtimeHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *RealtimeHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
	}
}
