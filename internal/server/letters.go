package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/gorilla/websocket"
)

// sendBuffer is how many letters a slow client may fall behind before
// new letters are dropped for it.
const sendBuffer = 32

type letterMessage struct {
	Type      string          `json:"type"`
	Data      app.Recognition `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// LettersHub broadcasts camera pipeline letters to websocket clients on /api/letters.
type LettersHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewLettersHub creates an empty hub.
func NewLettersHub() *LettersHub {
	return &LettersHub{clients: make(map[*websocket.Conn]chan []byte)}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LettersHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan []byte, sendBuffer)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go func() {
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
				return
			}
		}
	}()

	defer func() {
		h.mu.Lock()
		if ch, ok := h.clients[conn]; ok {
			delete(h.clients, conn)
			close(ch)
		}
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish sends rec to every connected client.
func (h *LettersHub) Publish(rec app.Recognition) {
	msg, err := json.Marshal(letterMessage{
		Type:      "letter",
		Data:      rec,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("failed to encode letter: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, send := range h.clients {
		select {
		case send <- msg:
		default:
		}
	}
}

// Count returns the number of connected clients.
func (h *LettersHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *LettersHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
}
