package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/gorilla/websocket"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func exchange(t *testing.T, conn *websocket.Conn, msg any) serverMessage {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply serverMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func landmarksMessage(hand detector.HandLandmarks) clientMessage {
	return clientMessage{Type: MessageGestureLandmarks, Landmarks: hand.Points[:]}
}

func TestRealtime_GestureStream(t *testing.T) {
	st := newTestStore(t)
	srv := New(Config{Store: st})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dial(t, ts, "/ws/real-time")
	msg := landmarksMessage(detector.LetterBLandmarks())

	var reply serverMessage
	for i := 1; i <= 5; i++ {
		reply = exchange(t, conn, msg)
		if reply.Type != MessageGestureResult {
			t.Fatalf("frame %d: type = %q, want %q", i, reply.Type, MessageGestureResult)
		}
		if reply.Timestamp == "" || reply.SessionID == "" {
			t.Fatalf("frame %d: missing timestamp or session id: %+v", i, reply)
		}
		if i < 5 && reply.Data != nil {
			t.Fatalf("frame %d: expected null data, got %+v", i, reply.Data)
		}
	}

	if reply.Data == nil || reply.Data.Letter != "B" {
		t.Fatalf("expected B on the fifth frame, got %+v", reply.Data)
	}

	transcript, err := st.Letters().Transcript(reply.SessionID)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if transcript != "B" {
		t.Errorf("transcript = %q, want B", transcript)
	}

	sessionID := reply.SessionID
	conn.Close()
	waitFor(t, "session end", func() bool {
		sess, err := st.Sessions().GetByID(sessionID)
		return err == nil && sess.EndedAt != nil
	})
}

func TestRealtime_ConnectionsAreIsolated(t *testing.T) {
	srv := New(Config{})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	first := dial(t, ts, "/ws/real-time")
	second := dial(t, ts, "/ws/real-time")
	msg := landmarksMessage(detector.LetterBLandmarks())

	for i := 0; i < 4; i++ {
		exchange(t, first, msg)
	}

	if reply := exchange(t, second, msg); reply.Data != nil {
		t.Errorf("expected a fresh history on the second connection, got %+v", reply.Data)
	}
	if reply := exchange(t, first, msg); reply.Data == nil || reply.Data.Letter != "B" {
		t.Errorf("expected B on the first connection, got %+v", reply.Data)
	}
	if a, b := exchange(t, first, msg), exchange(t, second, msg); a.SessionID == b.SessionID {
		t.Error("expected distinct session ids per connection")
	}
}

func TestRealtime_PingAndErrors(t *testing.T) {
	srv := New(Config{})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dial(t, ts, "/ws/real-time")

	pong := exchange(t, conn, map[string]string{"type": "ping"})
	if pong.Type != MessagePong || pong.ServerStatus != "running" {
		t.Errorf("unexpected pong %+v", pong)
	}

	unknown := exchange(t, conn, map[string]string{"type": "translate_text"})
	if unknown.Type != MessageError || !strings.Contains(unknown.Message, "translate_text") {
		t.Errorf("unexpected reply to unknown type %+v", unknown)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{bad")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var bad serverMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("read: %v", err)
	}
	if bad.Type != MessageError {
		t.Errorf("expected error for malformed JSON, got %+v", bad)
	}

	short := exchange(t, conn, clientMessage{Type: MessageGestureLandmarks, Landmarks: make([]detector.Point3D, 3)})
	if short.Type != MessageGestureResult || short.Data != nil {
		t.Errorf("expected null result for a short frame, got %+v", short)
	}

	// The connection survives all of the above.
	if again := exchange(t, conn, map[string]string{"type": "ping"}); again.Type != MessagePong {
		t.Errorf("expected pong after errors, got %+v", again)
	}
}

func TestRealtime_HealthCountsConnections(t *testing.T) {
	srv := New(Config{})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dial(t, ts, "/ws/real-time")
	dial(t, ts, "/api/letters")

	waitFor(t, "two connections", func() bool { return srv.Connections() == 2 })

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	var health struct {
		Status      string `json:"status"`
		Connections int    `json:"connections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Connections != 2 {
		t.Errorf("unexpected health %+v", health)
	}

	conn.Close()
	waitFor(t, "one connection", func() bool { return srv.Connections() == 1 })
}

func TestRealtime_RejectsPlainHTTP(t *testing.T) {
	srv := New(Config{})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/ws/real-time", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
