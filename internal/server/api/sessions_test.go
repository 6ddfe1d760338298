package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/store"
)

func seedSession(t *testing.T, s *store.Store, id string, letters ...string) {
	t.Helper()
	if err := s.Sessions().Create(&store.Session{ID: id, Source: store.SourceWebSocket}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	for _, l := range letters {
		if err := s.Letters().Append(&store.LetterRecord{SessionID: id, Letter: l, Confidence: 0.9, StabilityScore: 0.96}); err != nil {
			t.Fatalf("failed to append letter: %v", err)
		}
	}
}

func TestSessionsHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "s1")
	seedSession(t, s, "s2")
	handler := NewSessionsHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(response.Sessions))
	}
	for _, sess := range response.Sessions {
		if sess.Source != "websocket" || sess.StartedAt == "" {
			t.Errorf("unexpected session %+v", sess)
		}
	}
}

func TestSessionsHandler_List_Empty(t *testing.T) {
	handler := NewSessionsHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Body.String(); got != "{\"sessions\":[]}\n" {
		t.Errorf("expected empty array, got %s", got)
	}
}

func TestSessionsHandler_Get(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "present")
	if err := s.Sessions().End("present"); err != nil {
		t.Fatalf("failed to end session: %v", err)
	}
	handler := NewSessionsHandler(s)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing", "/api/sessions/present", http.StatusOK},
		{"missing", "/api/sessions/absent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp sessionResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.ID != "present" || resp.EndedAt == "" {
				t.Errorf("unexpected session %+v", resp)
			}
		})
	}
}

func TestSessionsHandler_Letters(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "spelled", "C", "A", "B")
	handler := NewSessionsHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/spelled/letters", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp lettersResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Transcript != "CAB" {
		t.Errorf("transcript = %q, want CAB", resp.Transcript)
	}
	if len(resp.Letters) != 3 || resp.Letters[0].Letter != "C" {
		t.Errorf("unexpected letters %+v", resp.Letters)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/nobody/letters", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for a missing session, got %d", rec.Code)
	}
}

func TestSessionsHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	reg := NewRegistry(s, store.SourceHTTP)
	handler := NewSessionsHandler(s, reg)

	id := reg.Open("")
	for i := 0; i < 4; i++ {
		reg.Classify(id, points(detector.LetterBLandmarks()))
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if reg.Len() != 0 {
		t.Errorf("expected live session dropped, Len() = %d", reg.Len())
	}
	if _, err := s.Sessions().GetByID(id); err == nil {
		t.Error("expected session deleted from store")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 on second delete, got %d", rec.Code)
	}
}

func TestSessionsHandler_Routing(t *testing.T) {
	handler := NewSessionsHandler(newTestStore(t))

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodPost, "/api/sessions", http.StatusMethodNotAllowed},
		{http.MethodPut, "/api/sessions/x", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/sessions/x/letters", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/sessions/x/other", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
