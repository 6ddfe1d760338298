// Package server provides the HTTP and websocket front end of the fingerspelling service.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/ayusman/fingerspell/internal/server/api"
	"github.com/ayusman/fingerspell/internal/store"
)

// DefaultSessionIdleTimeout is how long an HTTP recognize session may sit
// unused before its classifier is dropped.
const DefaultSessionIdleTimeout = 10 * time.Minute

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// App is the camera pipeline. When set, its letters are broadcast on
	// /api/letters and it can be controlled through /api/pipeline.
	App *app.App
	// Frames feeds /api/stream. Defaults to App when nil.
	Frames             FrameSource
	StreamFPS          int
	SessionIdleTimeout time.Duration
}

// Server represents the HTTP server for the fingerspelling application.
type Server struct {
	config   Config
	mux      *http.ServeMux
	start    time.Time
	sessions *api.Registry
	realtime *RealtimeHandler
	letters  *LettersHub

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.SessionIdleTimeout <= 0 {
		config.SessionIdleTimeout = DefaultSessionIdleTimeout
	}
	if config.Frames == nil && config.App != nil {
		config.Frames = config.App
	}

	s := &Server{
		config:   config,
		mux:      http.NewServeMux(),
		start:    time.Now(),
		sessions: api.NewRegistry(config.Store, store.SourceHTTP),
		letters:  NewLettersHub(),
		stopCh:   make(chan struct{}),
	}
	s.realtime = NewRealtimeHandler(api.NewRegistry(config.Store, store.SourceWebSocket))

	if config.App != nil {
		config.App.OnLetter(s.letters.Publish)
	}

	s.setupRoutes()
	go s.pruneSessions()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/recognize", api.NewRecognizeHandler(s.sessions))
	s.mux.Handle("/api/analyze", api.AnalyzeHandler{})
	s.mux.Handle("/ws/real-time", s.realtime)
	s.mux.Handle("/api/letters", s.letters)

	if s.config.Store != nil {
		sessionsHandler := api.NewSessionsHandler(s.config.Store, s.sessions, s.realtime.registry)
		s.mux.Handle("/api/sessions", sessionsHandler)
		s.mux.Handle("/api/sessions/", sessionsHandler)
	}

	if s.config.App != nil {
		pipeline := api.NewPipelineHandler(s.config.App)
		s.mux.Handle("/api/pipeline", pipeline)
		s.mux.Handle("/api/pipeline/", pipeline)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames, s.config.StreamFPS))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Connections counts open websocket clients.
func (s *Server) Connections() int {
	return s.realtime.Count() + s.letters.Count()
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":      "ok",
		"uptime":      time.Since(s.start).String(),
		"connections": s.Connections(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// pruneSessions drops idle HTTP recognize sessions until Close.
func (s *Server) pruneSessions() {
	interval := s.config.SessionIdleTimeout / 2
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sessions.Prune(s.config.SessionIdleTimeout)
		}
	}
}

// Close stops background work and disconnects websocket clients.
func (s *Server) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.letters.Close()
		s.realtime.Close()
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
