// internal/server/server.go
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"segment-insights/internal/common/config"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/common/observability"
	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/chat"
	"segment-insights/internal/engine/llm"
	"segment-insights/internal/engine/memory"
	"segment-insights/internal/engine/transcript"
)

// Options carries everything the HTTP layer needs. Store, Indexer and
// Observability are optional.
type Options struct {
	Config        *config.Config
	Engine        *analytics.Engine
	Generator     llm.Generator
	Store         *memory.RedisStore
	Indexer       *transcript.Indexer
	Observability *observability.Observability
	Logger        logger.Logger
}

// Server exposes the chat engine over HTTP. Each session id owns its
// own controller, so concurrent conversations never share memory.
type Server struct {
	opts   Options
	logger logger.Logger

	mu       sync.Mutex
	sessions map[string]*chat.Controller
}

func New(opts Options) *Server {
	return &Server{
		opts: opts,
		logger: opts.Logger.With(map[string]interface{}{
			"component": "server",
		}),
		sessions: make(map[string]*chat.Controller),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/clear", s.handleClear)
	mux.HandleFunc("GET /api/chat/summary", s.handleSummary)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Intent    string `json:"intent"`
	Segments  []int  `json:"segments"`
	Fallback  bool   `json:"fallback"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	controller := s.session(r, req.SessionID)
	result := controller.Respond(r.Context(), req.Message)

	if s.opts.Observability != nil {
		status := "ok"
		if result.Fallback {
			status = "fallback"
		}
		s.opts.Observability.RecordQueryProcessed(r.Context(), status)
		s.opts.Observability.RecordQueryDuration(r.Context(), time.Since(start), status)
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		SessionID: controller.SessionID(),
		Response:  result.Response,
		Intent:    string(result.Intent),
		Segments:  result.Segments,
		Fallback:  result.Fallback,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	controller := s.session(r, req.SessionID)
	if err := controller.ClearMemory(r.Context()); err != nil {
		s.logger.Warn("session clear failed", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"session_id": req.SessionID,
		"status":     "cleared",
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	s.writeJSON(w, http.StatusOK, s.session(r, sessionID).ConversationSummary())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	s.writeJSON(w, http.StatusOK, s.session(r, sessionID).SystemStatus())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session returns the controller for a session id, creating and
// hydrating it on first sight. An empty id starts a fresh session.
func (s *Server) session(r *http.Request, sessionID string) *chat.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if controller, ok := s.sessions[sessionID]; ok {
			return controller
		}
	}

	controller := chat.NewController(chat.Options{
		Engine:         s.opts.Engine,
		Generator:      s.opts.Generator,
		MaxMemoryTurns: s.opts.Config.Chat.MaxMemoryTurns,
		SessionID:      sessionID,
		Store:          s.opts.Store,
		Indexer:        s.opts.Indexer,
		Logger:         s.opts.Logger,
	})
	if err := controller.RestoreHistory(r.Context()); err != nil {
		s.logger.Warn("session history restore failed", map[string]interface{}{
			"sessionId": controller.SessionID(),
			"error":     err.Error(),
		})
	}
	s.sessions[controller.SessionID()] = controller
	return controller
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
