// Package server exposes conversations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/comigor/tailortalk/internal/agent"
	"github.com/comigor/tailortalk/internal/failure"
	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/internal/metrics"
	"github.com/comigor/tailortalk/internal/session"
)

const (
	maxBodyBytes    = 1 << 20
	readTimeout     = 10 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Sessions resolves a session id to its conversation. *session.Store
// implements it.
type Sessions interface {
	Get(ctx context.Context, id string) (string, session.Conversation, error)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the successful answer to POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ErrorResponse is returned with every non-200 status.
type ErrorResponse struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id,omitempty"`
}

// Server routes chat requests to conversations.
type Server struct {
	sessions Sessions
	metrics  *metrics.Metrics
	mux      *http.ServeMux
}

func New(sessions Sessions, m *metrics.Metrics) *Server {
	s := &Server{sessions: sessions, metrics: m, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if m != nil {
		s.mux.Handle("GET /metrics", m.Handler())
	}
	return s
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.L.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.L.Warn("invalid chat request", "error", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "message is required"})
		return
	}

	id, conv, err := s.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		s.writeFailure(w, "", err)
		return
	}
	log := logger.WithSession(id)
	log.Info("chat request", "message", req.Message)

	reply, err := conv.Process(r.Context(), req.Message)
	switch {
	case errors.Is(err, agent.ErrLoopLimitExceeded):
		log.Warn("chat reply truncated", "error", err)
	case err != nil:
		s.writeFailure(w, id, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ChatResponse{Response: reply, SessionID: id})
}

func (s *Server) writeFailure(w http.ResponseWriter, id string, err error) {
	cat := failure.Classify(err)
	logger.L.Error("chat request failed", "session", id, "category", cat.String(), "error", err)
	s.writeJSON(w, cat.HTTPStatus(), ErrorResponse{Error: err.Error(), SessionID: id})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	s.metrics.ChatRequest(code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Warn("failed to write response", "error", err)
	}
}

// withCORS allows any origin, method and header, and answers preflight
// requests itself.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
			if hdrs := r.Header.Get("Access-Control-Request-Headers"); hdrs != "" {
				h.Set("Access-Control-Allow-Headers", hdrs)
			}
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
