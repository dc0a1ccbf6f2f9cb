package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"realestate-backend/internal/middleware"
	"realestate-backend/internal/transport"
)

const (
	apiName    = "Real Estate Backend API"
	apiVersion = "1.0.0"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Server serves the endpoints that do not belong to a resource.
type Server struct {
	DB  Pinger
	Log *slog.Logger
	now func() time.Time
}

func NewServer(db Pinger, log *slog.Logger) *Server {
	return &Server{DB: db, Log: log, now: time.Now}
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// Health answers 200 while MongoDB responds to a ping and 503 otherwise.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	resp := healthResponse{
		Status:    "OK",
		Message:   "Real Estate API is running",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		Database:  "connected",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	if s.DB != nil {
		if err := s.DB.Ping(ctx); err != nil {
			log.Warn("health: database ping failed", slog.String("error", err.Error()))
			resp.Status = "DEGRADED"
			resp.Database = "disconnected"
			status = http.StatusServiceUnavailable
		}
	}
	transport.WriteJSON(w, status, resp)
}

func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": apiName,
		"version": apiVersion,
		"endpoints": map[string]string{
			"projects":    "/api/projects",
			"clients":     "/api/clients",
			"contacts":    "/api/contacts",
			"newsletters": "/api/newsletters",
			"health":      "/api/health",
		},
	})
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.logWithRequest(r).Info("route not found", slog.String("method", r.Method), slog.String("path", r.URL.Path))
	transport.WriteError(w, http.StatusNotFound, "Route not found", nil)
}

func (s *Server) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.logWithRequest(r).Info("method not allowed", slog.String("method", r.Method), slog.String("path", r.URL.Path))
	transport.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
