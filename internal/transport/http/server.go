package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"undercover/internal/app"
	"undercover/internal/config"
	"undercover/internal/domain"
	"undercover/internal/transport/ws"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  *mux.Router
	hub     *app.Hub
	gateway *ws.Gateway
	store   SettingsStore
	config  *config.Config
	logger  *slog.Logger
}

// SettingsStore persists settings that seed a room the next time it is
// created.
type SettingsStore interface {
	SaveRoomSettings(ctx context.Context, code string, settings domain.Settings) error
	DeleteRoomSettings(ctx context.Context, code string) error
}

// Option configures a Server
type Option func(*Server)

// WithSettingsStore enables PUT and DELETE /api/rooms/{roomCode}/settings
func WithSettingsStore(store SettingsStore) Option {
	return func(s *Server) { s.store = store }
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, hub *app.Hub, gateway *ws.Gateway, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		hub:     hub,
		gateway: gateway,
		config:  cfg,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.recoverMiddleware, s.corsMiddleware, s.logMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms/{roomCode}", s.handleGetRoom).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rooms/{roomCode}/qr", s.handleRoomQR).Methods(http.MethodGet, http.MethodOptions)
	if s.store != nil {
		api.HandleFunc("/rooms/{roomCode}/settings", s.handleSaveSettings).Methods(http.MethodPut, http.MethodOptions)
		api.HandleFunc("/rooms/{roomCode}/settings", s.handleDeleteSettings).Methods(http.MethodDelete)
	}
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet, http.MethodOptions)

	wsHandler := ws.NewHandler(s.gateway, s.config.RateLimit.EventsPerSecond, s.config.RateLimit.Burst, s.logger)
	s.router.Handle("/ws", wsHandler).Methods(http.MethodGet)
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// corsMiddleware adds permissive CORS headers and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// logMiddleware logs each request once it completes
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		level := slog.LevelInfo
		if r.URL.Path == "/api/health" && !s.config.IsDevelopment() {
			level = slog.LevelDebug
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// recoverMiddleware turns a handler panic into a 500 response
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic serving request", "path", r.URL.Path, "panic", rec)
				s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// baseURL is the public origin used in invite links
func (s *Server) baseURL(r *http.Request) string {
	if s.config.Server.PublicURL != "" {
		return s.config.Server.PublicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(proto)
	}
	return scheme + "://" + r.Host
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
