package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jcallahan/tastemap/internal/config"
	"github.com/jcallahan/tastemap/internal/session"
)

type Server struct {
	session *session.Session
	cfg     *config.Config
	hub     *hub
	mux     *http.ServeMux
	logger  *slog.Logger
}

func NewServer(sess *session.Session, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		session: sess,
		cfg:     cfg,
		hub:     newHub(sess, logger),
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/restaurants", s.handleListRestaurants)
	s.mux.HandleFunc("POST /api/restaurants", s.handleSaveRestaurant)
	s.mux.HandleFunc("DELETE /api/restaurants/{id}", s.handleDeleteRestaurant)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/config", s.handleConfig)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Start launches the websocket fan-out loop. It must be called before the
// server accepts connections; the loop stops when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.hub.run(ctx)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The websocket endpoint hijacks the connection; wrapping it would
		// hide the Hijacker interface from the upgrader.
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(withCORS(s.mux))).ServeHTTP(w, r)
}

// ListenAndServe blocks until the server fails or ctx is cancelled, in which
// case it drains in-flight requests before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
