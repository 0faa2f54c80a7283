// Package server is the local HTTP transport. It admits permission requests
// into the queue and holds each caller's connection until a decision is made.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/cc-nod/internal/config"
	"github.com/yuya-takeyama/cc-nod/internal/queue"
)

// ErrAddressInUse means another process, most likely a second instance,
// already owns the port.
var ErrAddressInUse = errors.New("address already in use")

// maxBodyBytes bounds a permission request body
const maxBodyBytes = 4 << 20

const shortcutPrefix = "/shortcut/"

// Server serves the permission endpoint and its companions
type Server struct {
	cfg     config.ServerConfig
	queue   *queue.Queue
	metrics *Metrics
	logger  zerolog.Logger

	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener

	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger.With().Str("component", "server").Logger()
	}
}

// WithMetrics exposes m at /metrics and records rejections on it
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a server for q. Routes are registered immediately; extra
// transports are added with Mount before Serve is called.
func New(cfg config.ServerConfig, q *queue.Queue, opts ...Option) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:        cfg,
		queue:      q,
		logger:     zerolog.Nop(),
		router:     mux.NewRouter(),
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: /permission responses are held until a human acts
		BaseContext: func(net.Listener) context.Context { return s.baseCtx },
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/permission", s.handlePermission).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc(shortcutPrefix+"{action:allow|deny}", s.handleShortcut).Methods(http.MethodPost)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Mount attaches h under prefix, e.g. the MCP or Slack endpoints
func (s *Server) Mount(prefix string, h http.Handler) {
	s.router.PathPrefix(prefix).Handler(h)
}

// Handle attaches h at an exact path for the given methods
func (s *Server) Handle(path string, h http.HandlerFunc, methods ...string) {
	route := s.router.HandleFunc(path, h)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

// Handler returns the routed handler wrapped with CORS. The shortcut
// endpoints decide requests, so they never get CORS headers and preflights
// to them fail.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	withCORS := c.Handler(noContentOptions(s.router))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, shortcutPrefix) {
			s.router.ServeHTTP(w, r)
			return
		}
		withCORS.ServeHTTP(w, r)
	})
}

// noContentOptions answers OPTIONS requests that are not CORS preflights
func noContentOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Listen binds the configured loopback address
func (s *Server) Listen() error {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w: %s", ErrAddressInUse, addr)
		}
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Listening")
	return nil
}

// Addr returns the bound address, or the configured one before Listen
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr()
}

// Serve blocks until Shutdown. Listen must have succeeded.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown withdraws every request held on /permission, so hooks fall back
// to the agent's own prompt, then stops the HTTP server. MCP tool calls are
// not tied to their HTTP request and stay queued until decided or cancelled
// by the MCP client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelBase()
	return s.httpServer.Shutdown(ctx)
}
