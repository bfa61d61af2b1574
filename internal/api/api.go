// Package api provides HTTP handlers and the main API server logic for the
// webzine engine.
//
// It exposes the public like/view/comment endpoints and the JWT-guarded admin
// content CRUD endpoints, wiring the counter and comment services to the
// configured store.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanulzine/webzine/internal/comment"
	"github.com/hanulzine/webzine/internal/counter"
	"github.com/hanulzine/webzine/internal/sanitize"
	"github.com/hanulzine/webzine/internal/spam"
	"github.com/hanulzine/webzine/internal/store"
)

// Default configuration constants
const (
	// DefaultAddr is the default API listen address
	DefaultAddr = ":8080"
	// DefaultReadTimeout bounds how long a request may take to arrive
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds how long a response may take to drain
	DefaultWriteTimeout = 15 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown on exit
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds API server configuration.
type Opts struct {
	Addr           string
	AdminJWTSecret string
	BcryptCost     int
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithAdminJWTSecret sets the HMAC secret validating admin bearer tokens.
// Without a secret the admin endpoints are disabled.
func WithAdminJWTSecret(secret string) Option {
	return func(o *Opts) {
		o.AdminJWTSecret = secret
	}
}

// WithBcryptCost sets the bcrypt cost used for comment credential hashing.
func WithBcryptCost(cost int) Option {
	return func(o *Opts) {
		o.BcryptCost = cost
	}
}

// Server routes HTTP requests to the engine's services.
type Server struct {
	addr      string
	jwtSecret []byte
	store     store.Store
	counters  *counter.Service
	comments  *comment.Service
}

// NewServer creates an API server over the given store and services.
func NewServer(st store.Store, counters *counter.Service, comments *comment.Service, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	var secret []byte
	if cfg.AdminJWTSecret != "" {
		secret = []byte(cfg.AdminJWTSecret)
	}
	return &Server{
		addr:      cfg.Addr,
		jwtSecret: secret,
		store:     st,
		counters:  counters,
		comments:  comments,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/content", s.listContentHandler)
	mux.HandleFunc("GET /api/content/{id}", s.getContentHandler)
	mux.HandleFunc("POST /api/content/{id}/like", s.likeHandler)
	mux.HandleFunc("POST /api/content/{id}/view", s.viewHandler)
	mux.HandleFunc("GET /api/content/{id}/comments", s.listCommentsHandler)
	mux.HandleFunc("POST /api/content/{id}/comments", s.submitCommentHandler)

	mux.HandleFunc("GET /api/admin/content", s.requireAdmin(s.adminListContentHandler))
	mux.HandleFunc("POST /api/admin/content", s.requireAdmin(s.adminCreateContentHandler))
	mux.HandleFunc("PUT /api/admin/content/{id}", s.requireAdmin(s.adminUpdateContentHandler))
	mux.HandleFunc("DELETE /api/admin/content/{id}", s.requireAdmin(s.adminDeleteContentHandler))

	return mux
}

// Run builds the store and services from options and serves the API until the
// process receives SIGINT or SIGTERM.
func Run(storeOpts []store.Option, counterOpts []counter.Option, spamOpts []spam.Option, apiOpts []Option) error {
	st, err := store.New(storeOpts...)
	if err != nil {
		slog.Error("api.Run: failed to create store", "error", err)
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("api.Run: failed to close store", "error", err)
		}
	}()

	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}

	counters := counter.NewService(st, counterOpts...)
	classifier := spam.NewClassifier(spamOpts...)
	comments := comment.NewService(st, sanitize.New(), classifier, comment.NewBcryptHasher(cfg.BcryptCost))
	srv := NewServer(st, counters, comments, apiOpts...)

	httpServer := &http.Server{
		Addr:         srv.addr,
		Handler:      srv.Handler(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api.Run: serving", "addr", srv.addr, "admin_enabled", len(srv.jwtSecret) > 0)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api.Run: server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
		slog.Info("api.Run: shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("api.Run: graceful shutdown failed", "error", err)
			return err
		}
		slog.Info("api.Run: shutdown complete")
		return nil
	}
}
