// Package server exposes the linkify parser over HTTP.
//
// Routes (all under /api/v1):
//
//	POST /segments   {"message": "..."} -> {"segments": [...]}
//	POST /analyze    {"message": "..."} -> {"segments", "stripped", "preserved"}
//	POST /render     {"message": "..."}?format=text|html|json -> rendered body
//	GET  /health     -> {"status": "ok", "siteDomain": "..."}
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	linkify "github.com/derwolz/rebelreads-linkify"
)

// ErrListen wraps failures to bind the listen address.
var ErrListen = errors.New("cannot listen")

// ShutdownTimeout bounds graceful shutdown after the context is cancelled.
var ShutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64  // 0 = DefaultMaxBodyBytes
	Marker       string // text marker for /render?format=text
}

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is 0.
const DefaultMaxBodyBytes = 1 << 20

// Server serves the HTTP API. Create with New.
type Server struct {
	parser *linkify.Parser
	log    logrus.FieldLogger
	opts   Options
	router *mux.Router
}

// New builds a Server around parser.
func New(parser *linkify.Parser, logger logrus.FieldLogger, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		parser: parser,
		log:    logger,
		opts:   opts,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.recoverPanics, s.logRequests)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	apiRouter.HandleFunc("/segments", s.Segments).Methods(http.MethodPost)
	apiRouter.HandleFunc("/analyze", s.Analyze).Methods(http.MethodPost)
	apiRouter.HandleFunc("/render", s.Render).Methods(http.MethodPost)

	return router
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe binds Options.Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrListen, s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts
// down gracefully. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"addr":       ln.Addr().String(),
		"siteDomain": s.parser.SiteDomain(),
	}).Info("HTTP server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
