// Package server is the browser shell for treewalk: a chi router that serves
// the live diagram, accepts search requests and streams every surface change
// to the page over server-sent events.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/treewalk/pkg/animate"
	"github.com/matzehuels/treewalk/pkg/client"
	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/render"
	"github.com/matzehuels/treewalk/pkg/tree"
)

const (
	defaultKeepalive = 15 * time.Second
	eventBuffer      = 64
)

// Options configures a [Server]. Engine, Animator and Source are required.
type Options struct {
	Engine   *render.Engine
	Animator *animate.Animator
	Source   client.Source
	Logger   *log.Logger

	// Keepalive is the interval between SSE comment lines.
	Keepalive time.Duration
}

// Server holds the handlers of the browser shell.
type Server struct {
	engine    *render.Engine
	animator  *animate.Animator
	source    client.Source
	logger    *log.Logger
	keepalive time.Duration

	// serialises refreshes so two renders never race on the surface
	refreshMu sync.Mutex
}

// New returns a server. The surface is the one owned by opts.Engine.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Keepalive <= 0 {
		opts.Keepalive = defaultKeepalive
	}
	return &Server{
		engine:    opts.Engine,
		animator:  opts.Animator,
		source:    opts.Source,
		logger:    opts.Logger,
		keepalive: opts.Keepalive,
	}
}

// Surface returns the diagram served by s.
func (s *Server) Surface() *diagram.Surface { return s.engine.Surface() }

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/diagram.svg", s.handleDiagramSVG)
		r.Get("/diagram.json", s.handleDiagramJSON)
		r.Post("/search", s.handleSearch)
		r.Get("/session", s.handleSession)
		r.Post("/cancel", s.handleCancel)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/events", s.handleEvents)
	})
	return r
}

// Refresh fetches the tree and renders it.
//
// A failed fetch never touches a diagram that is already shown. Only when
// the surface is still empty is a cached tree drawn in its place; the fetch
// error is returned either way. A running animation is cancelled only once
// the new tree has been validated and is about to be swapped in.
func (s *Server) Refresh(ctx context.Context) (int, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	nodes, fetchErr := s.fetch(ctx)
	if fetchErr != nil && (len(nodes) == 0 || !s.Surface().Empty()) {
		return 0, fetchErr
	}

	if err := s.engine.RenderThen(ctx, nodes, s.animator.Cancel); err != nil {
		return 0, err
	}
	return len(nodes), fetchErr
}

type cachedSource interface {
	FetchTreeOrCached(ctx context.Context) (tree.NodeList, error)
}

func (s *Server) fetch(ctx context.Context) (tree.NodeList, error) {
	if cs, ok := s.source.(cachedSource); ok {
		return cs.FetchTreeOrCached(ctx)
	}
	return s.source.FetchTree(ctx)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.animator.Cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}
