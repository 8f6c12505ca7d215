// Package api serves the reader over HTTP: JSON endpoints for search,
// chapters and interlinear comparison, and the rendered reading pages.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperReader/internal/logging"
	"github.com/FocuswithJustin/JuniperReader/internal/reader"
	"github.com/FocuswithJustin/JuniperReader/internal/render"
	"github.com/FocuswithJustin/JuniperReader/internal/server"
)

// Server is the reader's HTTP surface.
type Server struct {
	cfg       Config
	reader    *reader.Reader
	pages     render.Renderer
	fragments render.Renderer
	limiter   *RateLimiter
	started   time.Time
}

// New builds a server for r.
func New(r *reader.Reader, cfg Config) (*Server, error) {
	pages, err := render.NewHTML(false)
	if err != nil {
		return nil, err
	}
	fragments, err := render.NewHTML(true)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:       cfg,
		reader:    r,
		pages:     pages,
		fragments: fragments,
		started:   time.Now(),
	}
	if cfg.RateLimitRequests > 0 {
		s.limiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         cfg.RateLimitBurst,
		})
	}
	return s, nil
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	handler = server.CORS(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	return logging.CombinedMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", s.apiRoute(s.handleHealth, false))
	mux.Handle("GET /api/versions", s.apiRoute(s.handleVersions, false))
	mux.Handle("GET /api/books/{version}", s.apiRoute(s.handleBooks, false))
	mux.Handle("GET /api/search", s.apiRoute(s.handleSearch, true))
	mux.Handle("GET /api/chapter/{version}/{book}/{chapter}", s.apiRoute(s.handleChapter, true))
	mux.Handle("GET /api/interlinear/{versionA}/{versionB}/{book}/{chapter}", s.apiRoute(s.handleInterlinear, true))

	mux.Handle("GET /{$}", s.pageRoute(s.handleIndex))
	mux.Handle("GET /search", s.pageRoute(s.handleSearchPage))
	mux.Handle("GET /read/{version}/{book}/{chapter}", s.pageRoute(s.handleReadPage))
	mux.Handle("GET /compare/{versionA}/{versionB}/{book}/{chapter}", s.pageRoute(s.handleComparePage))

	return mux
}

func (s *Server) apiRoute(h http.HandlerFunc, limited bool) http.Handler {
	var handler http.Handler = server.SecurityHeaders(server.APICSPConfig(), h)
	if limited && s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}
	return handler
}

func (s *Server) pageRoute(h http.HandlerFunc) http.Handler {
	var handler http.Handler = server.SecurityHeaders(server.PageCSPConfig(), h)
	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}
	return handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.pruneLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		logging.ServerStartup("reader", "http", s.cfg.Port,
			"versions", len(s.reader.Catalog().Versions()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logging.Info("server_shutdown", "timeout", timeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

// prune drops idle rate-limit buckets and expired cache entries.
func (s *Server) prune() int {
	removed := 0
	if s.limiter != nil {
		removed += s.limiter.Prune()
	}
	if n := s.reader.PruneCaches(); n > 0 {
		logging.Debug("cache_pruned", "entries", n)
		removed += n
	}
	return removed
}
