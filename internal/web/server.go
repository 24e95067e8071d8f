// Package web serves the checklist over HTTP: a password page, the grid
// form, and the history viewer. Every form post redirects back to a GET so
// a reload never repeats an action.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"shift-checklist/internal/auth"
	"shift-checklist/internal/checklist"
	"shift-checklist/internal/history"
	"shift-checklist/internal/session"
)

type Options struct {
	Catalog  checklist.Catalog
	Layout   checklist.Layout
	Gate     *auth.Gate
	Sessions *session.Manager
	History  *history.Repository

	// CSRFKey enables gorilla/csrf when set (32 bytes).
	CSRFKey       []byte
	SecureCookies bool

	Logger *zap.Logger
}

type Server struct {
	opts  Options
	log   *zap.Logger
	pages map[string]*template.Template
}

func New(opts Options) (*Server, error) {
	if opts.Gate == nil || opts.Sessions == nil || opts.History == nil {
		return nil, errors.New("web: gate, sessions and history are required")
	}
	if err := opts.Catalog.Validate(); err != nil {
		return nil, err
	}
	if opts.Layout == "" {
		opts.Layout = checklist.LayoutBySection
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{opts: opts, log: opts.Logger, pages: pages}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		if len(s.opts.CSRFKey) > 0 {
			if !s.opts.SecureCookies {
				r.Use(markPlaintext)
			}
			r.Use(csrf.Protect(s.opts.CSRFKey,
				csrf.Secure(s.opts.SecureCookies),
				csrf.Path("/"),
				csrf.FieldName("csrf_token"),
				csrf.ErrorHandler(http.HandlerFunc(s.handleCSRFFailure)),
			))
		}
		r.Use(s.withSession)

		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleIndex)
			r.Post("/", s.handleGridAction)
			r.Get("/history", s.handleHistory)
			r.Get("/history/export.csv", s.handleExportCSV)
			r.Get("/history/export.xlsx", s.handleExportXLSX)
			r.Post("/history/clear", s.handleClear)
		})
	})
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("checklist server listening", zap.String("addr", addr), zap.String("layout", string(s.opts.Layout)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
