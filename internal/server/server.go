// Package server hosts the split-pane preview: a schema editor on the left
// and the live form on the right, one independent session per browser.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-formpreview/pkg/editor"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/render"
	rendertemplate "github.com/goliatone/go-formpreview/pkg/render/template"
	"github.com/goliatone/go-formpreview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla"
	"github.com/goliatone/go-formpreview/pkg/theme"
)

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInitialText seeds every new session's editor. Defaults to
// model.DefaultSchemaText.
func WithInitialText(text string) Option {
	return func(s *Server) {
		s.initialText = text
	}
}

// WithSink sets where accepted submissions go.
func WithSink(sink preview.Sink) Option {
	return func(s *Server) {
		s.sink = sink
	}
}

// WithClipboard sets the clipboard used by Copy. Defaults to the host's
// system clipboard.
func WithClipboard(cb editor.Clipboard) Option {
	return func(s *Server) {
		s.clipboard = cb
	}
}

// WithNoticeDuration overrides how long the success notice is shown.
func WithNoticeDuration(d time.Duration) Option {
	return func(s *Server) {
		s.noticeDuration = d
	}
}

// WithDefaultMode sets the theme used when the browser has no stored
// preference, ahead of the client hint.
func WithDefaultMode(mode theme.Mode) Option {
	return func(s *Server) {
		s.defaultMode = mode
	}
}

// WithPreviewOptions appends options applied to every session's preview.
func WithPreviewOptions(opts ...preview.Option) Option {
	return func(s *Server) {
		s.previewOptions = append(s.previewOptions, opts...)
	}
}

// WithSessionTTL sets how long idle sessions are kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessionTTL = ttl
	}
}

// WithClock overrides time.Now for session bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server serves the preview UI.
type Server struct {
	router   *mux.Router
	sessions *sessionStore
	renderer render.Renderer
	pages    rendertemplate.TemplateRenderer
	logger   *slog.Logger

	initialText    string
	sink           preview.Sink
	clipboard      editor.Clipboard
	noticeDuration time.Duration
	defaultMode    theme.Mode
	previewOptions []preview.Option
	sessionTTL     time.Duration
	now            func() time.Time
}

// New builds the server and its routes.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger:      slog.Default(),
		initialText: model.DefaultSchemaText(),
		clipboard:   editor.SystemClipboard{},
		sessionTTL:  DefaultSessionTTL,
		now:         time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	renderer, err := vanilla.New(vanilla.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("server: renderer: %w", err)
	}
	s.renderer = renderer

	pages, err := gotemplate.New(
		gotemplate.WithFS(templatesFS()),
		gotemplate.WithGlobalData(map[string]any{
			"app_name":   AppName,
			"stylesheet": theme.AssetPrefix + "/" + vanilla.StylesheetName,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("server: templates: %w", err)
	}
	s.pages = pages

	s.sessions = newSessionStore(s.sessionTTL, s.now, s.newSession)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.withPreference)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/schema", s.handleSchema).Methods(http.MethodPost)
	router.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/copy", s.handleCopy).Methods(http.MethodPost)
	router.HandleFunc("/theme", s.handleTheme).Methods(http.MethodPost)
	router.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	assets := http.StripPrefix(theme.AssetPrefix+"/", http.FileServerFS(vanilla.AssetsFS()))
	router.PathPrefix(theme.AssetPrefix + "/").Handler(assets)
	return router
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close cancels every session's pending notice timer.
func (s *Server) Close() {
	s.sessions.closeAll()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpsrv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- httpsrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := httpsrv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) newSession(id string) *session {
	sess := &session{id: id}
	logger := s.logger.With("session", id)

	opts := []preview.Option{
		preview.WithRenderer(s.renderer),
		preview.WithLogger(logger),
	}
	if s.sink != nil {
		opts = append(opts, preview.WithSink(s.sink))
	}
	if s.noticeDuration > 0 {
		opts = append(opts, preview.WithNoticeDuration(s.noticeDuration))
	}
	opts = append(opts, s.previewOptions...)

	sess.workspace = editor.New(s.initialText,
		editor.WithClipboard(s.clipboard),
		editor.WithLogger(logger),
		editor.WithSchemaListener(func(schema model.FormSchema) {
			sess.mount(schema, opts, logger)
		}),
	)
	return sess
}
