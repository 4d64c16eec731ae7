// Package server is the HTTP presentation layer: an input form, a
// submission handler and a JSON API, each executing the pipeline
// synchronously per request.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"policyscope/internal/config"
	"policyscope/internal/logging"
	"policyscope/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the form and runs submissions.
type Server struct {
	cfg       *config.Config
	runner    *pipeline.Runner
	templates *template.Template
	httpSrv   *http.Server
}

// New builds a server around a pipeline runner.
func New(cfg *config.Config, runner *pipeline.Runner) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		runner:    runner,
		templates: tmpl,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("POST /calculate", s.handleCalculate)
	mux.HandleFunc("POST /api/calculate", s.handleAPICalculate)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  parseDuration(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout: parseDuration(cfg.Server.WriteTimeout, 300*time.Second),
	}

	return s, nil
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is cancelled, then drains connections within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Server("listening on %s", s.cfg.Server.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
		defer cancel()
		logging.Server("shutting down")
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
