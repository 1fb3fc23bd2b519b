// Package server exposes level generation over HTTP.
//
// Routes:
//
//	GET    /healthz                   liveness and build info
//	GET    /v1/levels                 recent levels, newest first (?limit=)
//	POST   /v1/levels                 generate a level from JSON options
//	GET    /v1/levels/{id}            a stored level as JSON
//	GET    /v1/levels/{id}/{format}   a rendering: svg, dot, geojson, ascii or json (?detailed=true)
//	DELETE /v1/levels/{id}            remove a stored level
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/levelgen/pkg/buildinfo"
	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/pipeline"
	"github.com/matzehuels/levelgen/pkg/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Defaults are applied before request options are decoded. Nil uses
	// pipeline.DefaultOptions.
	Defaults *pipeline.Options
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options
	router   chi.Router
}

// New builds a server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	defaults := pipeline.DefaultOptions()
	if cfg.Defaults != nil {
		defaults = cfg.Defaults.Clone()
	}
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   cfg.Logger,
		defaults: defaults,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/levels", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/{format}", s.handleArtifact)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	levels, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"levels": levels})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	opts := s.defaults.Clone()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
		return
	}
	opts.Logger = s.logger

	l, err := s.runner.Generate(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), l); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/levels/"+l.ID)
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateLevelID(id); err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := chi.URLParam(r, "format")
	if err := errors.ValidateLevelID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.defaults.Clone()
	opts.Formats = []string{format}
	opts.Detailed = r.URL.Query().Get("detailed") == "true"
	opts.Logger = s.logger

	artifacts, err := s.runner.Render(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateLevelID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: errors.UserMessage(err)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
