// Package http exposes a swallow engine as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/catalog"
	"github.com/aretw0/swallow/internal/compiler"
	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/internal/presentation/graph"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/registry"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine is the part of *swallow.Engine the API drives.
type Engine interface {
	Open(ctx context.Context) (*workspace.Workspace, error)
	Compile(ctx context.Context, ws *workspace.Workspace) ([]domain.ProjectID, error)
	Asyncify(ctx context.Context, ws *workspace.Workspace, project, descriptor string) (*swallow.Result, error)
	Run(ctx context.Context, ws *workspace.Workspace, name, project, descriptor string, args []string) (*swallow.Result, error)
	Edit(ctx context.Context, ws *workspace.Workspace, path, name string, args []string) (*swallow.Result, error)
	Functions(ctx context.Context, ws *workspace.Workspace, path, filter string, args []string) ([]domain.FunctionInfo, error)
	Commit(ctx context.Context, ws *workspace.Workspace) (bool, error)
}

var _ Engine = (*swallow.Engine)(nil)

// Server serves the API for one engine.
type Server struct {
	Engine  Engine
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// AsyncifyRequest is the body of POST /asyncify.
type AsyncifyRequest struct {
	Project  string `json:"project,omitempty"`
	Function string `json:"function"`
	DryRun   bool   `json:"dryRun,omitempty"`
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	Transformation string   `json:"transformation"`
	Project        string   `json:"project,omitempty"`
	Function       string   `json:"function"`
	Args           []string `json:"args,omitempty"`
	DryRun         bool     `json:"dryRun,omitempty"`
}

// EditRequest is the body of POST /edit.
type EditRequest struct {
	Document       string   `json:"document"`
	Transformation string   `json:"transformation"`
	Args           []string `json:"args,omitempty"`
	DryRun         bool     `json:"dryRun,omitempty"`
}

// ChangeResponse reports the outcome of a transformation.
type ChangeResponse struct {
	Changed   []domain.DocumentID `json:"changed"`
	Rewritten []domain.FunctionID `json:"rewritten,omitempty"`
	Committed bool                `json:"committed"`
	Diff      string              `json:"diff,omitempty"`
}

// CatalogResponse lists the named transformations and filters.
type CatalogResponse struct {
	Symbols   []registry.Metadata `json:"symbols"`
	Documents []registry.Metadata `json:"documents"`
	Filters   []registry.Metadata `json:"filters"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/catalog", s.Catalog)
	r.Get("/functions", s.Functions)
	r.Get("/graph/projects", s.ProjectGraph)
	r.Post("/compile", s.Compile)
	r.Post("/asyncify", s.Asyncify)
	r.Post("/run", s.Run)
	r.Post("/edit", s.Edit)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Catalog handles GET /catalog.
func (s *Server) Catalog(w http.ResponseWriter, r *http.Request) {
	docs, err := catalog.Documents()
	if err != nil {
		s.fail(w, err)
		return
	}
	symbols, err := catalog.Symbols()
	if err != nil {
		s.fail(w, err)
		return
	}
	filters, err := catalog.Filters()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, CatalogResponse{
		Symbols:   symbols.List(),
		Documents: docs.List(),
		Filters:   filters.List(),
	})
}

// Functions handles GET /functions?document=...&filter=...&arg=....
func (s *Server) Functions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("document") == "" {
		s.reply(w, http.StatusBadRequest, errorResponse{Error: "document is required"})
		return
	}
	ws, ok := s.open(w, r)
	if !ok {
		return
	}
	infos, err := s.Engine.Functions(r.Context(), ws, q.Get("document"), q.Get("filter"), q["arg"])
	if err != nil {
		s.fail(w, err)
		return
	}
	if infos == nil {
		infos = []domain.FunctionInfo{}
	}
	s.reply(w, http.StatusOK, infos)
}

// ProjectGraph handles GET /graph/projects.
func (s *Server) ProjectGraph(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.open(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.Projects(ws)))
}

// Compile handles POST /compile.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.open(w, r)
	if !ok {
		return
	}
	order, err := s.Engine.Compile(r.Context(), ws)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, map[string][]domain.ProjectID{"order": order})
}

// Asyncify handles POST /asyncify.
func (s *Server) Asyncify(w http.ResponseWriter, r *http.Request) {
	var body AsyncifyRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.change(w, r, body.DryRun, func(ctx context.Context, ws *workspace.Workspace) (*swallow.Result, error) {
		return s.Engine.Asyncify(ctx, ws, body.Project, body.Function)
	})
}

// Run handles POST /run.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.change(w, r, body.DryRun, func(ctx context.Context, ws *workspace.Workspace) (*swallow.Result, error) {
		return s.Engine.Run(ctx, ws, body.Transformation, body.Project, body.Function, body.Args)
	})
}

// Edit handles POST /edit.
func (s *Server) Edit(w http.ResponseWriter, r *http.Request) {
	var body EditRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.change(w, r, body.DryRun, func(ctx context.Context, ws *workspace.Workspace) (*swallow.Result, error) {
		return s.Engine.Edit(ctx, ws, body.Document, body.Transformation, body.Args)
	})
}

func (s *Server) change(w http.ResponseWriter, r *http.Request, dryRun bool, apply func(context.Context, *workspace.Workspace) (*swallow.Result, error)) {
	ws, ok := s.open(w, r)
	if !ok {
		return
	}
	res, err := apply(r.Context(), ws)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := ChangeResponse{Changed: res.Changed}
	if resp.Changed == nil {
		resp.Changed = []domain.DocumentID{}
	}
	if res.Collected != nil {
		resp.Rewritten = res.Collected.Rewritten()
	}
	if resp.Diff, err = res.Diff(); err != nil {
		s.fail(w, err)
		return
	}
	if !dryRun && len(res.Changed) > 0 {
		if resp.Committed, err = s.Engine.Commit(r.Context(), res.After); err != nil {
			s.fail(w, err)
			return
		}
	}
	s.reply(w, http.StatusOK, resp)
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, err := s.Engine.Open(r.Context())
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return ws, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.reply(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrBinding),
		errors.Is(err, domain.ErrUnsupportedShape),
		errors.Is(err, domain.ErrInvalidWorkspace),
		errors.Is(err, compiler.ErrDependencyCycle):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.reply(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
