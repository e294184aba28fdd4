// Package server exposes the solve pipeline as an HTTP API.
//
// The API mirrors the CLI: clients post solve options, get plans back, and
// can persist plans and interactive sessions. All responses are JSON except
// single-format render responses, which return the raw artifact with its
// native content type.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/pipeline"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/session"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/store"
)

// requestTimeout bounds a single API request, including PNG rendering.
const requestTimeout = 60 * time.Second

// Server handles HTTP requests against a fixed catalog.
type Server struct {
	runner   *pipeline.Runner
	catalog  *catalog.Catalog
	plans    store.PlanStore
	sessions session.Store
	logger   *log.Logger
}

// Config collects the dependencies a Server needs.
type Config struct {
	Runner   *pipeline.Runner
	Catalog  *catalog.Catalog
	Plans    store.PlanStore
	Sessions session.Store
	Logger   *log.Logger
}

// New creates a Server. Plans and Sessions may be nil, in which case the
// corresponding endpoints return 404.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   cfg.Runner,
		catalog:  cfg.Catalog,
		plans:    cfg.Plans,
		sessions: cfg.Sessions,
		logger:   logger,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Post("/render", s.handleRender)

		if s.plans != nil {
			r.Route("/plans", func(r chi.Router) {
				r.Post("/", s.handlePlanCreate)
				r.Get("/", s.handlePlanList)
				r.Get("/{id}", s.handlePlanGet)
				r.Delete("/{id}", s.handlePlanDelete)
			})
		}

		if s.sessions != nil {
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleSessionCreate)
				r.Get("/", s.handleSessionList)
				r.Get("/{id}", s.handleSessionGet)
				r.Put("/{id}", s.handleSessionPut)
				r.Delete("/{id}", s.handleSessionDelete)
			})
		}
	})

	return r
}

// logRequests logs method, path, status, and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON shape of all error responses.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps an error code to an HTTP status and writes the body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCatalog, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePlanNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeMissingCatalogEntry:
		status = http.StatusNotFound
	case errors.ErrCodeInfeasible, errors.ErrCodeEmptyChain, errors.ErrCodeMissingDisposalRoute:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: string(code)})
}

// decodeJSON parses the request body into v, rejecting unknown garbage early.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
