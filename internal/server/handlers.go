package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/pipeline"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/session"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/store"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

// solveResponse is the body returned by POST /api/solve.
type solveResponse struct {
	Plan   *plan.Plan `json:"plan"`
	Cached bool       `json:"cached"`
}

// handleSolve solves a chain and returns the plan without persisting it.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeJSON(r, &opts); err != nil {
		s.writeError(w, err)
		return
	}
	opts.Catalog = s.catalog
	opts.Logger = s.logger

	p, cached, err := s.runner.SolveWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, solveResponse{Plan: p, Cached: cached})
}

// renderResponse is the body returned for multi-format render requests.
// Artifact bytes serialize as base64.
type renderResponse struct {
	Plan      *plan.Plan        `json:"plan"`
	Layout    plan.Layout       `json:"layout"`
	Artifacts map[string][]byte `json:"artifacts"`
}

// handleRender runs the full pipeline. A single requested format is returned
// raw with its native content type; several formats come back as JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeJSON(r, &opts); err != nil {
		s.writeError(w, err)
		return
	}
	opts.Catalog = s.catalog
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if len(opts.Formats) == 1 {
		format := opts.Formats[0]
		w.Header().Set("Content-Type", contentTypes[format])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[format])
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{
		Plan:      result.Plan,
		Layout:    result.Layout,
		Artifacts: result.Artifacts,
	})
}

// handlePlanCreate solves a chain and persists the result as a plan record.
func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeJSON(r, &opts); err != nil {
		s.writeError(w, err)
		return
	}
	opts.Catalog = s.catalog
	opts.Logger = s.logger

	p, err := s.runner.Solve(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rec := store.NewPlanRecord(s.catalog.Hash(), p, opts.Selections)
	if err := s.plans.Put(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handlePlanList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", raw))
			return
		}
		limit = n
	}
	recs, err := s.plans.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*store.PlanRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionCreateRequest is the body for POST /api/sessions.
type sessionCreateRequest struct {
	Name       string  `json:"name,omitempty"`
	TargetID   string  `json:"target_id"`
	TargetRate float64 `json:"target_rate"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.TargetID == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "target_id is required"))
		return
	}
	sess := session.New(req.TargetID, req.TargetRate, session.DefaultTTL)
	sess.Name = req.Name
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleSessionList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "session %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleSessionPut replaces a session's stored state, refreshing its
// update timestamp. The URL ID wins over any ID in the body.
func (s *Server) handleSessionPut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if existing == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "session %s not found", id))
		return
	}

	var sess session.Session
	if err := decodeJSON(r, &sess); err != nil {
		s.writeError(w, err)
		return
	}
	sess.ID = existing.ID
	sess.CreatedAt = existing.CreatedAt
	sess.Touch(session.DefaultTTL)
	if err := s.sessions.Set(r.Context(), &sess); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &sess)
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
