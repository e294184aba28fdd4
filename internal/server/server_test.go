package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/cache"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/pipeline"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/session"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/store"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.Item{
			{ID: "iron_ore", Transport: "belt"},
			{ID: "iron_plate", Transport: "belt"},
		},
		[]catalog.Building{{ID: "smelter"}},
		[]catalog.Recipe{
			{
				Building:    "smelter",
				Time:        30,
				Ingredients: []catalog.Stack{{ItemID: "iron_ore", Amount: 2}},
				Products:    []catalog.Stack{{ItemID: "iron_plate", Amount: 1}},
			},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func testServer(t *testing.T) http.Handler {
	t.Helper()
	cat := testCatalog(t)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	t.Cleanup(func() { runner.Close() })

	sessions, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	srv := New(Config{
		Runner:   runner,
		Catalog:  cat,
		Plans:    store.NewMemoryStore(),
		Sessions: sessions,
		Logger:   logger,
	})
	return srv.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := testServer(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSolveEndpoint(t *testing.T) {
	h := testServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/solve", map[string]any{
		"target_id":   "iron_plate",
		"target_rate": 4,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/solve status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Plan   *plan.Plan `json:"plan"`
		Cached bool       `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Plan.Needs) != 2 {
		t.Errorf("needs count = %d, want 2", len(resp.Plan.Needs))
	}
	if got := resp.Plan.Needs["iron_ore"].Rate; got != 8 {
		t.Errorf("iron_ore rate = %v, want 8", got)
	}
}

func TestSolveEndpointErrors(t *testing.T) {
	h := testServer(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing target", map[string]any{"target_rate": 4}, http.StatusBadRequest},
		{"zero rate", map[string]any{"target_id": "iron_plate"}, http.StatusBadRequest},
		{"unknown item", map[string]any{"target_id": "unobtainium", "target_rate": 4}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/solve", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRenderSingleFormat(t *testing.T) {
	h := testServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/render", map[string]any{
		"target_id":   "iron_plate",
		"target_rate": 4,
		"formats":     []string{"dot"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/render status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q, want text/vnd.graphviz", ct)
	}
	if !strings.Contains(rec.Body.String(), "digraph chain") {
		t.Error("response does not contain DOT output")
	}
}

func TestPlanLifecycle(t *testing.T) {
	h := testServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/plans/", map[string]any{
		"target_id":   "iron_plate",
		"target_rate": 4,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/plans status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created store.PlanRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created record: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created record missing ID")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/plans/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/plans status = %d", rec.Code)
	}
	var list []*store.PlanRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/plans/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/plans/{id} status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/plans/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE /api/plans/{id} status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/plans/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted plan status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := testServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/sessions/", map[string]any{
		"name":        "main bus",
		"target_id":   "iron_plate",
		"target_rate": 4,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/sessions status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created session: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created session missing ID")
	}
	if created.Name != "main bus" {
		t.Errorf("Name = %q, want %q", created.Name, "main bus")
	}

	created.Positions = map[string][2]float64{"iron_plate": {10, 20}}
	rec = doJSON(t, h, http.MethodPut, "/api/sessions/"+created.ID, created)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /api/sessions/{id} status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/sessions/{id} status = %d", rec.Code)
	}
	var got session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if got.Positions["iron_plate"] != [2]float64{10, 20} {
		t.Errorf("Positions = %v, want saved coordinates", got.Positions)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted session status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
