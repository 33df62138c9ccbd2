package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/logger"
	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/report"
	"github.com/abhisek/lexiscreen/internal/store"
)

// MaxListLimit caps the number of results returned by one list request.
const MaxListLimit = 500

// ResultHandler serves stored results.
type ResultHandler struct {
	repo store.ResultRepo
	log  *logger.Logger
}

// resultView is a record plus the guidance shown for its level.
type resultView struct {
	*record.Record
	Guidance report.Guidance `json:"guidance"`
}

// Latest handles GET /v1/results/latest?test=
func (h *ResultHandler) Latest(w http.ResponseWriter, r *http.Request) {
	test := r.URL.Query().Get("test")
	rec, err := h.repo.Latest(r.Context(), test)
	if errors.Is(err, record.ErrMalformed) {
		h.log.Warn("stored result unreadable", "test", test, "error", err)
		rec, err = nil, nil
	}
	if err != nil {
		h.log.Error("load latest result", "test", test, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, report.NoResults)
		return
	}
	writeJSON(w, http.StatusOK, resultView{Record: rec, Guidance: report.GuidanceFor(rec.RiskLevel)})
}

// List handles GET /v1/results?test=&limit=&after=
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.QueryOpts{Test: q.Get("test"), Limit: 50}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = min(n, MaxListLimit)
	}
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "after must be a non-negative integer")
			return
		}
		opts.After = n
	}

	recs, err := h.repo.List(r.Context(), opts)
	if errors.Is(err, record.ErrMalformed) {
		h.log.Warn("stored results unreadable", "error", err)
		err = nil
	}
	if err != nil {
		h.log.Error("list results", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	if recs == nil {
		recs = []*record.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": recs})
}

// TestHandler serves the battery catalogue.
type TestHandler struct {
	registry *battery.Registry
}

type testSummary struct {
	ID          string         `json:"id"`
	Family      battery.Family `json:"family"`
	Title       string         `json:"title"`
	AgeBand     string         `json:"ageBand"`
	Description string         `json:"description,omitempty"`
	Questions   int            `json:"questions"`
	Timed       bool           `json:"timed"`
}

func summarize(b *battery.Battery) testSummary {
	return testSummary{
		ID:          b.ID,
		Family:      b.Family,
		Title:       b.Title,
		AgeBand:     b.AgeBand,
		Description: b.Description,
		Questions:   len(b.Questions),
		Timed:       b.Timed(),
	}
}

// List handles GET /v1/tests
func (h *TestHandler) List(w http.ResponseWriter, r *http.Request) {
	out := []testSummary{}
	for _, b := range h.registry.List() {
		out = append(out, summarize(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tests": out})
}

// Get handles GET /v1/tests/{id}
func (h *TestHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summarize(b))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
