package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"listing_seeder/internal/domain"
)

// ProgressSource exposes the run in flight.
type ProgressSource interface {
	Progress() domain.RunReport
}

// ReportReader returns published runs for a database, newest first.
type ReportReader interface {
	LastReport(ctx context.Context, databaseID string) (domain.RunSummary, bool, error)
	History(ctx context.Context, databaseID string, limit int) ([]domain.RunSummary, error)
}

type Handlers struct {
	Progress   ProgressSource
	Reports    ReportReader // optional
	DatabaseID string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/progress", h.progress)
	s.mux.Get("/v1/runs", h.runs)
	s.mux.Get("/v1/runs/last", h.lastRun)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func (h *Handlers) progress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Progress.Progress().Summary())
}

func (h *Handlers) lastRun(w http.ResponseWriter, r *http.Request) {
	if h.Reports == nil {
		writeProblem(w, http.StatusNotImplemented, "Not Implemented", "no report store configured")
		return
	}
	rs, ok, err := h.Reports.LastReport(r.Context(), h.DatabaseID)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "report store unavailable")
		return
	}
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "no run has been published yet")
		return
	}
	writeJSON(w, rs)
}

func (h *Handlers) runs(w http.ResponseWriter, r *http.Request) {
	if h.Reports == nil {
		writeProblem(w, http.StatusNotImplemented, "Not Implemented", "no report store configured")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "limit must be between 1 and 50")
			return
		}
		limit = n
	}
	out, err := h.Reports.History(r.Context(), h.DatabaseID, limit)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "report store unavailable")
		return
	}
	if out == nil {
		out = []domain.RunSummary{}
	}
	writeJSON(w, out)
}
