package api

import (
	"context"
	"net/http"

	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/summary"
)

// SummaryDependencies defines the interface for summary operations.
type SummaryDependencies interface {
	Summary(ctx context.Context, limit int) (model.SummaryReport, error)
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps         SummaryDependencies
	defaultLimit int
	maxLimit     int
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies, defaultLimit, maxLimit int) *SummaryHandler {
	return &SummaryHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetSummary handles GET /summary?limit=N requests.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := summary.ParseLimit(r.URL.Query().Get("limit"), h.defaultLimit)
	if err != nil {
		writeClassified(w, Wrap(op, err))
		return
	}
	if n > h.maxLimit {
		writeClassified(w, NewKind(op, ErrLimitExceeded))
		return
	}
	report, err := h.deps.Summary(r.Context(), n)
	if err != nil {
		writeClassified(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
