package api

import (
	"net/http"

	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
)

// LevelsDependencies exposes the active tier table.
type LevelsDependencies interface {
	Levels() scoring.Thresholds
}

// LevelsHandler handles tier table requests.
type LevelsHandler struct {
	deps LevelsDependencies
}

// NewLevelsHandler creates a new levels handler.
func NewLevelsHandler(deps LevelsDependencies) *LevelsHandler {
	return &LevelsHandler{deps: deps}
}

// HandleGetLevels handles GET /levels requests.
func (h *LevelsHandler) HandleGetLevels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, model.LevelTable(h.deps.Levels()))
}
