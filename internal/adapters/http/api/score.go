package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
)

const maxScoreBody = 64 << 10

// ScoreDependencies defines the operations behind POST /score.
type ScoreDependencies interface {
	Score(ctx context.Context, in scoring.Input) (model.Scored, error)
	Evaluate(ctx context.Context, in scoring.Input) (model.Scored, error)
}

// ScoreHandler handles scoring requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

type scoreResponse struct {
	Result   string            `json:"result"`
	Record   model.ScoreRecord `json:"record"`
	SLA      string            `json:"sla"`
	DueAt    time.Time         `json:"due_at"`
	Adjusted bool              `json:"adjusted"`
	Recorded bool              `json:"recorded"`
}

// HandlePostScore handles POST /score[?dry_run=true]. The body is a single
// task object.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		dryRun = b
	}

	var req model.TaskInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScoreBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.Input()
	if err != nil {
		writeClassified(w, Wrap(op, err))
		return
	}

	score := h.deps.Score
	if dryRun {
		score = h.deps.Evaluate
	}
	out, err := score(r.Context(), in)
	if err != nil {
		writeClassified(w, Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{
		Result:   fmt.Sprintf("%s:%.2f", out.Record.PriorityLevel, out.Record.PriorityScore),
		Record:   out.Record,
		SLA:      scoring.FormatSLA(out.SLA),
		DueAt:    out.DueAt,
		Adjusted: out.Adjusted,
		Recorded: !dryRun,
	})
}
