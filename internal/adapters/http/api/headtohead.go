package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/tierlist/internal/app"
)

// HeadToHeadDependencies drives pairwise comparison rounds.
type HeadToHeadDependencies interface {
	Idempotency
	HeadToHead(ctx context.Context, id string) (service.HeadToHead, error)
	StartHeadToHead(ctx context.Context, id string) (service.HeadToHead, error)
	ChooseWinner(ctx context.Context, id, winnerID string) (service.HeadToHead, error)
	Skip(ctx context.Context, id string) (service.HeadToHead, error)
	StopHeadToHead(ctx context.Context, id string) (service.HeadToHead, error)
	FinishHeadToHead(ctx context.Context, id string) (service.State, error)
	Session(ctx context.Context, id string) (service.State, error)
}

type chooseRequest struct {
	WinnerID string `json:"winner_id"`
}

// HeadToHeadHandler handles head-to-head requests.
type HeadToHeadHandler struct {
	deps HeadToHeadDependencies
}

func NewHeadToHeadHandler(deps HeadToHeadDependencies) *HeadToHeadHandler {
	return &HeadToHeadHandler{deps: deps}
}

func (h *HeadToHeadHandler) run(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (service.HeadToHead, error)) {
	id := r.PathValue("id")
	runIdempotent(w, r, h.deps, id,
		func(ctx context.Context) (service.HeadToHead, error) { return apply(ctx, id) },
		func(ctx context.Context) (service.HeadToHead, error) { return h.deps.HeadToHead(ctx, id) },
		func(v *service.HeadToHead) { v.Duplicate = true },
	)
}

// HandleGet handles GET /sessions/{id}/h2h.
func (h *HeadToHeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.HeadToHead(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleStart handles POST /sessions/{id}/h2h/start.
func (h *HeadToHeadHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.deps.StartHeadToHead)
}

// HandleChoose handles POST /sessions/{id}/h2h/choose.
func (h *HeadToHeadHandler) HandleChoose(w http.ResponseWriter, r *http.Request) {
	const op = "api.h2h_choose"
	var req chooseRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if strings.TrimSpace(req.WinnerID) == "" {
		writeServiceError(w, wrapKind(op, ErrBadRequest, errors.New("missing winner_id")))
		return
	}
	h.run(w, r, func(ctx context.Context, id string) (service.HeadToHead, error) {
		return h.deps.ChooseWinner(ctx, id, req.WinnerID)
	})
}

// HandleSkip handles POST /sessions/{id}/h2h/skip.
func (h *HeadToHeadHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.deps.Skip)
}

// HandleStop handles POST /sessions/{id}/h2h/stop.
func (h *HeadToHeadHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.StopHeadToHead(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleFinish handles POST /sessions/{id}/h2h/finish and returns the session state.
func (h *HeadToHeadHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	runIdempotent(w, r, h.deps, id,
		func(ctx context.Context) (service.State, error) { return h.deps.FinishHeadToHead(ctx, id) },
		func(ctx context.Context) (service.State, error) { return h.deps.Session(ctx, id) },
		func(st *service.State) { st.Duplicate = true },
	)
}
