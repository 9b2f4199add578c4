package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/tierlist/internal/app"
)

// TierDependencies mutates a session's tiers.
type TierDependencies interface {
	Idempotency
	Session(ctx context.Context, id string) (service.State, error)
	Move(ctx context.Context, id, contestantID, tier string) (service.State, error)
	Clear(ctx context.Context, id, tier string) (service.State, error)
	Reorder(ctx context.Context, id, tier string, from, to int) (service.State, error)
	Randomize(ctx context.Context, id string) (service.State, error)
	Reset(ctx context.Context, id string) (service.State, error)
	Undo(ctx context.Context, id string) (service.State, error)
	Redo(ctx context.Context, id string) (service.State, error)
}

type moveRequest struct {
	ContestantID string `json:"contestant_id"`
	Tier         string `json:"tier"`
}

func (m moveRequest) validate() error {
	switch {
	case strings.TrimSpace(m.ContestantID) == "":
		return errors.New("missing contestant_id")
	case strings.TrimSpace(m.Tier) == "":
		return errors.New("missing tier")
	}
	return nil
}

type clearRequest struct {
	Tier string `json:"tier"`
}

type reorderRequest struct {
	Tier string `json:"tier"`
	From *int   `json:"from"`
	To   *int   `json:"to"`
}

func (m reorderRequest) validate() error {
	switch {
	case strings.TrimSpace(m.Tier) == "":
		return errors.New("missing tier")
	case m.From == nil || m.To == nil:
		return errors.New("missing from or to")
	}
	return nil
}

// TiersHandler handles tier mutation requests.
type TiersHandler struct {
	deps TierDependencies
}

func NewTiersHandler(deps TierDependencies) *TiersHandler {
	return &TiersHandler{deps: deps}
}

func (h *TiersHandler) run(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (service.State, error)) {
	id := r.PathValue("id")
	runIdempotent(w, r, h.deps, id,
		func(ctx context.Context) (service.State, error) { return apply(ctx, id) },
		func(ctx context.Context) (service.State, error) { return h.deps.Session(ctx, id) },
		func(st *service.State) { st.Duplicate = true },
	)
}

// HandleMove handles POST /sessions/{id}/move.
func (h *TiersHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	const op = "api.move"
	var req moveRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	h.run(w, r, func(ctx context.Context, id string) (service.State, error) {
		return h.deps.Move(ctx, id, req.ContestantID, req.Tier)
	})
}

// HandleClear handles POST /sessions/{id}/clear.
func (h *TiersHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear"
	var req clearRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if strings.TrimSpace(req.Tier) == "" {
		writeServiceError(w, wrapKind(op, ErrBadRequest, errors.New("missing tier")))
		return
	}
	h.run(w, r, func(ctx context.Context, id string) (service.State, error) {
		return h.deps.Clear(ctx, id, req.Tier)
	})
}

// HandleReorder handles POST /sessions/{id}/reorder.
func (h *TiersHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	const op = "api.reorder"
	var req reorderRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	h.run(w, r, func(ctx context.Context, id string) (service.State, error) {
		return h.deps.Reorder(ctx, id, req.Tier, *req.From, *req.To)
	})
}

// HandleRandomize handles POST /sessions/{id}/randomize.
func (h *TiersHandler) HandleRandomize(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.deps.Randomize)
}

// HandleReset handles POST /sessions/{id}/reset.
func (h *TiersHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.deps.Reset)
}

// HandleUndo handles POST /sessions/{id}/undo.
func (h *TiersHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.deps.Undo)
}

// HandleRedo handles POST /sessions/{id}/redo.
func (h *TiersHandler) HandleRedo(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.deps.Redo)
}
