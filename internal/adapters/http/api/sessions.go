package api

import (
	"context"
	"net/http"

	service "github.com/okian/tierlist/internal/app"
)

// SessionDependencies manages session lifecycles.
type SessionDependencies interface {
	CreateSession(ctx context.Context, req service.CreateRequest) (service.State, error)
	Session(ctx context.Context, id string) (service.State, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) []service.Summary
}

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions. Every field of the body is optional.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req service.CreateRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	st, err := h.deps.CreateSession(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+st.ID)
	writeJSON(w, http.StatusCreated, st)
}

// HandleList handles GET /sessions.
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.deps.ListSessions(r.Context())})
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
