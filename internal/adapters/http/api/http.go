// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/tierlist/internal/adapters/repository"
	service "github.com/okian/tierlist/internal/app"
)

// maxBodyBytes bounds request bodies, imports included.
const maxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Each handler only sees the slice
// of it that it needs.
type Dependencies interface {
	StatsProvider
	GroupDependencies
	SessionDependencies
	TierDependencies
	HeadToHeadDependencies
	PersistenceDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	groupsHandler      *GroupsHandler
	sessionsHandler    *SessionsHandler
	tiersHandler       *TiersHandler
	headToHeadHandler  *HeadToHeadHandler
	persistenceHandler *PersistenceHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		groupsHandler:      NewGroupsHandler(deps),
		sessionsHandler:    NewSessionsHandler(deps),
		tiersHandler:       NewTiersHandler(deps),
		headToHeadHandler:  NewHeadToHeadHandler(deps),
		persistenceHandler: NewPersistenceHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	route("GET /groups", "groups", s.groupsHandler.HandleList)

	route("POST /sessions", "sessions", s.sessionsHandler.HandleCreate)
	route("GET /sessions", "sessions", s.sessionsHandler.HandleList)
	route("GET /sessions/{id}", "session", s.sessionsHandler.HandleGet)
	route("DELETE /sessions/{id}", "session", s.sessionsHandler.HandleDelete)

	route("POST /sessions/{id}/move", "move", s.tiersHandler.HandleMove)
	route("POST /sessions/{id}/clear", "clear", s.tiersHandler.HandleClear)
	route("POST /sessions/{id}/reorder", "reorder", s.tiersHandler.HandleReorder)
	route("POST /sessions/{id}/randomize", "randomize", s.tiersHandler.HandleRandomize)
	route("POST /sessions/{id}/reset", "reset", s.tiersHandler.HandleReset)
	route("POST /sessions/{id}/undo", "undo", s.tiersHandler.HandleUndo)
	route("POST /sessions/{id}/redo", "redo", s.tiersHandler.HandleRedo)

	route("GET /sessions/{id}/h2h", "h2h", s.headToHeadHandler.HandleGet)
	route("POST /sessions/{id}/h2h/start", "h2h_start", s.headToHeadHandler.HandleStart)
	route("POST /sessions/{id}/h2h/choose", "h2h_choose", s.headToHeadHandler.HandleChoose)
	route("POST /sessions/{id}/h2h/skip", "h2h_skip", s.headToHeadHandler.HandleSkip)
	route("POST /sessions/{id}/h2h/stop", "h2h_stop", s.headToHeadHandler.HandleStop)
	route("POST /sessions/{id}/h2h/finish", "h2h_finish", s.headToHeadHandler.HandleFinish)

	route("POST /sessions/{id}/save", "save", s.persistenceHandler.HandleSave)
	route("POST /sessions/{id}/load", "load", s.persistenceHandler.HandleLoad)
	route("GET /sessions/{id}/export", "export", s.persistenceHandler.HandleExport)
	route("POST /sessions/{id}/import", "import", s.persistenceHandler.HandleImport)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and store errors to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_saved", err)
	case errors.Is(err, service.ErrUnknownGroup):
		writeError(w, http.StatusNotFound, "unknown_group", err)
	case errors.Is(err, service.ErrUnknownBucket),
		errors.Is(err, service.ErrUnknownTheme),
		errors.Is(err, service.ErrInvalidBuckets),
		errors.Is(err, service.ErrInvalidSnapshot),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrBodyTooBig):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, service.ErrHeadToHeadInactive),
		errors.Is(err, service.ErrNotEnoughContestants):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrTooManySessions):
		writeError(w, http.StatusTooManyRequests, "session_limit", err)
	case errors.Is(err, service.ErrNoStore):
		writeError(w, http.StatusNotImplemented, "no_store", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(op string, r *http.Request, v any) error {
	raw, err := readBody(op, r)
	if err != nil || len(raw) == 0 {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return wrapKind(op, ErrBadRequest, err)
	}
	return nil
}

func readBody(op string, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, wrapKind(op, ErrBadRequest, err)
	}
	if len(raw) > maxBodyBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrBodyTooBig)
	}
	return raw, nil
}
