package api

import (
	"context"
	"net/http"

	service "github.com/okian/tierlist/internal/app"
	"github.com/okian/tierlist/internal/domain/model"
)

// PersistenceDependencies saves, restores and transfers rankings.
type PersistenceDependencies interface {
	Save(ctx context.Context, id string) (model.SavedRanking, error)
	Load(ctx context.Context, id string) (service.State, error)
	Export(ctx context.Context, id string) (model.SavedRanking, error)
	Import(ctx context.Context, id string, raw []byte) (service.State, error)
}

// PersistenceHandler handles save, load, export and import requests.
type PersistenceHandler struct {
	deps PersistenceDependencies
}

func NewPersistenceHandler(deps PersistenceDependencies) *PersistenceHandler {
	return &PersistenceHandler{deps: deps}
}

// HandleSave handles POST /sessions/{id}/save.
func (h *PersistenceHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Save(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleLoad handles POST /sessions/{id}/load.
func (h *PersistenceHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleExport handles GET /sessions/{id}/export.
func (h *PersistenceHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := h.deps.Export(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="tierlist-`+id+`.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// HandleImport handles POST /sessions/{id}/import with an exported document as body.
func (h *PersistenceHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	raw, err := readBody(op, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	st, err := h.deps.Import(r.Context(), r.PathValue("id"), raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
