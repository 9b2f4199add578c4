package api

import (
	"context"
	"net/http"

	"github.com/okian/tierlist/internal/domain/dataset"
)

// GroupDependencies lists the contestant groups sessions can be created from.
type GroupDependencies interface {
	Groups(ctx context.Context) []dataset.Summary
}

// GroupsHandler handles group requests.
type GroupsHandler struct {
	deps GroupDependencies
}

func NewGroupsHandler(deps GroupDependencies) *GroupsHandler {
	return &GroupsHandler{deps: deps}
}

// HandleList handles GET /groups.
func (h *GroupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"groups": h.deps.Groups(r.Context())})
}
