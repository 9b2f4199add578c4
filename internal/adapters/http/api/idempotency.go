package api

import (
	"context"
	"net/http"
)

// IdempotencyHeader carries a client-chosen key that makes a retried
// mutation apply at most once per session.
const IdempotencyHeader = "Idempotency-Key"

// Idempotency remembers which keys were used per session.
type Idempotency interface {
	SeenAndRecord(ctx context.Context, sessionID, key string) bool
	Unrecord(ctx context.Context, sessionID, key string)
}

// runIdempotent applies a mutation unless its key was already used, in which
// case the current view is returned marked as a duplicate. A failed mutation
// releases its key so the client can retry.
func runIdempotent[T any](
	w http.ResponseWriter,
	r *http.Request,
	deps Idempotency,
	sessionID string,
	apply func(ctx context.Context) (T, error),
	replay func(ctx context.Context) (T, error),
	markDuplicate func(*T),
) {
	ctx := r.Context()
	key := r.Header.Get(IdempotencyHeader)

	if key != "" && deps.SeenAndRecord(ctx, sessionID, key) {
		v, err := replay(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		markDuplicate(&v)
		writeJSON(w, http.StatusOK, v)
		return
	}

	v, err := apply(ctx)
	if err != nil {
		if key != "" {
			deps.Unrecord(ctx, sessionID, key)
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
