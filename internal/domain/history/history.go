// Package history keeps a bounded, linear undo/redo stack of snapshots.
//
// History is a value. Every transition returns a new History and leaves the
// receiver usable, so callers may hold on to earlier values.
package history

import "github.com/okian/tierlist/internal/domain/clone"

// History is a bounded stack of snapshots with a cursor.
type History[T any] struct {
	stack []T
	index int
	limit int
}

// New starts a history holding a copy of snapshot. Limits below 1 become 1.
func New[T any](snapshot T, limit int) History[T] {
	if limit < 1 {
		limit = 1
	}
	return History[T]{
		stack: []T{clone.Of(snapshot)},
		limit: limit,
	}
}

// Save records snapshot after the cursor. Entries past the cursor are
// discarded and the oldest entries are dropped once the limit is exceeded.
func (h History[T]) Save(snapshot T) History[T] {
	if h.limit < 1 {
		return New(snapshot, h.limit)
	}

	keep := 0
	if len(h.stack) > 0 {
		keep = h.index + 1
	}
	stack := make([]T, 0, keep+1)
	stack = append(stack, h.stack[:keep]...)
	stack = append(stack, clone.Of(snapshot))
	if over := len(stack) - h.limit; over > 0 {
		stack = stack[over:]
	}
	return History[T]{stack: stack, index: len(stack) - 1, limit: h.limit}
}

// Undo steps the cursor back. At the oldest entry it reports false.
func (h History[T]) Undo() (History[T], bool) {
	if !h.CanUndo() {
		return h, false
	}
	h.index--
	return h, true
}

// Redo steps the cursor forward. At the newest entry it reports false.
func (h History[T]) Redo() (History[T], bool) {
	if !h.CanRedo() {
		return h, false
	}
	h.index++
	return h, true
}

// Current returns a copy of the snapshot under the cursor.
func (h History[T]) Current() T {
	if len(h.stack) == 0 {
		var zero T
		return zero
	}
	return clone.Of(h.stack[h.index])
}

// CanUndo reports whether an older snapshot exists.
func (h History[T]) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a newer snapshot exists.
func (h History[T]) CanRedo() bool { return h.index < len(h.stack)-1 }

// Len is the number of snapshots held.
func (h History[T]) Len() int { return len(h.stack) }

// Index is the cursor position, 0 being the oldest snapshot.
func (h History[T]) Index() int { return h.index }

// Limit is the most snapshots kept.
func (h History[T]) Limit() int { return h.limit }
