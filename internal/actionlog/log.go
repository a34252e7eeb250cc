package actionlog

import "sync"

// DefaultMaxSize is the history bound used by New.
const DefaultMaxSize = 100

// Log is a bounded, ordered sequence of actions with a cursor separating
// applied entries (left of the cursor) from undone entries pending redo
// (right of the cursor).
//
// Invariant: 0 <= cursor <= len(actions) <= maxSize.
//
// Reads may proceed concurrently; Record, Undo, Redo, and Clear take the
// write lock and are totally ordered relative to each other.
type Log struct {
	mu      sync.RWMutex
	actions []Action
	cursor  int
	maxSize int
}

// New returns a Log bounded at DefaultMaxSize entries.
func New() *Log {
	return WithMaxSize(DefaultMaxSize)
}

// WithMaxSize returns a Log bounded at max entries. max must be positive.
func WithMaxSize(max int) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{maxSize: max}
}

// Record appends an action. Any entries at or after the cursor (undone,
// pending redo) are discarded first — recording after an undo silently
// drops the redo tail. If the append would exceed the bound, the oldest
// entry is evicted and the cursor stays put; otherwise the cursor
// advances. Either way the cursor ends up just past the newest entry.
//
// The ordering here (truncate, append, then evict-or-advance) is
// deliberate; evicting before deciding whether to advance is not
// observably equivalent at the boundary.
func (l *Log) Record(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.actions = l.actions[:l.cursor]
	l.actions = append(l.actions, a)

	if len(l.actions) > l.maxSize {
		l.actions = l.actions[1:]
	} else {
		l.cursor++
	}
}

// Undo steps the cursor back and returns the action being undone, or
// false if there is nothing to undo. The caller is responsible for
// physically reverting After → Before.
func (l *Log) Undo() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cursor == 0 {
		return Action{}, false
	}
	l.cursor--
	return l.actions[l.cursor], true
}

// Redo returns the next undone action and steps the cursor forward, or
// false if there is nothing to redo. The caller reapplies Before → After.
func (l *Log) Redo() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cursor >= len(l.actions) {
		return Action{}, false
	}
	a := l.actions[l.cursor]
	l.cursor++
	return a, true
}

// History returns a copy of all retained actions in chronological order.
func (l *Log) History() []Action {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Action, len(l.actions))
	copy(out, l.actions)
	return out
}

// Get returns the action at index i, if present.
func (l *Log) Get(i int) (Action, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.actions) {
		return Action{}, false
	}
	return l.actions[i], true
}

// Cursor returns the current cursor position.
func (l *Log) Cursor() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor
}

// CanUndoCount returns how many actions can be undone.
func (l *Log) CanUndoCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor
}

// CanRedoCount returns how many undone actions can be redone.
func (l *Log) CanRedoCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions) - l.cursor
}

// CanUndo reports whether Undo would return an action.
func (l *Log) CanUndo() bool {
	return l.CanUndoCount() > 0
}

// CanRedo reports whether Redo would return an action.
func (l *Log) CanRedo() bool {
	return l.CanRedoCount() > 0
}

// Len returns the number of retained actions.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions)
}

// Clear empties the log and resets the cursor.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = nil
	l.cursor = 0
}
