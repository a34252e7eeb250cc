package actionlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// persisted is the on-disk shape of a Log. Actions already marshal
// cleanly; the cursor is the only extra piece of state.
type persisted struct {
	Actions []Action `json:"actions"`
	Cursor  int      `json:"cursor"`
}

// FromHistory rebuilds a Log from persisted actions and cursor. Entries
// beyond the bound are evicted from the head, moving the cursor with
// them so it keeps pointing between the same two actions.
func FromHistory(actions []Action, cursor, max int) *Log {
	l := WithMaxSize(max)

	if over := len(actions) - l.maxSize; over > 0 {
		actions = actions[over:]
		cursor -= over
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(actions) {
		cursor = len(actions)
	}

	l.actions = make([]Action, len(actions))
	copy(l.actions, actions)
	l.cursor = cursor
	return l
}

// SaveFile writes the log to path as JSON, creating parent directories
// as needed. The file is written with 0600 permissions since recorded
// actions carry file contents.
func SaveFile(path string, l *Log) error {
	l.mu.RLock()
	p := persisted{Actions: l.actions, Cursor: l.cursor}
	data, err := json.Marshal(p)
	l.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode action log: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write action log: %w", err)
	}
	return nil
}

// LoadFile reads a persisted log from path. A missing file yields an
// empty log; a corrupt file is an error so history is never silently
// discarded.
func LoadFile(path string, max int) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return WithMaxSize(max), nil
		}
		return nil, fmt.Errorf("read action log: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode action log %s: %w", path, err)
	}
	return FromHistory(p.Actions, p.Cursor, max), nil
}
