package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Writer appends events for one session to a JSONL file under
// <dir>/<YYYY-MM-DD>/warden-<session>.jsonl. Appends are serialized by
// a mutex and synced before returning, so an event is durable before
// the operation it records proceeds.
type Writer struct {
	mu      sync.Mutex
	f       *os.File
	path    string
	session uuid.UUID
}

// NewWriter opens (creating as needed) the trail file for a session.
func NewWriter(dir string, session uuid.UUID) (*Writer, error) {
	day := time.Now().UTC().Format("2006-01-02")
	path := filepath.Join(dir, day, fmt.Sprintf("warden-%s.jsonl", session))

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &Writer{f: f, path: path, session: session}, nil
}

// Path returns the trail file path.
func (w *Writer) Path() string {
	return w.path
}

// Session returns the session id the writer records for.
func (w *Writer) Session() uuid.UUID {
	return w.session
}

// Write appends one event as a JSON line and syncs the file.
func (w *Writer) Write(e Event) error {
	if w == nil || w.f == nil {
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("sync audit file: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	if w == nil || w.f == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// LogSessionStarted records the start of a session.
func (w *Writer) LogSessionStarted(details map[string]any) error {
	return w.Write(NewEvent(EventSessionStarted, w.session, details))
}

// LogSessionEnded records the end of a session.
func (w *Writer) LogSessionEnded(details map[string]any) error {
	return w.Write(NewEvent(EventSessionEnded, w.session, details))
}

// LogCommand records a command-scoped event.
func (w *Writer) LogCommand(typ EventType, commandID uuid.UUID, details map[string]any) error {
	e := NewEvent(typ, w.session, details)
	e.CommandID = commandID
	return w.Write(e)
}
