// Package actionlog records reversible filesystem mutations and provides
// a bounded undo/redo history over them. The log stores before/after
// state snapshots; it never touches the filesystem itself — applying or
// reverting a state transition is the caller's job.
package actionlog

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// StateKind identifies the variant of a State snapshot.
type StateKind string

// State variants.
const (
	FileCreated      StateKind = "file-created"
	FileModified     StateKind = "file-modified"
	FileDeleted      StateKind = "file-deleted"
	FileMoved        StateKind = "file-moved"
	DirectoryCreated StateKind = "directory-created"
	DirectoryDeleted StateKind = "directory-deleted"
)

// State is a snapshot of a filesystem entity before or after an action.
// Which fields are meaningful depends on Kind:
//
//	FileCreated       Path
//	FileModified      Path, Content, ContentHash
//	FileDeleted       Path, Content
//	FileMoved         From, To
//	DirectoryCreated  Path
//	DirectoryDeleted  Path, Entries
type State struct {
	Kind        StateKind         `json:"kind"`
	Path        string            `json:"path,omitempty"`
	Content     []byte            `json:"content,omitempty"`
	ContentHash string            `json:"content_hash,omitempty"`
	From        string            `json:"from,omitempty"`
	To          string            `json:"to,omitempty"`
	Entries     map[string][]byte `json:"entries,omitempty"`
}

// PrimaryPath returns the path this state principally affects.
func (s State) PrimaryPath() string {
	if s.Kind == FileMoved {
		return s.To
	}
	return s.Path
}

// HashContent returns the hex SHA-256 of content, used to detect
// out-of-band changes before a best-effort revert.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Action is a recorded, reversible filesystem mutation. Immutable once
// recorded; owned exclusively by the Log.
type Action struct {
	ID          uuid.UUID `json:"id"`
	Command     string    `json:"command"`
	Timestamp   time.Time `json:"timestamp"`
	Before      State     `json:"before"`
	After       State     `json:"after"`
	Reversible  bool      `json:"reversible"`
	Description string    `json:"description"`
}

// NewAction builds an Action with a fresh id and timestamp.
func NewAction(command string, before, after State, description string) Action {
	return Action{
		ID:          uuid.New(),
		Command:     command,
		Timestamp:   time.Now().UTC(),
		Before:      before,
		After:       after,
		Reversible:  true,
		Description: description,
	}
}

// FileCreatedAction records the creation of a new file. The before state
// is the file's absence, so undoing it deletes the file; the after state
// carries the created bytes so redo can reapply them.
func FileCreatedAction(command, path string, content []byte, description string) Action {
	return NewAction(command,
		State{Kind: FileDeleted, Path: path},
		State{Kind: FileCreated, Path: path, Content: content},
		description)
}

// FileModifiedAction records an in-place content change, carrying both
// versions so either direction can be applied.
func FileModifiedAction(command, path string, oldContent, newContent []byte, description string) Action {
	return NewAction(command,
		State{Kind: FileModified, Path: path, Content: oldContent, ContentHash: HashContent(oldContent)},
		State{Kind: FileModified, Path: path, Content: newContent, ContentHash: HashContent(newContent)},
		description)
}

// FileDeletedAction records a deletion, keeping the removed bytes so undo
// can restore them.
func FileDeletedAction(command, path string, content []byte, description string) Action {
	return NewAction(command,
		State{Kind: FileCreated, Path: path},
		State{Kind: FileDeleted, Path: path, Content: content},
		description)
}

// FileMovedAction records a rename. The before state is the reverse move.
func FileMovedAction(command, from, to, description string) Action {
	return NewAction(command,
		State{Kind: FileMoved, From: to, To: from},
		State{Kind: FileMoved, From: from, To: to},
		description)
}
