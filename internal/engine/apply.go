package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/warden-dev/warden/internal/actionlog"
	"github.com/warden-dev/warden/internal/audit"
	"github.com/warden-dev/warden/internal/clog"
)

// ErrNothingToUndo and ErrNothingToRedo report an empty side of the
// action log.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Undo pops the most recent action and reverts its effect on the
// filesystem. The cursor move stands even when the physical revert
// fails; the error reports what could not be restored.
func (e *Engine) Undo(ctx context.Context) (*actionlog.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, ok := e.log.Undo()
	if !ok {
		return nil, ErrNothingToUndo
	}

	err := e.revert(&a)
	e.logCommand(audit.EventFileOperation, uuid.Nil, map[string]any{
		"operation": "undo",
		"action_id": a.ID.String(),
		"path":      a.After.PrimaryPath(),
		"restored":  err == nil,
	})
	if err != nil {
		return &a, fmt.Errorf("undo %s: %w", a.Description, err)
	}
	clog.Info("undid action %s (%s)", a.ID, a.Description)
	return &a, nil
}

// Redo reapplies the most recently undone action.
func (e *Engine) Redo(ctx context.Context) (*actionlog.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, ok := e.log.Redo()
	if !ok {
		return nil, ErrNothingToRedo
	}

	err := e.apply(&a)
	e.logCommand(audit.EventFileOperation, uuid.Nil, map[string]any{
		"operation": "redo",
		"action_id": a.ID.String(),
		"path":      a.After.PrimaryPath(),
		"restored":  err == nil,
	})
	if err != nil {
		return &a, fmt.Errorf("redo %s: %w", a.Description, err)
	}
	clog.Info("redid action %s (%s)", a.ID, a.Description)
	return &a, nil
}

// Rollback restores a backup snapshot by id.
func (e *Engine) Rollback(id uuid.UUID) error {
	info, err := e.backups.Load(id)
	if err != nil {
		return err
	}
	if err := e.backups.Restore(info); err != nil {
		return err
	}
	e.logCommand(audit.EventFileOperation, info.CommandID, map[string]any{
		"operation": "rollback",
		"backup_id": id.String(),
		"files":     len(info.Files),
	})
	return nil
}

// revert makes the filesystem match the action's before state.
// Best-effort: a content hash mismatch is logged but does not stop the
// restore, matching the undo-wins semantics of the action log.
func (e *Engine) revert(a *actionlog.Action) error {
	switch a.After.Kind {
	case actionlog.FileCreated:
		// Undo a creation by deleting the file.
		if err := os.Remove(a.After.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	case actionlog.FileModified:
		if current, err := os.ReadFile(a.After.Path); err == nil {
			if actionlog.HashContent(current) != a.After.ContentHash {
				clog.Warn("file %s changed since the recorded action; restoring anyway", a.After.Path)
			}
		}
		return writeRestored(a.Before.Path, a.Before.Content)
	case actionlog.FileDeleted:
		// Undo a deletion by writing the saved bytes back.
		return writeRestored(a.After.Path, a.After.Content)
	case actionlog.FileMoved:
		return os.Rename(a.After.To, a.After.From)
	case actionlog.DirectoryCreated:
		return os.Remove(a.After.Path)
	case actionlog.DirectoryDeleted:
		if err := os.MkdirAll(a.After.Path, 0750); err != nil {
			return err
		}
		for name, content := range a.After.Entries {
			if err := writeRestored(filepath.Join(a.After.Path, name), content); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("cannot revert state kind %q", a.After.Kind)
	}
}

// apply makes the filesystem match the action's after state.
func (e *Engine) apply(a *actionlog.Action) error {
	switch a.After.Kind {
	case actionlog.FileCreated, actionlog.FileModified:
		return writeRestored(a.After.Path, a.After.Content)
	case actionlog.FileDeleted:
		if err := os.Remove(a.After.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	case actionlog.FileMoved:
		return os.Rename(a.After.From, a.After.To)
	case actionlog.DirectoryCreated:
		return os.MkdirAll(a.After.Path, 0750)
	case actionlog.DirectoryDeleted:
		return os.RemoveAll(a.After.Path)
	default:
		return fmt.Errorf("cannot apply state kind %q", a.After.Kind)
	}
}

func writeRestored(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0640)
}
