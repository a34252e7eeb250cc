package actionlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.json")

	l := WithMaxSize(10)
	l.Record(FileCreatedAction("write", "/tmp/a.txt", []byte("a"), "Created a.txt"))
	l.Record(FileModifiedAction("write", "/tmp/a.txt", []byte("a"), []byte("b"), "Modified a.txt"))
	if _, ok := l.Undo(); !ok {
		t.Fatal("Undo() = false, want true")
	}

	if err := SaveFile(path, l); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	got, err := LoadFile(path, 10)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got.Len() != 2 {
		t.Errorf("Len() = %d, want 2", got.Len())
	}
	if got.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want 1", got.Cursor())
	}
	// The undone action is still pending redo after a reload.
	a, ok := got.Redo()
	if !ok {
		t.Fatal("Redo() = false, want true")
	}
	if a.Description != "Modified a.txt" {
		t.Errorf("redo action = %q, want %q", a.Description, "Modified a.txt")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	l, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"), 5)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if l.CanUndo() {
		t.Error("fresh log should have nothing to undo")
	}
}

func TestLoadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	if _, err := LoadFile(path, 5); err == nil {
		t.Fatal("LoadFile() expected error for corrupt file, got nil")
	}
}

func TestFromHistory_TrimsToBound(t *testing.T) {
	var actions []Action
	for i := 0; i < 5; i++ {
		actions = append(actions, FileCreatedAction("write", "/tmp/f", nil, "Created f"))
	}

	// Bound of 3 keeps the newest 3; the cursor shifts with the evicted
	// head so undo order is preserved.
	l := FromHistory(actions, 5, 3)
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if l.Cursor() != 3 {
		t.Errorf("Cursor() = %d, want 3", l.Cursor())
	}
}

func TestSaveFile_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	l := New()
	l.Record(FileCreatedAction("write", "/tmp/a", []byte("secret"), "Created a"))
	if err := SaveFile(path, l); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("os.Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history file permissions = %o, want 0600", perm)
	}
}
