package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/warden-dev/warden/internal/clog"
)

func TestMain(m *testing.M) {
	clog.Discard()
	os.Exit(m.Run())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestCreateAndRestore(t *testing.T) {
	work := t.TempDir()
	target := filepath.Join(work, "config.yaml")
	writeFile(t, target, "original")

	m := NewManager(filepath.Join(work, "backups"), RetentionConfig{})
	cmdID := uuid.New()

	info, err := m.Create([]string{target}, cmdID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if info.CommandID != cmdID {
		t.Errorf("CommandID = %s, want %s", info.CommandID, cmdID)
	}
	if len(info.Files) != 1 || info.Files[0] != target {
		t.Errorf("Files = %v, want [%s]", info.Files, target)
	}

	// The snapshot directory is <root>/<date>/<id> with metadata.json.
	wantDir := filepath.Join(work, "backups", info.Timestamp.Format("2006-01-02"), info.ID.String())
	if info.Dir != wantDir {
		t.Errorf("Dir = %s, want %s", info.Dir, wantDir)
	}
	if _, err := os.Stat(filepath.Join(info.Dir, "metadata.json")); err != nil {
		t.Errorf("metadata.json missing: %v", err)
	}

	// Clobber the file, then restore.
	writeFile(t, target, "clobbered")
	if err := m.Restore(info); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("restored content = %q, want %q", got, "original")
	}
}

func TestCreate_SkipsMissingPaths(t *testing.T) {
	work := t.TempDir()
	existing := filepath.Join(work, "a.txt")
	writeFile(t, existing, "a")

	m := NewManager(filepath.Join(work, "backups"), RetentionConfig{})

	info, err := m.Create([]string{existing, filepath.Join(work, "missing.txt")}, uuid.New())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(info.Files) != 1 || info.Files[0] != existing {
		t.Errorf("Files = %v, want only the existing path", info.Files)
	}
}

func TestRestore_RecreatesDeletedFile(t *testing.T) {
	work := t.TempDir()
	target := filepath.Join(work, "deep", "nested", "file.txt")
	writeFile(t, target, "payload")

	m := NewManager(filepath.Join(work, "backups"), RetentionConfig{})
	info, err := m.Create([]string{target}, uuid.New())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := os.RemoveAll(filepath.Join(work, "deep")); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	if err := m.Restore(info); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile after restore: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("restored content = %q, want %q", got, "payload")
	}
}

func TestLoadByID(t *testing.T) {
	work := t.TempDir()
	target := filepath.Join(work, "x.txt")
	writeFile(t, target, "x")

	m := NewManager(filepath.Join(work, "backups"), RetentionConfig{})
	created, err := m.Create([]string{target}, uuid.New())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	loaded, err := m.Load(created.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.ID != created.ID {
		t.Errorf("Load().ID = %s, want %s", loaded.ID, created.ID)
	}
	if loaded.Dir != created.Dir {
		t.Errorf("Load().Dir = %s, want %s", loaded.Dir, created.Dir)
	}

	if _, err := m.Load(uuid.New()); err == nil {
		t.Error("Load(unknown id) = nil error, want not-found")
	}
}

func TestSweep_MaxBackups(t *testing.T) {
	work := t.TempDir()
	target := filepath.Join(work, "f.txt")
	writeFile(t, target, "f")

	m := NewManager(filepath.Join(work, "backups"), RetentionConfig{MaxBackups: 2})

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		info, err := m.Create([]string{target}, uuid.New())
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		ids = append(ids, info.ID)
		time.Sleep(2 * time.Millisecond) // distinct timestamps for ordering
	}

	if err := m.Sweep(); err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	infos, err := m.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len(List()) after sweep = %d, want 2", len(infos))
	}
	// The two newest survive.
	if infos[0].ID != ids[2] || infos[1].ID != ids[3] {
		t.Errorf("survivors = [%s %s], want [%s %s]", infos[0].ID, infos[1].ID, ids[2], ids[3])
	}
}

func TestSweep_MaxAge(t *testing.T) {
	work := t.TempDir()
	target := filepath.Join(work, "f.txt")
	writeFile(t, target, "f")

	m := NewManager(filepath.Join(work, "backups"), RetentionConfig{MaxAge: time.Hour})

	info, err := m.Create([]string{target}, uuid.New())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Age the snapshot by rewriting its metadata timestamp.
	info.Timestamp = info.Timestamp.Add(-2 * time.Hour)
	meta := filepath.Join(info.Dir, "metadata.json")
	rewriteTimestamp(t, meta, info.Timestamp)

	if err := m.Sweep(); err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	infos, err := m.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("len(List()) after sweep = %d, want 0", len(infos))
	}
}

func TestList_EmptyRoot(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "never-created"), RetentionConfig{})
	infos, err := m.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("len(List()) = %d, want 0", len(infos))
	}
}

func rewriteTimestamp(t *testing.T, metaPath string, ts time.Time) {
	t.Helper()
	data, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", metaPath, err)
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	info.Timestamp = ts
	out, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	if err := os.WriteFile(metaPath, out, 0640); err != nil {
		t.Fatalf("WriteFile(%s): %v", metaPath, err)
	}
}
