// Package backup snapshots files before mutating commands touch them
// and restores them afterwards. Backups live under
// <root>/<YYYY-MM-DD>/<uuid>/ with a metadata.json that makes each
// snapshot resolvable on its own.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warden-dev/warden/internal/clog"
)

// Info describes one snapshot. It is the content of metadata.json.
type Info struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	CommandID uuid.UUID `json:"command_id"`
	Files     []string  `json:"files"`
	Dir       string    `json:"dir"`
}

// RetentionConfig bounds how many snapshots are kept and for how long.
// Zero values disable the respective bound.
type RetentionConfig struct {
	MaxBackups int
	MaxAge     time.Duration
}

// Manager creates, restores, and sweeps snapshots under a single root.
type Manager struct {
	root      string
	retention RetentionConfig
}

// NewManager returns a manager rooted at dir.
func NewManager(dir string, retention RetentionConfig) *Manager {
	return &Manager{root: dir, retention: retention}
}

// Root returns the backup root directory.
func (m *Manager) Root() string {
	return m.root
}

// Create snapshots the given paths. Paths that do not exist are skipped
// — they belong to file-creation actions and there is nothing to save.
// Any copy failure fails the whole backup so the caller can abort
// before mutating anything.
func (m *Manager) Create(paths []string, commandID uuid.UUID) (*Info, error) {
	info := &Info{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		CommandID: commandID,
	}
	info.Dir = filepath.Join(m.root, info.Timestamp.Format("2006-01-02"), info.ID.String())

	if err := os.MkdirAll(info.Dir, 0750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := m.copyInto(info.Dir, p); err != nil {
			return nil, fmt.Errorf("backup %s: %w", p, err)
		}
		info.Files = append(info.Files, p)
	}

	meta, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(info.Dir, "metadata.json"), meta, 0640); err != nil {
		return nil, fmt.Errorf("write backup metadata: %w", err)
	}

	clog.Debug("backup %s created for command %s (%d files)", info.ID, commandID, len(info.Files))
	return info, nil
}

// copyInto copies src into dir, mirroring its absolute path so restores
// are unambiguous.
func (m *Manager) copyInto(dir, src string) error {
	abs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	dst := filepath.Join(dir, "files", strings.TrimPrefix(abs, string(filepath.Separator)))
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}
	return copyFile(abs, dst)
}

// Restore copies every file in the snapshot back to its original
// location, creating parent directories as needed. It keeps going past
// individual failures and reports them together.
func (m *Manager) Restore(info *Info) error {
	var errs []string
	for _, p := range info.Files {
		abs, err := filepath.Abs(p)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		src := filepath.Join(info.Dir, "files", strings.TrimPrefix(abs, string(filepath.Separator)))
		if err := os.MkdirAll(filepath.Dir(abs), 0750); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		if err := copyFile(src, abs); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", p, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore backup %s: %s", info.ID, strings.Join(errs, "; "))
	}
	clog.Info("backup %s restored (%d files)", info.ID, len(info.Files))
	return nil
}

// Load reads the metadata for a backup by id, scanning the date
// directories under the root.
func (m *Manager) Load(id uuid.UUID) (*Info, error) {
	dates, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("read backup root: %w", err)
	}
	for _, d := range dates {
		if !d.IsDir() {
			continue
		}
		metaPath := filepath.Join(m.root, d.Name(), id.String(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		var info Info
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("parse backup metadata: %w", err)
		}
		return &info, nil
	}
	return nil, fmt.Errorf("backup %s not found", id)
}

// List returns all snapshots under the root, oldest first.
func (m *Manager) List() ([]*Info, error) {
	var infos []*Info

	dates, err := os.ReadDir(m.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup root: %w", err)
	}

	for _, d := range dates {
		if !d.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(m.root, d.Name()))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(m.root, d.Name(), e.Name(), "metadata.json"))
			if err != nil {
				continue
			}
			var info Info
			if err := json.Unmarshal(data, &info); err != nil {
				continue
			}
			infos = append(infos, &info)
		}
	}

	// Oldest first, so retention can drop from the front.
	for i := 1; i < len(infos); i++ {
		for j := i; j > 0 && infos[j].Timestamp.Before(infos[j-1].Timestamp); j-- {
			infos[j], infos[j-1] = infos[j-1], infos[j]
		}
	}
	return infos, nil
}

// Sweep enforces the retention config: snapshots older than MaxAge and
// the oldest snapshots beyond MaxBackups are deleted.
func (m *Manager) Sweep() error {
	infos, err := m.List()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var keep []*Info
	for _, info := range infos {
		if m.retention.MaxAge > 0 && now.Sub(info.Timestamp) > m.retention.MaxAge {
			if err := m.remove(info); err != nil {
				return err
			}
			continue
		}
		keep = append(keep, info)
	}

	if m.retention.MaxBackups > 0 && len(keep) > m.retention.MaxBackups {
		for _, info := range keep[:len(keep)-m.retention.MaxBackups] {
			if err := m.remove(info); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) remove(info *Info) error {
	if err := os.RemoveAll(info.Dir); err != nil {
		return fmt.Errorf("remove backup %s: %w", info.ID, err)
	}
	// Drop the date directory once it is empty.
	dateDir := filepath.Dir(info.Dir)
	if entries, err := os.ReadDir(dateDir); err == nil && len(entries) == 0 {
		_ = os.Remove(dateDir)
	}
	clog.Debug("backup %s swept", info.ID)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, st.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
