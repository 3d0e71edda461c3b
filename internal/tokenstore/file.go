package tokenstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one file per key inside a private state directory.
// Reads go to disk every time, so a change made by another process is
// visible on the next Get.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultDir returns ~/.arcdash.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".arcdash"), nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Set(token string) error { return s.write(TokenKey, token) }

func (s *FileStore) Get() (string, bool) { return s.read(TokenKey) }

func (s *FileStore) Clear() error { return s.remove(TokenKey) }

func (s *FileStore) SetRole(role string) error { return s.write(RoleKey, role) }

func (s *FileStore) GetRole() (string, bool) { return s.read(RoleKey) }

func (s *FileStore) ClearRole() error { return s.remove(RoleKey) }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileStore) read(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", false
	}
	return v, true
}

// write replaces the key's file atomically: temp file in the same
// directory, then rename.
func (s *FileStore) write(key, value string) error {
	if value == "" {
		return s.remove(key)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("tokenstore: create %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("tokenstore: stage %s: %w", key, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("tokenstore: chmod %s: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("tokenstore: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenstore: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("tokenstore: save %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) remove(key string) error {
	err := os.Remove(s.path(key))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("tokenstore: remove %s: %w", key, err)
}
