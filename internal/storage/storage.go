// Package storage persists load documents on local disk. Final objects are
// keyed load_{shipment id}/{timestamp}_{filename}; oversized uploads land in
// a temp area first and are removed once processing finishes, with a sweep
// for blobs orphaned by a crash.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/logger"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage object not found")

const (
	dirPerm  = 0o755
	filePerm = 0o644

	tempDirName = "tmp"
)

// Store is a disk-backed object store rooted at a single directory.
type Store struct {
	root    string
	tempDir string
}

// New creates the root and temp directories if missing.
func New(root, tempDir string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if strings.TrimSpace(tempDir) == "" {
		tempDir = filepath.Join(root, tempDirName)
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if err := os.MkdirAll(tempDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Store{root: root, tempDir: tempDir}, nil
}

// ObjectKey builds the canonical storage key for a shipment document.
func ObjectKey(shipmentID uint, filename string, now time.Time) string {
	return fmt.Sprintf("load_%d/%d_%s", shipmentID, now.Unix(), SanitizeFilename(filename))
}

// SanitizeFilename strips path separators and characters unsafe for a
// filesystem key, keeping the extension intact.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "document.pdf"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Put writes an object under its key, creating parent directories.
func (s *Store) Put(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// Get reads an object by key.
func (s *Store) Get(key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Delete removes an object by key. Deleting a missing object is not an
// error.
func (s *Store) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// resolve maps a key to an absolute path and rejects keys that escape the
// root.
func (s *Store) resolve(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage key is required")
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage key %q escapes the root", key)
	}
	return path, nil
}

// PutTemp stages a blob in the temp area and returns its handle.
func (s *Store) PutTemp(data []byte) (string, error) {
	id := uuid.NewString() + ".blob"
	if err := os.WriteFile(filepath.Join(s.tempDir, id), data, filePerm); err != nil {
		return "", fmt.Errorf("write temp blob: %w", err)
	}
	return id, nil
}

// GetTemp reads a staged blob.
func (s *Store) GetTemp(id string) ([]byte, error) {
	path, err := s.resolveTemp(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read temp blob: %w", err)
	}
	return data, nil
}

// DeleteTemp removes a staged blob. Missing blobs are ignored so cleanup
// can run unconditionally on every exit path.
func (s *Store) DeleteTemp(id string) error {
	path, err := s.resolveTemp(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete temp blob: %w", err)
	}
	return nil
}

func (s *Store) resolveTemp(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id != filepath.Base(id) {
		return "", fmt.Errorf("invalid temp blob id %q", id)
	}
	return filepath.Join(s.tempDir, id), nil
}

// SweepTemp removes staged blobs older than maxAge and returns how many
// were removed. Blobs that fail to delete are logged and skipped.
func (s *Store) SweepTemp(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.tempDir, entry.Name())); err != nil {
			logger.Warnw("sweep temp blob failed", "blob", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
