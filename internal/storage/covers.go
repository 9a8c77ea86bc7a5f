// Package storage implements the on-disk cover image store.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidFileType is returned for uploads whose extension is not allowed
var ErrInvalidFileType = errors.New("file type not allowed")

// ErrInvalidName is returned for stored names containing path separators
var ErrInvalidName = errors.New("invalid cover name")

// allowedExts is the set of accepted cover image extensions
var allowedExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// CoverInfo describes one file in the store
type CoverInfo struct {
	Name    string
	ModTime time.Time
}

// CoverStore maps uploaded image bytes to uniquely named files in one directory
type CoverStore struct {
	dir string
}

// NewCoverStore creates the store directory if needed
func NewCoverStore(dir string) (*CoverStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &CoverStore{dir: dir}, nil
}

// Dir returns the store directory
func (s *CoverStore) Dir() string {
	return s.dir
}

// Save writes an uploaded image under a unique name derived from its
// original filename and returns the stored name. The original name is
// stripped of path components and unsafe characters and prefixed with
// the current epoch seconds; a same-second collision retries with a
// counter suffix instead of overwriting.
func (s *CoverStore) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExts[ext] {
		return "", ErrInvalidFileType
	}

	base := sanitizeName(filepath.Base(originalName))
	epoch := time.Now().Unix()

	name := fmt.Sprintf("%d_%s", epoch, base)
	for n := 1; s.exists(name); n++ {
		name = fmt.Sprintf("%d_%d_%s", epoch, n, base)
	}

	if err := s.write(name, src); err != nil {
		return "", err
	}
	return name, nil
}

// write commits the bytes via a temp file so a failed write never
// leaves a partial cover behind
func (s *CoverStore) write(name string, src io.Reader) error {
	tmp := filepath.Join(s.dir, "."+name+".part")
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create cover file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write cover file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close cover file: %w", err)
	}

	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit cover file: %w", err)
	}
	return nil
}

// Remove deletes a stored cover. Removing a name that is already absent
// is a no-op so cleanup stays idempotent.
func (s *CoverStore) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cover file: %w", err)
	}
	return nil
}

// Path resolves a stored name to its location on disk, rejecting names
// that would escape the store directory
func (s *CoverStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether a stored name is present
func (s *CoverStore) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (s *CoverStore) exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// List returns every committed file in the store with its modtime.
// In-flight temp files are skipped.
func (s *CoverStore) List() ([]CoverInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var covers []CoverInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		covers = append(covers, CoverInfo{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return covers, nil
}

// sanitizeName keeps letters, digits, dot, dash and underscore and
// collapses everything else to underscore
func sanitizeName(name string) string {
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
