// Package blob stores chat attachments. The service layer only keeps
// the returned URL; the payload itself lives outside the database.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store saves attachment payloads under generated unique names.
type Store interface {
	// Save writes the payload and returns the public URL path for it.
	Save(r io.Reader, origName string) (string, error)
	// Path resolves a stored filename to its on-disk location.
	// Returns an error for names that escape the store directory.
	Path(filename string) (string, error)
}

// DiskStore is a Store backed by a local directory served at baseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

func (s *DiskStore) Save(r io.Reader, origName string) (string, error) {
	ext := filepath.Ext(origName)
	name := uuid.NewString() + ext

	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating blob file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

func (s *DiskStore) Path(filename string) (string, error) {
	// Reject anything with path separators or traversal segments.
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
