// Package blobstore persists user-supplied media blobs keyed by id.
package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

const (
	appName  = "playdeck"
	storeDir = "media"

	// MaxBlobSize caps a single imported blob at 50 MB.
	MaxBlobSize = 50 << 20
)

// ErrNotFound is returned by Get when no blob exists for the given id.
var ErrNotFound = errors.New("blob not found")

// ErrTooLarge is returned by Put when the blob exceeds MaxBlobSize.
var ErrTooLarge = errors.New("blob exceeds size limit")

// Store is a flat on-disk blob store. One file per blob, named by id.
type Store struct {
	root string
}

// Open creates or opens the store under the user's XDG data directory.
func Open() (*Store, error) {
	path, err := xdg.DataFile(filepath.Join(appName, storeDir, ".keep"))
	if err != nil {
		return nil, err
	}
	return OpenAt(filepath.Dir(path))
}

// OpenAt creates or opens a store rooted at the given directory.
func OpenAt(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// NewID mints a fresh blob id.
func NewID() string {
	return "local_" + uuid.NewString()
}

// Put stores the blob under id, replacing any previous content.
// Returns the number of bytes written. The write goes through a temp file
// so a failed Put never leaves a partial blob behind.
func (s *Store) Put(id string, r io.Reader) (int64, error) {
	path, err := s.path(id)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.root, ".put-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, MaxBlobSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if n > MaxBlobSize {
		return 0, ErrTooLarge
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return n, nil
}

// Get returns a reader over the blob's content and its size in bytes.
// The caller owns the reader and must close it.
func (s *Store) Get(id string) (io.ReadCloser, int64, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Delete removes the blob. Deleting an absent blob is not an error.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid blob id %q", id)
	}
	return filepath.Join(s.root, id), nil
}
