// Package media tracks files uploaded through the gateway so each
// request can clean up after itself.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/pagevoice/pagevoice/pkg/utils"
)

// UploadMeta holds metadata about a stored upload.
type UploadMeta struct {
	Filename    string
	ContentType string
	Kind        string // "pdf", "reference", "text"
}

// UploadStore manages the lifecycle of uploaded files grouped by request scope.
type UploadStore interface {
	// Save writes the upload to disk under the given scope and returns a
	// ref identifier ("upload://<id>") plus the local path.
	Save(r io.Reader, meta UploadMeta, scope string) (ref, localPath string, err error)

	// Resolve returns the local file path for a given ref.
	Resolve(ref string) (localPath string, err error)

	// ReleaseAll deletes all files registered under the given scope
	// and removes the mapping entries. File-not-exist errors are ignored.
	ReleaseAll(scope string) error
}

// FileUploadStore writes uploads into a single directory and keeps the
// ref and scope mappings in memory.
type FileUploadStore struct {
	dir         string
	mu          sync.RWMutex
	refToPath   map[string]string
	scopeToRefs map[string]map[string]struct{}
}

// NewFileUploadStore creates the upload directory if needed.
func NewFileUploadStore(dir string) (*FileUploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload store: create dir: %w", err)
	}
	return &FileUploadStore{
		dir:         dir,
		refToPath:   make(map[string]string),
		scopeToRefs: make(map[string]map[string]struct{}),
	}, nil
}

// Save streams the upload into the store directory under a unique name.
func (s *FileUploadStore) Save(r io.Reader, meta UploadMeta, scope string) (string, string, error) {
	id := uuid.New().String()[:8]
	name := id + "_" + utils.SanitizeFilename(meta.Filename)
	localPath := filepath.Join(s.dir, name)

	f, err := os.Create(localPath)
	if err != nil {
		return "", "", fmt.Errorf("upload store: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(localPath)
		return "", "", fmt.Errorf("upload store: write upload: %w", err)
	}

	ref := "upload://" + id

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refToPath[ref] = localPath
	if s.scopeToRefs[scope] == nil {
		s.scopeToRefs[scope] = make(map[string]struct{})
	}
	s.scopeToRefs[scope][ref] = struct{}{}

	return ref, localPath, nil
}

// Resolve returns the local path for the given ref.
func (s *FileUploadStore) Resolve(ref string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.refToPath[ref]
	if !ok {
		return "", fmt.Errorf("upload store: unknown ref: %s", ref)
	}
	return path, nil
}

// ReleaseAll removes all files under the given scope and cleans up mappings.
func (s *FileUploadStore) ReleaseAll(scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, ok := s.scopeToRefs[scope]
	if !ok {
		return nil
	}

	for ref := range refs {
		if path, exists := s.refToPath[ref]; exists {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				// best effort cleanup
			}
			delete(s.refToPath, ref)
		}
	}

	delete(s.scopeToRefs, scope)
	return nil
}
