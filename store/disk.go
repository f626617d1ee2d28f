package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/fmuweb/domain"
)

// DiskStore persists artifact payloads as files under a single root
// directory. Tokens are the actual file paths, so every path-accepting
// operation verifies the resolved path stays inside the root before
// touching the filesystem. That check is a security invariant: a token
// that escapes the root is rejected, never silently ignored.
type DiskStore struct {
	root string

	mu sync.Mutex

	primary   *domain.Artifact // Data is nil; payloads live on disk
	auxiliary *domain.Artifact
	results   map[string]*domain.Artifact
}

// NewDiskStore creates a directory-backed store rooted at dir, creating
// the directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	// Pin the root to its symlink-free form so containment checks compare
	// like with like.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &DiskStore{root: abs, results: make(map[string]*domain.Artifact)}, nil
}

// Root returns the absolute root directory of the store.
func (s *DiskStore) Root() string { return s.root }

// withinRoot reports whether path resolves to a location under the store
// root. Symlinks in existing prefixes are resolved before the check.
func (s *DiskStore) withinRoot(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	// Resolve the parent so a symlinked directory cannot smuggle the
	// file outside the root while the lexical path still looks inside.
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err == nil {
		abs = filepath.Join(parent, filepath.Base(abs))
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// write stores data as a fresh file under the root and returns its path,
// which doubles as the artifact token.
func (s *DiskStore) write(role domain.ArtifactRole, name string, data []byte) (string, error) {
	base := filepath.Base(name) // strip any client-supplied directories
	path := filepath.Join(s.root, fmt.Sprintf("%s_%s_%s", role, uuid.New().String()[:8], base))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// remove deletes one artifact file, appending the outcome to the report.
func (s *DiskStore) remove(a *domain.Artifact, report *domain.ClearReport) {
	if !s.withinRoot(a.Token) {
		report.Errors = append(report.Errors, fmt.Sprintf("refusing to remove %s: outside store root", a.Token))
		return
	}
	if err := os.Remove(a.Token); err != nil {
		if os.IsNotExist(err) {
			return
		}
		report.Errors = append(report.Errors, fmt.Sprintf("failed to remove %s: %v", a.Token, err))
		return
	}
	report.Removed = append(report.Removed, a.Token)
}

// PutPrimary implements ArtifactStore. The previous session's files are
// deleted best-effort before the new primary is written.
func (s *DiskStore) PutPrimary(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report domain.ClearReport
	if s.primary != nil {
		s.remove(s.primary, &report)
	}
	if s.auxiliary != nil {
		s.remove(s.auxiliary, &report)
	}
	for _, a := range s.results {
		s.remove(a, &report)
	}
	for _, e := range report.Errors {
		logrus.Warnf("session replace: %s", e)
	}
	s.primary = nil
	s.auxiliary = nil
	s.results = make(map[string]*domain.Artifact)

	token, err := s.write(domain.RolePrimary, name, data)
	if err != nil {
		return "", err
	}
	s.primary = &domain.Artifact{Token: token, Name: name, Role: domain.RolePrimary}
	return token, nil
}

// PutAuxiliary implements ArtifactStore.
func (s *DiskStore) PutAuxiliary(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auxiliary != nil {
		var report domain.ClearReport
		s.remove(s.auxiliary, &report)
		for _, e := range report.Errors {
			logrus.Warnf("input replace: %s", e)
		}
		s.auxiliary = nil
	}

	token, err := s.write(domain.RoleAuxiliary, name, data)
	if err != nil {
		return "", err
	}
	s.auxiliary = &domain.Artifact{Token: token, Name: name, Role: domain.RoleAuxiliary}
	return token, nil
}

// PutResult implements ArtifactStore.
func (s *DiskStore) PutResult(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.write(domain.RoleResult, name, data)
	if err != nil {
		return "", err
	}
	s.results[token] = &domain.Artifact{Token: token, Name: name, Role: domain.RoleResult}
	return token, nil
}

// Get implements ArtifactStore. The payload is read from disk on demand.
// Tokens are paths in this backend, so containment is checked before
// anything else: an escaping path is rejected even if the file exists.
func (s *DiskStore) Get(token string) (*domain.Artifact, error) {
	if !s.withinRoot(token) {
		return nil, domain.InvalidInputf("artifact path escapes store root")
	}

	s.mu.Lock()
	entry := s.lookup(token)
	s.mu.Unlock()

	if entry == nil {
		return nil, domain.NotFoundf("unknown artifact token")
	}
	data, err := os.ReadFile(entry.Token)
	if err != nil {
		return nil, domain.NotFoundf("artifact no longer on disk: %v", err)
	}
	out := *entry
	out.Data = data
	return &out, nil
}

// lookup must be called with the mutex held.
func (s *DiskStore) lookup(token string) *domain.Artifact {
	if s.primary != nil && s.primary.Token == token {
		return s.primary
	}
	if s.auxiliary != nil && s.auxiliary.Token == token {
		return s.auxiliary
	}
	return s.results[token]
}

// Primary implements ArtifactStore.
func (s *DiskStore) Primary() (*domain.Artifact, error) {
	s.mu.Lock()
	p := s.primary
	s.mu.Unlock()
	if p == nil {
		return nil, domain.NotFoundf("no model uploaded")
	}
	return s.Get(p.Token)
}

// Auxiliary implements ArtifactStore.
func (s *DiskStore) Auxiliary() (*domain.Artifact, error) {
	s.mu.Lock()
	a := s.auxiliary
	s.mu.Unlock()
	if a == nil {
		return nil, domain.NotFoundf("no input file uploaded")
	}
	return s.Get(a.Token)
}

// Clear implements ArtifactStore. Every tracked file is unlinked; failed
// deletions are collected per item and the session state is reset
// regardless.
func (s *DiskStore) Clear() domain.ClearReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := domain.ClearReport{Removed: []string{}, Errors: []string{}}
	if s.primary != nil {
		s.remove(s.primary, &report)
	}
	if s.auxiliary != nil {
		s.remove(s.auxiliary, &report)
	}
	for _, a := range s.results {
		s.remove(a, &report)
	}

	s.primary = nil
	s.auxiliary = nil
	s.results = make(map[string]*domain.Artifact)
	return report
}
