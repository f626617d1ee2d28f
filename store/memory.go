package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/xiaot623/fmuweb/domain"
)

// MemoryStore keeps all artifact payloads in process memory and addresses
// them by fresh uuid tokens. This is the default backend: nothing
// survives process exit.
type MemoryStore struct {
	mu sync.Mutex

	primary   *domain.Artifact
	auxiliary *domain.Artifact
	results   map[string]*domain.Artifact
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]*domain.Artifact)}
}

func newToken() string { return uuid.New().String() }

// PutPrimary implements ArtifactStore. A new model upload starts a new
// logical session: auxiliary and result artifacts are discarded.
func (s *MemoryStore) PutPrimary(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auxiliary = nil
	s.results = make(map[string]*domain.Artifact)

	token := newToken()
	s.primary = &domain.Artifact{Token: token, Name: name, Role: domain.RolePrimary, Data: data}
	return token, nil
}

// PutAuxiliary implements ArtifactStore.
func (s *MemoryStore) PutAuxiliary(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := newToken()
	s.auxiliary = &domain.Artifact{Token: token, Name: name, Role: domain.RoleAuxiliary, Data: data}
	return token, nil
}

// PutResult implements ArtifactStore.
func (s *MemoryStore) PutResult(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := newToken()
	s.results[token] = &domain.Artifact{Token: token, Name: name, Role: domain.RoleResult, Data: data}
	return token, nil
}

// Get implements ArtifactStore.
func (s *MemoryStore) Get(token string) (*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primary != nil && s.primary.Token == token {
		return s.primary, nil
	}
	if s.auxiliary != nil && s.auxiliary.Token == token {
		return s.auxiliary, nil
	}
	if a, ok := s.results[token]; ok {
		return a, nil
	}
	return nil, domain.NotFoundf("unknown artifact token")
}

// Primary implements ArtifactStore.
func (s *MemoryStore) Primary() (*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primary == nil {
		return nil, domain.NotFoundf("no model uploaded")
	}
	return s.primary, nil
}

// Auxiliary implements ArtifactStore.
func (s *MemoryStore) Auxiliary() (*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auxiliary == nil {
		return nil, domain.NotFoundf("no input file uploaded")
	}
	return s.auxiliary, nil
}

// Clear implements ArtifactStore. Dropping memory cannot fail, so the
// report never carries errors.
func (s *MemoryStore) Clear() domain.ClearReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := domain.ClearReport{Removed: []string{}, Errors: []string{}}
	if s.primary != nil {
		report.Removed = append(report.Removed, s.primary.Token)
	}
	if s.auxiliary != nil {
		report.Removed = append(report.Removed, s.auxiliary.Token)
	}
	for token := range s.results {
		report.Removed = append(report.Removed, token)
	}

	s.primary = nil
	s.auxiliary = nil
	s.results = make(map[string]*domain.Artifact)
	return report
}
