package attach

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

// memRegistry is the in-memory registry used by tests and offline demos.
// Scopes and assessments are seeded up front instead of resolved from a DB.
type memRegistry struct {
	mu          sync.RWMutex
	scopes      map[string]Scope // key kind|id
	assessments map[int64]bool
	mappings    map[string]Mapping // by mapping id
	now         func() time.Time
}

func NewInMemoryRegistry() *memRegistry {
	return &memRegistry{
		scopes:      map[string]Scope{},
		assessments: map[int64]bool{},
		mappings:    map[string]Mapping{},
		now:         time.Now,
	}
}

func scopeKey(kind ScopeKind, id string) string { return string(kind) + "|" + id }

// SeedScope registers a resolvable scope with its denormalized ids.
func (m *memRegistry) SeedScope(s Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scopes[scopeKey(s.Kind, s.ID)] = s
}

// SeedAssessment marks an assessment id as existing.
func (m *memRegistry) SeedAssessment(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments[id] = true
}

func (m *memRegistry) Attach(_ context.Context, kind ScopeKind, scopeID string, assessmentID int64, opts PolicyOpts) (Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scope, ok := m.scopes[scopeKey(kind, scopeID)]
	if !ok {
		if scopeID == "" {
			return Mapping{}, apperr.ErrInvalidScope
		}
		return Mapping{}, apperr.ErrScopeNotFound
	}
	if !m.assessments[assessmentID] {
		return Mapping{}, apperr.ErrAssessmentNotFound
	}
	required, passScore, maxAttempts, err := resolvePolicy(kind, opts)
	if err != nil {
		return Mapping{}, err
	}

	// replace in place when an active mapping already holds the scope
	for id, cur := range m.mappings {
		if cur.Status == StatusActive && cur.Scope.Kind == kind && cur.Scope.ID == scopeID {
			cur.AssessmentID = assessmentID
			cur.IsRequired = required
			cur.PassScore = passScore
			cur.MaxAttempts = maxAttempts
			cur.CreatedAt = m.now().Unix()
			m.mappings[id] = cur
			return cur, nil
		}
	}

	mp := Mapping{
		ID:           uuid.NewString(),
		Scope:        scope,
		AssessmentID: assessmentID,
		IsRequired:   required,
		PassScore:    passScore,
		MaxAttempts:  maxAttempts,
		Status:       StatusActive,
		CreatedAt:    m.now().Unix(),
	}
	m.mappings[mp.ID] = mp
	return mp, nil
}

func (m *memRegistry) Detach(_ context.Context, kind ScopeKind, scopeID string) (Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cur := range m.mappings {
		if cur.Status == StatusActive && cur.Scope.Kind == kind && cur.Scope.ID == scopeID {
			at := m.now().Unix()
			cur.Status = StatusArchived
			cur.ArchivedAt = &at
			m.mappings[id] = cur
			return cur, nil
		}
	}
	return Mapping{}, apperr.ErrMappingNotFound
}

func (m *memRegistry) ResolveActive(_ context.Context, kind ScopeKind, scopeID string) (*Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cur := range m.mappings {
		if cur.Status == StatusActive && cur.Scope.Kind == kind && cur.Scope.ID == scopeID {
			cp := cur
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRegistry) Unarchive(_ context.Context, mappingID string) (Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.mappings[mappingID]
	if !ok {
		return Mapping{}, apperr.ErrMappingNotFound
	}
	if cur.Status == StatusActive {
		return cur, nil
	}
	for id, other := range m.mappings {
		if id != mappingID && other.Status == StatusActive &&
			other.Scope.Kind == cur.Scope.Kind && other.Scope.ID == cur.Scope.ID {
			return Mapping{}, apperr.ErrScopeAlreadyActive
		}
	}
	cur.Status = StatusActive
	cur.ArchivedAt = nil
	m.mappings[mappingID] = cur
	return cur, nil
}

func (m *memRegistry) ListForScope(_ context.Context, kind ScopeKind, scopeID string) ([]Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Mapping{}
	for _, cur := range m.mappings {
		if cur.Scope.Kind == kind && cur.Scope.ID == scopeID {
			out = append(out, cur)
		}
	}
	return out, nil
}

func (m *memRegistry) ExistsForAssessment(_ context.Context, assessmentID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cur := range m.mappings {
		if cur.AssessmentID == assessmentID {
			return true, nil
		}
	}
	return false, nil
}
