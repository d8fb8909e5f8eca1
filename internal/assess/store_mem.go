package assess

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

type memStore struct {
	mu          sync.RWMutex
	assessments map[int64]Assessment
	now         func() time.Time
}

func NewInMemoryStore() *memStore {
	return &memStore{assessments: map[int64]Assessment{}, now: time.Now}
}

func (m *memStore) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.assessments[id]
	return ok, nil
}

func (m *memStore) Get(_ context.Context, id int64) (Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assessments[id]
	if !ok {
		return Assessment{}, apperr.ErrAssessmentNotFound
	}
	return a, nil
}

func (m *memStore) Put(_ context.Context, a Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().Unix()
	if prev, ok := m.assessments[a.ID]; ok {
		a.CreatedAt = prev.CreatedAt
	} else if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	m.assessments[a.ID] = a
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[id]; !ok {
		return apperr.ErrAssessmentNotFound
	}
	delete(m.assessments, id)
	return nil
}

func (m *memStore) List(_ context.Context) ([]Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Assessment, 0, len(m.assessments))
	for _, a := range m.assessments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) AllocateNextID(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var next int64
	for {
		if _, ok := m.assessments[next]; !ok {
			return next, nil
		}
		next++
	}
}

func (m *memStore) TitleExists(_ context.Context, title string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.assessments {
		if strings.EqualFold(a.Title, title) {
			return true, nil
		}
	}
	return false, nil
}
