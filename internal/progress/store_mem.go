package progress

import (
	"context"
	"sync"
)

type memStore struct {
	mu      sync.RWMutex
	records map[string]ChapterProgress // key user|chapter
}

func NewInMemoryStore() *memStore {
	return &memStore{records: map[string]ChapterProgress{}}
}

func progressKey(userID, chapterID string) string { return userID + "|" + chapterID }

func (m *memStore) Get(_ context.Context, userID, chapterID string) (*ChapterProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[progressKey(userID, chapterID)]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (m *memStore) Upsert(_ context.Context, rec ChapterProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := progressKey(rec.UserID, rec.ChapterID)
	if prev, ok := m.records[k]; ok {
		if prev.StartedAt != nil {
			rec.StartedAt = prev.StartedAt
		}
		if prev.CompletedAt != nil {
			rec.CompletedAt = prev.CompletedAt
		}
	}
	m.records[k] = rec
	return nil
}

func (m *memStore) ListForCourse(_ context.Context, userID, courseID string) ([]ChapterProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []ChapterProgress{}
	for _, rec := range m.records {
		if rec.UserID == userID && rec.CourseID == courseID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memSurveyStore struct {
	mu      sync.RWMutex
	surveys map[string]Survey // key user|course
}

func NewInMemorySurveyStore() *memSurveyStore {
	return &memSurveyStore{surveys: map[string]Survey{}}
}

func (m *memSurveyStore) Find(_ context.Context, userID, courseID string) (*Survey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sv, ok := m.surveys[userID+"|"+courseID]
	if !ok {
		return nil, nil
	}
	cp := sv
	return &cp, nil
}

func (m *memSurveyStore) Insert(_ context.Context, sv Survey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := sv.UserID + "|" + sv.CourseID
	if _, ok := m.surveys[k]; ok {
		return nil // first write wins
	}
	m.surveys[k] = sv
	return nil
}
