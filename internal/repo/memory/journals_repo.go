package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/widiatmoko/jurnalku/internal/domain/journal"
)

type JournalsRepo struct {
	mu    sync.RWMutex
	items map[string]journal.Entry
}

func NewJournalsRepo() *JournalsRepo {
	return &JournalsRepo{
		items: make(map[string]journal.Entry),
	}
}

func (r *JournalsRepo) List(ctx context.Context) ([]journal.Entry, error) {
	r.mu.RLock()
	out := make([]journal.Entry, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, e)
	}
	r.mu.RUnlock()

	// Newest day first; within a day, newest record first.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *JournalsRepo) GetByID(ctx context.Context, id string) (journal.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return journal.Entry{}, journal.ErrNotFound
	}
	return e, nil
}

func (r *JournalsRepo) Create(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	r.mu.Lock()
	r.items[e.ID] = e
	r.mu.Unlock()
	return e, nil
}

func (r *JournalsRepo) Update(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[e.ID]; !ok {
		return journal.Entry{}, journal.ErrNotFound
	}
	r.items[e.ID] = e
	return e, nil
}

func (r *JournalsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
	return nil
}

func (r *JournalsRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	r.items = make(map[string]journal.Entry)
	r.mu.Unlock()
	return nil
}

func (r *JournalsRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	r.mu.Lock()
	for id, e := range r.items {
		if e.StudentID == studentID {
			delete(r.items, id)
		}
	}
	r.mu.Unlock()
	return nil
}
