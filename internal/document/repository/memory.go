package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docvault/docvault/internal/document"
)

// MemoryRepo is an in-memory repository used for local development and
// unit tests. It honors the same contract as the database-backed repos,
// soft deletion included.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[uuid.UUID]*document.Document)}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; ok {
		return nil, fmt.Errorf("document %s already exists", doc.ID)
	}
	m.docs[doc.ID] = doc.Clone()
	return doc.Clone(), nil
}

func (m *MemoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok || d.IsDeleted {
		return nil, document.ErrNotFound
	}
	return d.Clone(), nil
}

func (m *MemoryRepo) Update(ctx context.Context, id uuid.UUID, in document.UpdateInput) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.IsDeleted {
		return nil, document.ErrNotFound
	}
	if !in.HasChanges() {
		return d.Clone(), nil
	}
	next := document.Revise(d, in, time.Now())
	m.docs[id] = next
	return next.Clone(), nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.IsDeleted {
		return false, nil
	}
	d.IsDeleted = true
	d.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MemoryRepo) Restore(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || !d.IsDeleted {
		return nil, document.ErrNotFound
	}
	d.IsDeleted = false
	d.UpdatedAt = time.Now().UTC()
	return d.Clone(), nil
}

func (m *MemoryRepo) List(ctx context.Context, skip, limit int) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	live := make([]*document.Document, 0, len(m.docs))
	for _, d := range m.docs {
		if !d.IsDeleted {
			live = append(live, d)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if !live[i].UpdatedAt.Equal(live[j].UpdatedAt) {
			return live[i].UpdatedAt.After(live[j].UpdatedAt)
		}
		// deterministic order for identical timestamps
		return live[i].ID.String() > live[j].ID.String()
	})
	if skip >= len(live) {
		return []*document.Document{}, nil
	}
	end := skip + limit
	if end > len(live) {
		end = len(live)
	}
	out := make([]*document.Document, 0, end-skip)
	for _, d := range live[skip:end] {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (m *MemoryRepo) GetVersions(ctx context.Context, id uuid.UUID) ([]document.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok || d.IsDeleted {
		return nil, document.ErrNotFound
	}
	return d.Clone().Versions, nil
}
