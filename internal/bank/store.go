// Package bank persists parsed items and processing results around the
// pure parser/processor core. The Store interface keeps handlers and
// tests independent of the backing database.
package bank

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/processor"
)

var ErrNotFound = errors.New("not found")

// ResultRecord is one stored scoring outcome.
type ResultRecord struct {
	ID        string           `json:"id"`
	ItemID    string           `json:"item_id"`
	Result    processor.Result `json:"result"`
	CreatedAt int64            `json:"created_at"`
}

type Store interface {
	PutItem(ctx context.Context, id string, item *model.AssessmentItem) error
	GetItem(ctx context.Context, id string) (*model.AssessmentItem, error)
	ListItems(ctx context.Context) ([]string, error)
	PutResult(ctx context.Context, rec ResultRecord) error
	GetResult(ctx context.Context, id string) (ResultRecord, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	items   map[string]*model.AssessmentItem
	results map[string]ResultRecord
}

// NewInMemoryStore backs tests and offline tooling.
func NewInMemoryStore() Store {
	return &memoryStore{
		items:   map[string]*model.AssessmentItem{},
		results: map[string]ResultRecord{},
	}
}

func (m *memoryStore) PutItem(_ context.Context, id string, item *model.AssessmentItem) error {
	if id == "" {
		return errors.New("empty item id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = item
	return nil
}

func (m *memoryStore) GetItem(_ context.Context, id string) (*model.AssessmentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

func (m *memoryStore) ListItems(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) PutResult(_ context.Context, rec ResultRecord) error {
	if rec.ID == "" {
		return errors.New("empty result id")
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[rec.ID] = rec
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (ResultRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.results[id]
	if !ok {
		return ResultRecord{}, ErrNotFound
	}
	return rec, nil
}
