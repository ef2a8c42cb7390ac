package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"listing_seeder/internal/domain"
)

var errInjected = errors.New("injected remote failure")

type call struct {
	op         string // list|create|delete
	collection string
	at         time.Time
	failed     bool
}

// memStore is an in-memory DocumentStore. pageSize > 0 truncates listings the
// way paged remote stores do; failCreate/failDelete/failList inject errors.
type memStore struct {
	mu       sync.Mutex
	next     int
	docs     map[string][]domain.Document // collection id -> docs in insert order
	pageSize int
	calls    []call

	failCreate func(collection string, n int) bool // n counts creates per collection, 1-based
	failDelete func(collection, id string) bool
	failList   func(collection string) bool
	creates    map[string]int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]domain.Document{}, creates: map[string]int{}}
}

func (m *memStore) ListDocuments(ctx context.Context, databaseID, collectionID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: "list", collection: collectionID, at: time.Now()})
	if m.failList != nil && m.failList(collectionID) {
		m.calls[len(m.calls)-1].failed = true
		return nil, errInjected
	}
	docs := m.docs[collectionID]
	if m.pageSize > 0 && len(docs) > m.pageSize {
		docs = docs[:m.pageSize]
	}
	return append([]domain.Document(nil), docs...), nil
}

func (m *memStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: "create", collection: collectionID, at: time.Now()})
	m.creates[collectionID]++
	if m.failCreate != nil && m.failCreate(collectionID, m.creates[collectionID]) {
		m.calls[len(m.calls)-1].failed = true
		return domain.Document{}, errInjected
	}
	if documentID != domain.UniqueID {
		return domain.Document{}, fmt.Errorf("unexpected document id %q", documentID)
	}
	m.next++
	d := domain.Document{ID: fmt.Sprintf("%s-%04d", collectionID, m.next), Data: data}
	m.docs[collectionID] = append(m.docs[collectionID], d)
	return d, nil
}

func (m *memStore) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: "delete", collection: collectionID, at: time.Now()})
	if m.failDelete != nil && m.failDelete(collectionID, documentID) {
		m.calls[len(m.calls)-1].failed = true
		return errInjected
	}
	docs := m.docs[collectionID]
	for i, d := range docs {
		if d.ID == documentID {
			m.docs[collectionID] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memStore) ids(collection string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.docs[collection]))
	for _, d := range m.docs[collection] {
		out = append(out, d.ID)
	}
	return out
}

func (m *memStore) byID(collection, id string) (domain.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs[collection] {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Document{}, false
}

// preload inserts n documents that look like a previous run's records.
func (m *memStore) preload(collection string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.next++
		m.docs[collection] = append(m.docs[collection], domain.Document{
			ID:   fmt.Sprintf("old-%s-%04d", collection, m.next),
			Data: map[string]any{"stale": true},
		})
	}
}
