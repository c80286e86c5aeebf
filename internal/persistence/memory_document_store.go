package persistence

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	seq  uint64
	data Document
}

// MemoryDocumentStore is a process-local DocumentStore used when no database is configured.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	seq         uint64
	collections map[string]map[string]*memoryEntry
}

// NewMemoryDocumentStore creates an empty store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{collections: make(map[string]map[string]*memoryEntry)}
}

func (s *MemoryDocumentStore) Create(_ context.Context, collection string, doc Document) (string, error) {
	data, err := normalize(doc.withoutID())
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.seq++
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*memoryEntry)
	}
	s.collections[collection][id] = &memoryEntry{seq: s.seq, data: data}
	return id, nil
}

func (s *MemoryDocumentStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return entry.snapshot(id), nil
}

func (s *MemoryDocumentStore) Find(_ context.Context, collection string, q Query) ([]Document, error) {
	where, err := normalize(q.Where)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	type hit struct {
		id    string
		entry *memoryEntry
	}
	var hits []hit
	for id, entry := range s.collections[collection] {
		if entry.matches(where) {
			hits = append(hits, hit{id: id, entry: entry})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if q.NewestFirst {
			return hits[i].entry.seq > hits[j].entry.seq
		}
		return hits[i].entry.seq < hits[j].entry.seq
	})
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	result := make([]Document, 0, len(hits))
	for _, h := range hits {
		result = append(result, h.entry.snapshot(h.id))
	}
	s.mu.RUnlock()
	return result, nil
}

func (s *MemoryDocumentStore) FindAll(ctx context.Context, collection string) ([]Document, error) {
	return s.Find(ctx, collection, Query{})
}

func (s *MemoryDocumentStore) Update(_ context.Context, collection, id string, fields Document) error {
	patch, err := normalize(fields.withoutID())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.collections[collection][id]
	if !ok {
		return ErrDocumentNotFound
	}
	for k, v := range patch {
		entry.data[k] = v
	}
	return nil
}

func (s *MemoryDocumentStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (e *memoryEntry) matches(where Document) bool {
	for k, want := range where {
		if !reflect.DeepEqual(e.data[k], want) {
			return false
		}
	}
	return true
}

func (e *memoryEntry) snapshot(id string) Document {
	// Round-tripping through normalize hands callers a deep copy.
	doc, _ := normalize(e.data)
	doc["id"] = id
	return doc
}

// normalize runs v through JSON so stored values have the same shapes a JSONB column would return.
func normalize(v map[string]any) (Document, error) {
	out := Document{}
	if len(v) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
