package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
)

type entry struct {
	tutorial *domain.Tutorial
	savedAt  time.Time
	seq      uint64
}

// Store implements ports.TutorialStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]entry
	seq  uint64
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]entry),
	}
}

// Save persists a copy of the tutorial in memory.
func (s *Store) Save(ctx context.Context, t *domain.Tutorial) error {
	key, err := ports.SanitizeID(t.ID)
	if err != nil {
		return err
	}
	copied, err := t.Clone()
	if err != nil {
		return &domain.StorageError{Op: "save", ID: key, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.data[key] = entry{tutorial: copied, savedAt: time.Now(), seq: s.seq}
	return nil
}

// Load returns a copy of the stored tutorial so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.NotFoundError("tutorial", key)
	}
	return s.copyOut(key, e)
}

// List returns summaries in reverse save order.
func (s *Store) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	s.mu.RLock()
	entries := make([]entry, 0, len(s.data))
	for _, e := range s.data {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq > entries[j].seq
	})

	out := make([]domain.TutorialSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.tutorial.Summarize(e.savedAt))
	}
	return out, nil
}

// FindBySourceRecordID scans stored tutorials for the given record id,
// preferring the most recently saved match.
func (s *Store) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	s.mu.RLock()
	var (
		found    entry
		foundKey string
		ok       bool
	)
	for key, e := range s.data {
		if recordID == "" || e.tutorial.Source.AirtableRecordID != recordID {
			continue
		}
		if !ok || e.seq > found.seq {
			found, foundKey, ok = e, key, true
		}
	}
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NotFoundError("tutorial for record", recordID)
	}
	return s.copyOut(foundKey, found)
}

// Delete removes the tutorial.
func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *Store) copyOut(key string, e entry) (*domain.Tutorial, error) {
	out, err := e.tutorial.Clone()
	if err != nil {
		return nil, &domain.StorageError{Op: "load", ID: key, Err: err}
	}
	return out, nil
}
