package journey

import (
	"context"
	"sort"
	"sync"
)

// Store persists assessed levels keyed by learner and subject. Writes are
// last-write-wins; there is a single writer per key in practice.
type Store interface {
	// LoadJourney returns the persisted record, or nil if none exists.
	LoadJourney(ctx context.Context, key Key) (*Record, error)

	// SaveJourney creates or replaces the record for key.
	SaveJourney(ctx context.Context, key Key, rec Record) error

	// DeleteJourney removes the record for key. Deleting a missing
	// record is not an error.
	DeleteJourney(ctx context.Context, key Key) error
}

// EventRecorder is implemented by stores that keep a transition log.
type EventRecorder interface {
	AppendJourneyEvent(ctx context.Context, ev Event) error
}

// SavedJourney pairs a persisted record with its key.
type SavedJourney struct {
	Key    Key
	Record Record
}

// Lister is implemented by stores that can enumerate a learner's records.
type Lister interface {
	// ListJourneys returns the learner's records ordered by subject id.
	ListJourneys(ctx context.Context, learnerID string) ([]SavedJourney, error)
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records map[Key]Record
	events  []Event
}

var (
	_ Store         = (*MemoryStore)(nil)
	_ EventRecorder = (*MemoryStore)(nil)
	_ Lister        = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key]Record)}
}

func (m *MemoryStore) LoadJourney(_ context.Context, key Key) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStore) SaveJourney(_ context.Context, key Key, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = rec
	return nil
}

func (m *MemoryStore) DeleteJourney(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *MemoryStore) AppendJourneyEvent(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of the recorded transition log.
func (m *MemoryStore) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *MemoryStore) ListJourneys(_ context.Context, learnerID string) ([]SavedJourney, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SavedJourney
	for k, rec := range m.records {
		if k.LearnerID == learnerID {
			out = append(out, SavedJourney{Key: k, Record: rec})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.SubjectID < out[j].Key.SubjectID })
	return out, nil
}
