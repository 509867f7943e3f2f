// Package bucket holds the in-memory bucket list and its derived views.
package bucket

import (
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/google/uuid"
)

// Persister receives a full snapshot of the collection after every mutation.
// Implementations must not block and must not call back into the Store.
type Persister interface {
	Persist(snapshot []models.GoalItem)
}

type opKind int

const (
	opAdd opKind = iota
	opToggle
	opDelete
)

// journalEntry records a mutation made while the store was still loading,
// so it can be replayed on top of the hydrated collection.
type journalEntry struct {
	kind opKind
	item models.GoalItem
}

// Store owns the collection of goal items. All mutation goes through Add,
// Toggle and Delete; the zero value is not usable, use NewStore.
type Store struct {
	mu        sync.Mutex
	items     []models.GoalItem
	loading   bool
	journal   []journalEntry
	persister Persister

	onComplete func(models.GoalItem)
	now        func() time.Time
	newID      func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides uuid-based id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithItems seeds the store and marks it as already hydrated.
func WithItems(items []models.GoalItem) Option {
	return func(s *Store) {
		s.items = append([]models.GoalItem(nil), items...)
		s.loading = false
	}
}

// NewStore returns an empty store in the loading state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		items:   []models.GoalItem{},
		loading: true,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPersister installs the sink that receives snapshots after mutations.
func (s *Store) SetPersister(p Persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persister = p
}

// SetCompletionHandler registers the callback fired when Toggle completes an item.
func (s *Store) SetCompletionHandler(fn func(models.GoalItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

// Add creates a new active item from text and puts it first in the collection.
// It reports false, and changes nothing, when text is blank.
func (s *Store) Add(text string) (models.GoalItem, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.GoalItem{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.GoalItem{
		ID:        s.newID(),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	s.items = prepend(s.items, item)
	s.record(opAdd, item)
	s.persistLocked()
	return item, true
}

// Toggle flips the completion state of the item with the given id. Completing
// an item fires the completion handler. Unknown ids are ignored.
func (s *Store) Toggle(id string) (models.GoalItem, bool) {
	s.mu.Lock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.GoalItem{}, false
	}

	item := s.items[idx]
	if item.CompletedAt == nil {
		now := s.now().UTC()
		item.CompletedAt = &now
	} else {
		item.CompletedAt = nil
	}
	s.items[idx] = item
	s.record(opToggle, item)
	s.persistLocked()

	onComplete := s.onComplete
	s.mu.Unlock()

	if item.CompletedAt != nil && onComplete != nil {
		onComplete(item)
	}
	return item, true
}

// Delete removes the item with the given id. Unknown ids are ignored.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	s.record(opDelete, removed)
	s.persistLocked()
	return true
}

// Hydrate settles the loading state. With replace set, the collection is
// swapped for items and every mutation made while loading is replayed on top;
// otherwise the in-memory collection is kept. When mutations were made while
// loading, the settled collection is handed to the persister once more.
func (s *Store) Hydrate(items []models.GoalItem, replace bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loading {
		return
	}
	if replace {
		next := append([]models.GoalItem{}, items...)
		for _, entry := range s.journal {
			next = replay(next, entry)
		}
		s.items = next
	}
	pending := len(s.journal) > 0
	s.journal = nil
	s.loading = false
	if pending {
		s.persistLocked()
	}
}

// Loading reports whether hydration has not settled yet.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Items returns a copy of the collection in storage order.
func (s *Store) Items() []models.GoalItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get looks an item up by id.
func (s *Store) Get(id string) (models.GoalItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return models.GoalItem{}, false
	}
	return s.items[idx], true
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) record(kind opKind, item models.GoalItem) {
	if s.loading {
		s.journal = append(s.journal, journalEntry{kind: kind, item: item})
	}
}

func (s *Store) snapshotLocked() []models.GoalItem {
	return append([]models.GoalItem{}, s.items...)
}

// persistLocked runs with s.mu held so snapshots reach the persister in
// mutation order.
func (s *Store) persistLocked() {
	if s.persister != nil {
		s.persister.Persist(s.snapshotLocked())
	}
}

func replay(items []models.GoalItem, entry journalEntry) []models.GoalItem {
	idx := -1
	for i := range items {
		if items[i].ID == entry.item.ID {
			idx = i
			break
		}
	}

	switch entry.kind {
	case opAdd:
		if idx < 0 {
			return prepend(items, entry.item)
		}
	case opToggle:
		if idx >= 0 {
			items[idx].CompletedAt = entry.item.CompletedAt
		}
	case opDelete:
		if idx >= 0 {
			return append(items[:idx:idx], items[idx+1:]...)
		}
	}
	return items
}

func prepend(items []models.GoalItem, item models.GoalItem) []models.GoalItem {
	out := make([]models.GoalItem, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}
