// Package optimistic implements the apply/commit/rollback wrapper used around
// every approval action: the local collection is mutated before the network
// call, and the captured pre-image is restored if the call fails. The UI never
// shows a persisted-looking state the server rejected.
package optimistic

import (
	"sync"
)

// Store holds a page's local copy of one collection, keyed by a caller
// supplied id function. All mutations go through optimistic handles.
type Store[T any] struct {
	mu    sync.Mutex
	items []T
	id    func(T) string
}

// NewStore wraps a fetched collection.
func NewStore[T any](id func(T) string, items []T) *Store[T] {
	s := &Store[T]{id: id}
	s.Replace(items)
	return s
}

// Replace swaps in a freshly fetched collection.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]T, len(items))
	copy(s.items, items)
}

// Items returns a copy of the current collection.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the current collection size.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get looks up an item by id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if s.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Pending is an applied-but-unconfirmed mutation holding the captured
// pre-image. Exactly one of Commit or Rollback must be called.
type Pending[T any] struct {
	store    *Store[T]
	preImage T
	index    int
	removed  bool
	settled  bool
}

// Remove optimistically removes an item. The second return is false when the
// id is not present, which also makes a double-submission of the same action
// a natural no-op: once removed, the item cannot be acted on again.
func (s *Store[T]) Remove(id string) (*Pending[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if s.id(item) == id {
			p := &Pending[T]{store: s, preImage: item, index: i, removed: true}
			s.items = append(s.items[:i], s.items[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// Update optimistically replaces an item with mutate(item), capturing the
// pre-image.
func (s *Store[T]) Update(id string, mutate func(T) T) (*Pending[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if s.id(item) == id {
			p := &Pending[T]{store: s, preImage: item, index: i}
			s.items[i] = mutate(item)
			return p, true
		}
	}
	return nil, false
}

// Commit finalizes the mutation; the pre-image is discarded.
func (p *Pending[T]) Commit() {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.settled = true
}

// Rollback restores the captured pre-image so the collection equals its
// pre-action state. Safe to call at most once; a settled handle is inert.
func (p *Pending[T]) Rollback() {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	if p.settled {
		return
	}
	p.settled = true

	if p.removed {
		// Reinsert at the original position when possible so list order
		// survives the round trip.
		idx := p.index
		if idx > len(p.store.items) {
			idx = len(p.store.items)
		}
		p.store.items = append(p.store.items[:idx], append([]T{p.preImage}, p.store.items[idx:]...)...)
		return
	}

	for i, item := range p.store.items {
		if p.store.id(item) == p.store.id(p.preImage) {
			p.store.items[i] = p.preImage
			return
		}
	}
	// Item disappeared under us (e.g. replaced by a refresh); reinserting the
	// pre-image would resurrect stale data, so leave the collection as is.
}
