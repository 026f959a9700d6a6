package session

import (
	"context"
	"sync"
)

// Store keeps per-conversation state. Get returns a fresh GENERAL state for
// unknown IDs; Save replaces the stored state atomically for that session.
// No state of one session is ever visible to another.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, state *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is the default in-memory store. State lives only for the
// process lifetime.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	m.mu.RLock()
	state, ok := m.states[id]
	m.mu.RUnlock()
	if !ok {
		return NewState(), nil
	}
	return state.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, state *State) error {
	clone := state.Clone()
	m.mu.Lock()
	m.states[id] = clone
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
	return nil
}

// KeyedMutex serializes turn processing per session ID so that concurrent
// turns for the same session cannot interleave cursor/record updates.
type KeyedMutex struct {
	locks sync.Map
}

// Lock acquires the mutex for id and returns its unlock function.
func (k *KeyedMutex) Lock(id string) func() {
	val, _ := k.locks.LoadOrStore(id, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
