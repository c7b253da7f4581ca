package credentials

import (
	"context"
	"sync"
)

// MemoryStore — потокобезопасное хранилище в памяти процесса.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
}

// NewMemoryStore создаёт хранилище; p может быть пустой.
func NewMemoryStore(p Pair) *MemoryStore {
	return &MemoryStore{pair: p}
}

func (s *MemoryStore) Get(_ context.Context) (Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair.IsZero() {
		return Pair{}, ErrNotFound
	}

	return s.pair, nil
}

func (s *MemoryStore) Set(_ context.Context, p Pair) error {
	s.mu.Lock()
	s.pair = p
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.pair = Pair{}
	s.mu.Unlock()

	return nil
}

// MemorySessions — набор MemoryStore по идентификатору сессии.
// Записи живут, пока их не забудет владелец (Forget); без Redis это единственная
// граница роста, поэтому portal.Registry вызывает Forget при вытеснении и выходе.
type MemorySessions struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{stores: make(map[string]*MemoryStore)}
}

func (m *MemorySessions) ForSession(id string) Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stores[id]
	if !ok {
		st = NewMemoryStore(Pair{})
		m.stores[id] = st
	}

	return st
}

// Forget удаляет хранилище сессии.
func (m *MemorySessions) Forget(id string) {
	m.mu.Lock()
	delete(m.stores, id)
	m.mu.Unlock()
}

// Len — число сессий с хранилищем.
func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.stores)
}
