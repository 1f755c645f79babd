package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hotelbot/models"
)

// StateBackend is the key-value layer under the StateStore.
// Load returns ErrStateNotFound for unknown users. Create stores the state only
// if none exists yet and reports whether it did.
type StateBackend interface {
	Load(ctx context.Context, userID string) (*models.ConversationState, error)
	Create(ctx context.Context, state *models.ConversationState) (bool, error)
	Save(ctx context.Context, state *models.ConversationState) error
	Delete(ctx context.Context, userID string) error
}

type userLock struct {
	sem  chan struct{}
	refs int
}

// StateStore owns every ConversationState. Callers serialise work on one user
// with Lock; different users never contend beyond the lock table itself.
type StateStore struct {
	backend StateBackend
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*userLock
}

func NewStateStore(backend StateBackend) *StateStore {
	return &StateStore{
		backend: backend,
		now:     time.Now,
		locks:   make(map[string]*userLock),
	}
}

// Lock waits for exclusive access to one user's state. The returned func
// releases it and must be called exactly once.
func (s *StateStore) Lock(ctx context.Context, userID string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{sem: make(chan struct{}, 1)}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		s.release(userID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			s.release(userID, l)
		})
	}, nil
}

func (s *StateStore) release(userID string, l *userLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, userID)
	}
}

// LoadOrCreate returns the user's state, inserting a fresh one on first contact.
func (s *StateStore) LoadOrCreate(ctx context.Context, userID string) (*models.ConversationState, error) {
	state, err := s.backend.Load(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrStateNotFound) {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}

	fresh := models.NewConversationState(userID, s.now())
	created, err := s.backend.Create(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("create conversation state: %w", err)
	}
	if created {
		return fresh, nil
	}
	// Lost an insert race; the winner's state is authoritative.
	state, err = s.backend.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}
	return state, nil
}

// Get returns the stored state or ErrStateNotFound.
func (s *StateStore) Get(ctx context.Context, userID string) (*models.ConversationState, error) {
	return s.backend.Load(ctx, userID)
}

func (s *StateStore) Save(ctx context.Context, state *models.ConversationState) error {
	state.UpdatedAt = s.now()
	if err := s.backend.Save(ctx, state); err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, userID string) error {
	return s.backend.Delete(ctx, userID)
}

type memoryEntry struct {
	state   *models.ConversationState
	touched time.Time
}

// MemoryBackend keeps states in process memory. It stores copies so callers
// can never mutate stored state in place.
type MemoryBackend struct {
	mu     sync.RWMutex
	states map[string]memoryEntry
	now    func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		states: make(map[string]memoryEntry),
		now:    time.Now,
	}
}

func (m *MemoryBackend) Load(_ context.Context, userID string) (*models.ConversationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.states[userID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return e.state.Clone(), nil
}

func (m *MemoryBackend) Create(_ context.Context, state *models.ConversationState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[state.UserID]; ok {
		return false, nil
	}
	m.states[state.UserID] = memoryEntry{state: state.Clone(), touched: m.now()}
	return true, nil
}

func (m *MemoryBackend) Save(_ context.Context, state *models.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.UserID] = memoryEntry{state: state.Clone(), touched: m.now()}
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}

// EvictIdle drops states not written since cutoff and returns how many went.
func (m *MemoryBackend) EvictIdle(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.states {
		if e.touched.Before(cutoff) {
			delete(m.states, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}
