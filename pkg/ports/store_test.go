package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// MockSessionStore is an in-memory implementation of SessionStore for testing purposes.
type MockSessionStore struct {
	data map[string]*domain.SessionContext
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		data: make(map[string]*domain.SessionContext),
	}
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.SessionContext) error {
	m.data[session.SessionID] = session.Clone()
	return nil
}

func (m *MockSessionStore) Load(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	session, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockSessionStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MockStateRepository keeps the last saved State.
type MockStateRepository struct {
	state *domain.State
}

func (m *MockStateRepository) LoadState(ctx context.Context) (domain.State, error) {
	if m.state == nil {
		return domain.State{}, domain.ErrStateNotFound
	}
	return *m.state, nil
}

func (m *MockStateRepository) SaveState(ctx context.Context, state domain.State) error {
	m.state = &state
	return nil
}

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, NewMockSessionStore())
}

func TestStateRepository_Contract(t *testing.T) {
	ports.RunStateRepositoryContract(t, &MockStateRepository{})
}
