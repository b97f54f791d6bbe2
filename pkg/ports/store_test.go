package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore is a map-backed TutorialStore without copying or ordering.
type MockStore struct {
	data  map[string]*domain.Tutorial
	saves int
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.Tutorial)}
}

func (m *MockStore) Save(ctx context.Context, t *domain.Tutorial) error {
	m.saves++
	m.data[t.ID] = t
	return nil
}

func (m *MockStore) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	t, ok := m.data[id]
	if !ok {
		return nil, domain.NotFoundError("tutorial", id)
	}
	return t, nil
}

func (m *MockStore) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	return nil, nil
}

func (m *MockStore) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	return nil, domain.NotFoundError("tutorial for record", recordID)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	delete(m.data, id)
	return nil
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cursor-agent-mode", "cursor-agent-mode"},
		{"snake_case_ID9", "snake_case_ID9"},
		{"../../etc/passwd", "etcpasswd"},
		{"has space.json", "hasspacejson"},
		{"ünïcode-ok", "ncode-ok"},
	}
	for _, tt := range tests {
		got, err := ports.SanitizeID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ports.SanitizeID("../")
	assert.ErrorIs(t, err, domain.ErrShape)
}

func TestUpdate_RequiresExisting(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	tut := ports.ContractTutorial("update-me", "rec1")

	err := ports.Update(ctx, store, tut)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, store.saves)

	require.NoError(t, store.Save(ctx, tut))
	require.NoError(t, ports.Update(ctx, store, tut))
	assert.Equal(t, 2, store.saves)
}

func TestGeneratorFunc(t *testing.T) {
	gen := ports.GeneratorFunc(func(ctx context.Context, system, user string) (string, error) {
		return system + "|" + user, nil
	})
	out, err := gen.Generate(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "sys|usr", out)
}
