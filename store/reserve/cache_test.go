package reserve

import (
	"context"
	"testing"

	"lending/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	reserves map[string]*core.Reserve
	finds    int
}

func (m *memoryStore) Save(ctx context.Context, r *core.Reserve) error {
	m.reserves[r.ID] = r.Clone()
	return nil
}

func (m *memoryStore) Find(ctx context.Context, id string) (*core.Reserve, error) {
	m.finds++
	r, ok := m.reserves[id]
	if !ok {
		return nil, core.ErrReserveNotFound
	}

	return r.Clone(), nil
}

func (m *memoryStore) All(ctx context.Context) ([]*core.Reserve, error) {
	var reserves []*core.Reserve
	for _, r := range m.reserves {
		reserves = append(reserves, r.Clone())
	}
	return reserves, nil
}

func (m *memoryStore) Update(ctx context.Context, tx *db.DB, r *core.Reserve) error {
	r.Version++
	m.reserves[r.ID] = r.Clone()
	return nil
}

func TestCacheReserveStore(t *testing.T) {
	ctx := context.Background()
	mem := &memoryStore{reserves: map[string]*core.Reserve{}}
	s := Cache(mem)

	require.NoError(t, s.Save(ctx, core.NewReserve("usdc", 0)))

	r, err := s.Find(ctx, "usdc")
	require.NoError(t, err)
	_, err = s.Find(ctx, "usdc")
	require.NoError(t, err)
	assert.Equal(t, 1, mem.finds)

	// callers mutate their own copy
	r.TotalDeposited = 100
	cached, _ := s.Find(ctx, "usdc")
	assert.Equal(t, uint64(0), cached.TotalDeposited)

	require.NoError(t, s.Update(ctx, nil, r))
	cached, _ = s.Find(ctx, "usdc")
	assert.Equal(t, uint64(100), cached.TotalDeposited)
	assert.Equal(t, int64(1), cached.Version)
	assert.Equal(t, 2, mem.finds)

	_, err = s.Find(ctx, "sol")
	assert.ErrorIs(t, err, core.ErrReserveNotFound)
}

func TestRowConversion(t *testing.T) {
	r := core.NewReserve("usdc", 42)
	r.BorrowIndex.SetUint64(1_070_000_000_000)
	r.TotalDeposited = 1000
	r.AccruedInterest = 70
	r.BorrowedScaled.SetUint64(935)
	r.LendingEnabled = true

	back, err := fromRow(toRow(r))
	require.NoError(t, err)
	assert.Equal(t, "935", back.BorrowedScaled.Dec())
	assert.Equal(t, uint64(70), back.AccruedInterest)
	assert.Equal(t, "1070000000000", back.BorrowIndex.Dec())
	assert.Equal(t, r.LendingIndex.Dec(), back.LendingIndex.Dec())
	assert.Equal(t, r.TotalDeposited, back.TotalDeposited)
	assert.True(t, back.LendingEnabled)
	assert.Equal(t, int64(42), back.LastUpdateTime)
}
