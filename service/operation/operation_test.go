package operation

import (
	"context"
	"testing"

	"lending/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTx struct{}

func (memoryTx) Tx(fn func(tx *db.DB) error) error {
	return fn(nil)
}

type reserveStore struct {
	reserves map[string]*core.Reserve
	updates  int
}

func (s *reserveStore) Save(ctx context.Context, r *core.Reserve) error {
	s.reserves[r.ID] = r.Clone()
	return nil
}

func (s *reserveStore) Find(ctx context.Context, id string) (*core.Reserve, error) {
	r, ok := s.reserves[id]
	if !ok {
		return nil, core.ErrReserveNotFound
	}
	return r.Clone(), nil
}

func (s *reserveStore) All(ctx context.Context) ([]*core.Reserve, error) {
	return nil, nil
}

func (s *reserveStore) Update(ctx context.Context, tx *db.DB, r *core.Reserve) error {
	s.updates++
	r.Version++
	s.reserves[r.ID] = r.Clone()
	return nil
}

type positionStore struct {
	positions map[string]*core.Position
}

func (s *positionStore) Save(ctx context.Context, p *core.Position) error {
	s.positions[p.Owner] = p.Clone()
	return nil
}

func (s *positionStore) Find(ctx context.Context, owner string) (*core.Position, error) {
	if p, ok := s.positions[owner]; ok {
		return p.Clone(), nil
	}
	return core.NewPosition(owner, 0), nil
}

func (s *positionStore) Owners(ctx context.Context, from string, limit int) ([]string, error) {
	return nil, nil
}

func (s *positionStore) Update(ctx context.Context, tx *db.DB, p *core.Position) error {
	p.Version++
	s.positions[p.Owner] = p.Clone()
	return nil
}

type priceStore struct{}

func (priceStore) Save(ctx context.Context, reserveID string, info core.PriceInfo, at int64) error {
	return nil
}

func (priceStore) Snapshot(ctx context.Context) (*core.Prices, error) {
	return &core.Prices{Quotes: core.PriceSnapshot{"usdc": {Price: 10000, LiquidationThreshold: 8000}}, At: 100}, nil
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	reserves := &reserveStore{reserves: map[string]*core.Reserve{
		"usdc": core.NewReserve("usdc", 0),
		"sol":  core.NewReserve("sol", 0),
	}}
	positions := &positionStore{positions: map[string]*core.Position{}}

	s := New(memoryTx{}, reserves, positions, priceStore{}, core.App{PriceMaxAge: 60}).(*service)
	s.now = func() int64 { return 120 }

	err := s.Execute(ctx, "alice", []string{"usdc"}, func(ctx context.Context, l *core.Ledger) error {
		r, err := l.Reserve("usdc")
		require.NoError(t, err)
		r.TotalDeposited = 100
		return l.Position.AddCollateral("usdc", 100, uint256.NewInt(100), l.Now)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, reserves.updates)
	assert.Equal(t, uint64(100), reserves.reserves["usdc"].TotalDeposited)
	assert.Equal(t, int64(1), positions.positions["alice"].Version)

	// the collateral reserve is loaded without being asked for
	l, err := s.Load(ctx, "alice", "sol")
	require.NoError(t, err)
	assert.Len(t, l.Reserves, 2)
	assert.Equal(t, int64(120), l.Now)

	err = s.Execute(ctx, "alice", nil, func(ctx context.Context, l *core.Ledger) error {
		l.Reserves["usdc"].TotalDeposited = 0
		return core.ErrInsufficientLiquidity
	})
	assert.ErrorIs(t, err, core.ErrInsufficientLiquidity)
	assert.Equal(t, uint64(100), reserves.reserves["usdc"].TotalDeposited)
	assert.Equal(t, 1, reserves.updates)

	err = s.Execute(ctx, "bob", []string{"btc"}, func(ctx context.Context, l *core.Ledger) error {
		return nil
	})
	assert.ErrorIs(t, err, core.ErrReserveNotFound)
}

func TestLoadAccruesDebt(t *testing.T) {
	ctx := context.Background()

	usdc := core.NewReserve("usdc", 0)
	usdc.TotalDeposited = 3_000_000
	usdc.TotalBorrowed = 1_500_000
	usdc.BorrowedScaled.SetUint64(1_500_000)
	reserves := &reserveStore{reserves: map[string]*core.Reserve{"usdc": usdc}}

	alice := core.NewPosition("alice", 0)
	require.NoError(t, alice.AddDebt("usdc", 1_500_000, uint256.NewInt(1_500_000), 700))
	positions := &positionStore{positions: map[string]*core.Position{"alice": alice}}

	s := New(memoryTx{}, reserves, positions, priceStore{}, core.App{}).(*service)
	s.now = func() int64 { return int64(core.SecondsPerYear) }

	l, err := s.Load(ctx, "alice")
	require.NoError(t, err)

	// 700 bps for one year
	assert.Equal(t, uint64(1_605_000), l.Position.Debts[0].AmountPrincipal)
	assert.Equal(t, uint64(1_605_000), l.Reserves["usdc"].TotalBorrowed)
	assert.Equal(t, uint64(3_105_000), l.Reserves["usdc"].TotalDeposited)
	assert.Equal(t, uint64(105_000), l.Reserves["usdc"].AccruedInterest)
	assert.Len(t, l.Changed(), 1)

	// nothing is written until commit
	assert.Equal(t, uint64(1_500_000), reserves.reserves["usdc"].TotalBorrowed)
}
