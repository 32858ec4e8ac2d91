package compound

import (
	"testing"

	"lending/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleDebt(t *testing.T) {
	r := newReserve("usdc")
	p := core.NewPosition("alice", 0)
	require.NoError(t, p.AddDebt("usdc", 500_000, uint256.NewInt(500_000), 700))

	growth, err := SettleDebt(p, r)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), growth)

	require.NoError(t, Refresh(r, int64(core.SecondsPerYear)))
	growth, err = SettleDebt(p, r)
	require.NoError(t, err)
	assert.Equal(t, uint64(35_000), growth)
	assert.Equal(t, uint64(535_000), p.Debts[0].AmountPrincipal)
	assert.Equal(t, "500000", p.Debts[0].AmountScaled.Dec())

	// settling twice changes nothing
	growth, err = SettleDebt(p, r)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), growth)

	t.Run("no debt in the reserve", func(t *testing.T) {
		growth, err := SettleDebt(core.NewPosition("bob", 0), r)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), growth)
	})
}

func TestAccrue(t *testing.T) {
	usdc, sol := newReserve("usdc"), newReserve("sol")
	sol.LastUpdateTime = 100

	p := core.NewPosition("alice", 0)
	require.NoError(t, p.AddDebt("usdc", 500_000, uint256.NewInt(500_000), 700))

	reserves := map[string]*core.Reserve{"usdc": usdc, "sol": sol}
	err := Accrue(p, reserves, 50)
	assert.ErrorIs(t, err, core.ErrClockRegression)

	now := int64(core.SecondsPerYear)
	require.NoError(t, Accrue(p, reserves, now))
	assert.Equal(t, now, usdc.LastUpdateTime)
	assert.Equal(t, now, sol.LastUpdateTime)
	assert.Equal(t, uint64(535_000), p.Debts[0].AmountPrincipal)
}

func TestBookBorrowRepay(t *testing.T) {
	r := core.NewReserve("usdc", 0)
	r.TotalDeposited = 1000
	r.TotalLent = 100

	require.NoError(t, BookBorrow(r, 300, uint256.NewInt(300)))
	assert.Equal(t, uint64(300), r.TotalBorrowed)
	assert.Equal(t, "300", r.BorrowedScaled.Dec())

	BookRepay(r, 200, uint256.NewInt(200))
	assert.Equal(t, uint64(100), r.TotalBorrowed)
	assert.Equal(t, "100", r.BorrowedScaled.Dec())
	assert.Equal(t, uint64(0), r.TotalLent)

	// a rounded up entry may overshoot the totals
	BookRepay(r, 101, uint256.NewInt(101))
	assert.Equal(t, uint64(0), r.TotalBorrowed)
	assert.True(t, r.BorrowedScaled.IsZero())
}
