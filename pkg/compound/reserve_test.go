package compound

import (
	"testing"

	"lending/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReserve(id string) *core.Reserve {
	r := core.NewReserve(id, 0)
	r.TotalDeposited = 1_000_000
	r.TotalBorrowed = 500_000
	r.BorrowedScaled.SetUint64(500_000)
	return r
}

func TestCurRates(t *testing.T) {
	r := newReserve("usdc")

	rates, err := CurRates(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), rates.Utilization)
	assert.Equal(t, uint64(700), rates.Borrow)
	assert.Equal(t, uint64(350), rates.Supply)

	r.LendingEnabled = true
	r.AvailableForLending = 1000
	r.TotalLent = 500
	r.LendingInterestShare = 8000
	rates, err = CurRates(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(4000), rates.Supply)
}

func TestRefresh(t *testing.T) {
	t.Run("one year at 700 bps", func(t *testing.T) {
		r := newReserve("usdc")
		require.NoError(t, Refresh(r, int64(core.SecondsPerYear)))
		assert.Equal(t, "1070000000000", r.BorrowIndex.Dec())
		assert.Equal(t, "1035000000000", r.LendingIndex.Dec())
		assert.Equal(t, int64(core.SecondsPerYear), r.LastUpdateTime)

		// interest is booked into the pool
		assert.Equal(t, uint64(535_000), r.TotalBorrowed)
		assert.Equal(t, uint64(1_035_000), r.TotalDeposited)
		assert.Equal(t, uint64(35_000), r.AccruedInterest)
	})

	t.Run("ten second refreshes accrue", func(t *testing.T) {
		r := newReserve("usdc")
		for now := int64(10); now <= 86400; now += 10 {
			require.NoError(t, Refresh(r, now))
		}

		assert.True(t, r.BorrowIndex.Gt(uint256.NewInt(core.IndexBase)))
		// about 500,000 * 7% / 365
		assert.Greater(t, r.TotalBorrowed, uint64(500_090))
		assert.Less(t, r.TotalBorrowed, uint64(500_100))
		assert.Equal(t, r.TotalBorrowed-500_000, r.AccruedInterest)
		assert.Equal(t, 1_000_000+r.AccruedInterest, r.TotalDeposited)
	})

	t.Run("same timestamp is a no-op", func(t *testing.T) {
		r := newReserve("usdc")
		r.LastUpdateTime = 100
		require.NoError(t, Refresh(r, 100))
		assert.Equal(t, uint256.NewInt(core.IndexBase).Dec(), r.BorrowIndex.Dec())
	})

	t.Run("no deposits only moves the clock", func(t *testing.T) {
		r := core.NewReserve("usdc", 0)
		require.NoError(t, Refresh(r, 1000))
		assert.Equal(t, int64(1000), r.LastUpdateTime)
		assert.Equal(t, uint256.NewInt(core.IndexBase).Dec(), r.BorrowIndex.Dec())
	})

	t.Run("clock regression", func(t *testing.T) {
		r := newReserve("usdc")
		r.LastUpdateTime = 100
		err := Refresh(r, 99)
		assert.ErrorIs(t, err, core.ErrClockRegression)
		assert.Equal(t, int64(100), r.LastUpdateTime)
	})

	t.Run("indices never decrease", func(t *testing.T) {
		r := newReserve("usdc")
		prevBorrow, prevLending := r.BorrowIndex, r.LendingIndex
		now := int64(0)
		for i, step := range []int64{1, 0, 59, 3600, 0, 86400, 7, 31_536_000} {
			now += step
			// vary utilization between refreshes
			r.TotalBorrowed = uint64(i) * 120_000
			if r.TotalBorrowed > r.TotalDeposited {
				r.TotalBorrowed = r.TotalDeposited
			}
			r.BorrowedScaled.SetUint64(r.TotalBorrowed)

			require.NoError(t, Refresh(r, now))
			assert.False(t, r.BorrowIndex.Lt(&prevBorrow))
			assert.False(t, r.LendingIndex.Lt(&prevLending))
			prevBorrow, prevLending = r.BorrowIndex, r.LendingIndex
		}
	})
}

func TestRefreshPair(t *testing.T) {
	a, b := newReserve("b-reserve"), newReserve("a-reserve")
	require.NoError(t, RefreshPair(a, b, 3600))
	assert.Equal(t, a.LastUpdateTime, b.LastUpdateTime)
	assert.Equal(t, a.BorrowIndex.Dec(), b.BorrowIndex.Dec())

	b.LastUpdateTime = 7200
	err := RefreshPair(a, b, 5000)
	assert.ErrorIs(t, err, core.ErrClockRegression)
	assert.Equal(t, int64(3600), a.LastUpdateTime)
}

func TestLendingCapacity(t *testing.T) {
	r := newReserve("usdc")
	r.MaxLendingRatio = 5000
	r.AvailableForLending = 100_000

	v, err := LendingCapacity(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), v)

	r.AvailableForLending = 600_000
	v, err = LendingCapacity(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}

func TestScaled(t *testing.T) {
	r := core.NewReserve("usdc", 0)

	scaled, err := DepositToScaled(r, 1000)
	require.NoError(t, err)
	assert.Equal(t, "1000", scaled.Dec())

	r.TotalDeposited = 1000
	r.LendingIndex.SetUint64(1_070_000_000_000)
	r.BorrowIndex.SetUint64(1_070_000_000_000)

	scaled, err = DepositToScaled(r, 1070)
	require.NoError(t, err)
	assert.Equal(t, "1000", scaled.Dec())

	amount, err := ScaledToAmount(r, scaled)
	require.NoError(t, err)
	assert.Equal(t, uint64(1070), amount)

	// debt rounds against the borrower
	debt, err := DebtToScaled(r, 1000)
	require.NoError(t, err)
	assert.Equal(t, "935", debt.Dec())

	owed, err := ScaledToDebt(r, debt)
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), owed)

	// an emptied pool keeps its grown index, a fresh deposit earns nothing yet
	r.TotalDeposited = 0
	scaled, err = DepositToScaled(r, 1000)
	require.NoError(t, err)
	assert.Equal(t, "934", scaled.Dec())

	amount, err = ScaledToAmount(r, scaled)
	require.NoError(t, err)
	assert.LessOrEqual(t, amount, uint64(1000))
}
