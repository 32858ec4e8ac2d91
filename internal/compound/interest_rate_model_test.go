package compound

import (
	"math"
	"testing"

	"lending/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtilizationRate(t *testing.T) {
	for _, tt := range []struct {
		borrowed, deposited, want uint64
	}{
		{100, 0, 0},
		{500_000, 1_000_000, 5000},
		{1_000_000, 1_000_000, 10000},
	} {
		v, err := UtilizationRate(tt.borrowed, tt.deposited)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v)
	}

	_, err := UtilizationRate(math.MaxUint64, 1)
	assert.ErrorIs(t, err, core.ErrMathOverflow)
}

func TestBorrowRate(t *testing.T) {
	for _, tt := range []struct {
		name        string
		utilization uint64
		optimal     uint64
		want        uint64
	}{
		{"below optimal", 5000, 8000, 700},
		{"at optimal", 8000, 8000, 1000},
		{"above optimal", 9000, 8000, 2500},
		{"full", 10000, 8000, 4000},
		{"zero optimal", 5000, 0, 200 + 800 + 1500},
		{"full optimal", 10000, 10000, 1000},
		{"idle", 0, 8000, 200},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := BorrowRate(tt.utilization, tt.optimal, core.DefaultBaseRate, core.DefaultSlope1, core.DefaultSlope2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate)
		})
	}

	_, err := BorrowRate(5000, 10001, core.DefaultBaseRate, core.DefaultSlope1, core.DefaultSlope2)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestSupplyRate(t *testing.T) {
	rate, err := SupplyRate(700, 5000, 1000)
	require.NoError(t, err)
	// 700 * 5000 / 10000 = 350, minus 10%
	assert.Equal(t, uint64(315), rate)

	rate, err = SupplyRate(700, 5000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(350), rate)
}

func TestLendingSupplyRate(t *testing.T) {
	for _, tt := range []struct {
		name                   string
		lent, available, share uint64
		want                   uint64
	}{
		{"nothing available", 100, 0, 5000, 0},
		{"half lent", 500, 1000, 5000, 2500},
		{"utilization capped at 100%", 3000, 1000, 5000, 5000},
	} {
		t.Run(tt.name, func(t *testing.T) {
			v, err := LendingSupplyRate(tt.lent, tt.available, tt.share)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	_, err := LendingSupplyRate(math.MaxUint64, 1, 5000)
	assert.ErrorIs(t, err, core.ErrMathOverflow)
}

func TestCompoundIndex(t *testing.T) {
	base := uint256.NewInt(core.IndexBase)

	next, err := CompoundIndex(base, 700, core.SecondsPerYear)
	require.NoError(t, err)
	assert.Equal(t, "1070000000000", next.Dec())

	same, err := CompoundIndex(base, 700, 0)
	require.NoError(t, err)
	assert.Equal(t, base.Dec(), same.Dec())

	// growth below one bps still reaches the index
	tiny, err := CompoundIndex(base, 1, 60)
	require.NoError(t, err)
	assert.Equal(t, "1000000000190", tiny.Dec())

	// a year of ten second steps compounds slightly above the simple rate
	index := base.Clone()
	for i := uint64(0); i < core.SecondsPerYear/10; i++ {
		index, err = CompoundIndex(index, 700, 10)
		require.NoError(t, err)
	}

	assert.True(t, index.Gt(uint256.NewInt(1_072_000_000_000)), index.Dec())
	assert.True(t, index.Lt(uint256.NewInt(1_073_000_000_000)), index.Dec())
}

func TestElapsed(t *testing.T) {
	v, err := Elapsed(100, 160)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), v)

	_, err = Elapsed(160, 100)
	assert.ErrorIs(t, err, core.ErrClockRegression)
}

func TestAPY(t *testing.T) {
	assert.Equal(t, "0.07", AnnualRate(700).String())
	assert.True(t, APY(700, 365).GreaterThan(AnnualRate(700)))
	assert.Equal(t, "1.07", IndexRatio(uint256.NewInt(1_070_000_000_000)).String())
}
