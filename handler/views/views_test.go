package views

import (
	"testing"

	"lending/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveView(t *testing.T) {
	r := core.NewReserve("usdc", 0)
	r.TotalDeposited, r.TotalBorrowed = 1000, 500
	r.BorrowIndex.SetUint64(1_070_000_000_000)

	v, err := ReserveView(r)
	require.NoError(t, err)
	assert.Equal(t, "0.5", v.Utilization.String())
	assert.Equal(t, "0.07", v.BorrowAPR.String())
	assert.Equal(t, "1.07", v.BorrowIndex.String())
	assert.Equal(t, uint64(500), v.Liquidity)
	assert.True(t, v.BorrowAPY.GreaterThan(v.BorrowAPR))
}

func TestPositionView(t *testing.T) {
	usdc := core.NewReserve("usdc", 0)
	usdc.BorrowIndex.SetUint64(1_070_000_000_000)
	usdc.LendingIndex.SetUint64(1_100_000_000_000)

	p := core.NewPosition("alice", 0)
	require.NoError(t, p.AddCollateral("usdc", 1000, uint256.NewInt(1000), 0))
	require.NoError(t, p.AddCollateral("sol", 10, uint256.NewInt(10), 0))
	require.NoError(t, p.AddDebt("usdc", 1000, uint256.NewInt(935), 700))
	p.HealthFactor = 16000

	v, err := PositionView(p, map[string]*core.Reserve{"usdc": usdc})
	require.NoError(t, err)
	assert.Equal(t, uint64(1100), v.Collaterals[0].Amount)
	assert.Equal(t, uint64(10), v.Collaterals[1].Amount)
	assert.Equal(t, uint64(1001), v.Debts[0].Owed)
	assert.Equal(t, "1.6", v.HealthRatio.String())

	p.HealthFactor = core.HealthFactorMax
	v, err = PositionView(p, nil)
	require.NoError(t, err)
	assert.Nil(t, v.HealthRatio)
}
