package market

import (
	"context"
	"testing"

	"lending/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketStore(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Market{
		{ID: "sol-usdc", BaseReserve: "sol", QuoteReserve: "usdc", MaxLeverage: 50000},
		{ID: "btc-usdc", BaseReserve: "btc", QuoteReserve: "usdc", MaxLeverage: 100000},
	})

	m, err := s.Find(ctx, "sol-usdc")
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), m.MaxLeverage)

	m.MaxLeverage = 1
	m, _ = s.Find(ctx, "sol-usdc")
	assert.Equal(t, uint64(50000), m.MaxLeverage)

	_, err = s.Find(ctx, "eth-usdc")
	assert.ErrorIs(t, err, core.ErrMarketNotFound)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "btc-usdc", all[0].ID)
}
