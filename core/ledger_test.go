package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	usdc, sol := NewReserve("usdc", 0), NewReserve("sol", 0)
	prices := &Prices{Quotes: PriceSnapshot{"usdc": {Price: 10000}}, At: 100}
	l := NewLedger(NewPosition("alice", 0), []*Reserve{usdc, sol}, prices, 130, 60)

	assert.Empty(t, l.Changed())

	r, err := l.Reserve("sol")
	require.NoError(t, err)
	r.TotalDeposited = 10
	assert.Equal(t, []*Reserve{sol}, l.Changed())

	_, err = l.Reserve("btc")
	assert.ErrorIs(t, err, ErrReserveNotFound)

	usdc.LoanToValue = 7500
	snapshot, err := l.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), snapshot["usdc"].Price)
	assert.Equal(t, uint64(7500), snapshot["usdc"].LoanToValue)
	// the loaded quotes stay as the feed wrote them
	assert.Equal(t, uint64(0), l.Prices.Quotes["usdc"].LoanToValue)

	l.Now = 161
	_, err = l.Snapshot()
	assert.ErrorIs(t, err, ErrStalePrice)

	l.Prices = nil
	_, err = l.Snapshot()
	assert.ErrorIs(t, err, ErrPriceMissing)
}
