package margin

import (
	"context"
	"testing"

	"lending/core"
	"lending/service/risk"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	snapshot = core.PriceSnapshot{
		"sol": {Price: 10000, LiquidationThreshold: 8000},
	}

	market = &core.Market{
		ID:                     "sol-usdc",
		BaseReserve:            "sol",
		QuoteReserve:           "usdc",
		MaxLeverage:            100000,
		OptimalLeverage:        30000,
		MaintenanceMarginRatio: 1000,
	}
)

func newPosition(t *testing.T) *core.Position {
	p := core.NewPosition("alice", 0)
	require.NoError(t, p.AddCollateral("sol", 1000, uint256.NewInt(1000), 0))
	return p
}

func open(t *testing.T, s core.IMarginService, p *core.Position, leverage uint64) *core.LeveragedPosition {
	l, err := s.Open(context.Background(), p, market, core.OpenRequest{
		Side:     core.SideLong,
		Size:     100,
		Price:    10000,
		Leverage: leverage,
		Now:      10,
	}, snapshot)
	require.NoError(t, err)
	return l
}

func TestLiquidationPrice(t *testing.T) {
	v, err := LiquidationPrice(core.SideLong, 100, 50000, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), v)

	v, err = LiquidationPrice(core.SideShort, 100, 50000, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), v)

	v, err = LiquidationPrice(core.SideLong, 100, 100000, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}

func TestPnL(t *testing.T) {
	for _, tt := range []struct {
		name   string
		side   core.Side
		exit   uint64
		amount uint64
		profit bool
	}{
		{"long up", core.SideLong, 110, 5000, true},
		{"long down", core.SideLong, 90, 5000, false},
		{"short down", core.SideShort, 90, 5000, true},
		{"short up", core.SideShort, 110, 5000, false},
		{"flat", core.SideLong, 100, 0, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			pnl, err := PnL(tt.side, 100, tt.exit, 100, 50000)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, pnl.Amount)
			assert.Equal(t, tt.profit, pnl.Profit)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s := New(risk.New())

	t.Run("opens and locks margin", func(t *testing.T) {
		p := newPosition(t)
		l := open(t, s, p, 50000)

		assert.Equal(t, uint64(1), l.ID)
		assert.Equal(t, uint64(1_000_000), l.NotionalValue)
		assert.Equal(t, uint64(200_000), l.MarginUsed)
		assert.Equal(t, uint64(5000), l.LiquidationPrice)
		assert.Equal(t, int64(10), l.OpenedAt)
		assert.Equal(t, uint64(200_000), p.LockedTradingMargin)
		assert.Equal(t, uint64(100000), p.HealthFactor)

		second := open(t, s, p, 10000)
		assert.Equal(t, uint64(2), second.ID)
		assert.Equal(t, uint64(1_200_000), p.LockedTradingMargin)
	})

	t.Run("leverage bounds", func(t *testing.T) {
		p := newPosition(t)
		_, err := s.Open(ctx, p, market, core.OpenRequest{Size: 1, Price: 1, Leverage: 9999}, snapshot)
		assert.ErrorIs(t, err, core.ErrLeverageTooLow)

		_, err = s.Open(ctx, p, market, core.OpenRequest{Size: 1, Price: 1, Leverage: 100001}, snapshot)
		assert.ErrorIs(t, err, core.ErrLeverageExceedsMaximum)
	})

	t.Run("optimal leverage by default", func(t *testing.T) {
		p := newPosition(t)
		l, err := s.Open(ctx, p, market, core.OpenRequest{Size: 100, Price: 10000}, snapshot)
		require.NoError(t, err)
		assert.Equal(t, market.OptimalLeverage, l.Leverage)
		assert.Equal(t, uint64(333_333), l.MarginUsed)
	})

	t.Run("maintenance margin gone at open", func(t *testing.T) {
		p := newPosition(t)
		// 1000 bps * 10x consumes the whole margin, no long liquidation price is left
		_, err := s.Open(ctx, p, market, core.OpenRequest{Size: 1, Price: 10000, Leverage: 100000}, snapshot)
		assert.ErrorIs(t, err, core.ErrLeverageExceedsMaximum)
		assert.Empty(t, p.Leveraged)

		l, err := s.Open(ctx, p, market, core.OpenRequest{Side: core.SideShort, Size: 1, Price: 10000, Leverage: 100000}, snapshot)
		require.NoError(t, err)
		assert.Equal(t, uint64(20000), l.LiquidationPrice)
	})

	t.Run("insufficient collateral", func(t *testing.T) {
		p := newPosition(t)
		_, err := s.Open(ctx, p, market, core.OpenRequest{Size: 10000, Price: 10000, Leverage: 10000}, snapshot)
		assert.ErrorIs(t, err, core.ErrInsufficientCollateral)
		assert.Empty(t, p.Leveraged)
	})

	t.Run("simulated health factor too low", func(t *testing.T) {
		p := newPosition(t)
		_, err := s.Open(ctx, p, market, core.OpenRequest{Size: 700, Price: 10000, Leverage: 100000}, snapshot)
		assert.ErrorIs(t, err, core.ErrHealthFactorTooLow)
		assert.Equal(t, uint64(0), p.LockedTradingMargin)
	})

	t.Run("capacity", func(t *testing.T) {
		p := newPosition(t)
		for i := 1; i <= core.MaxLeveragedPositions; i++ {
			p.Leveraged = append(p.Leveraged, core.LeveragedPosition{ID: uint64(i), Status: core.PositionStatusClosed})
		}

		_, err := s.Open(ctx, p, market, core.OpenRequest{Size: 1, Price: 10000, Leverage: 10000}, snapshot)
		assert.ErrorIs(t, err, core.ErrCapacityExceeded)
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := New(risk.New())
	p := newPosition(t)
	l := open(t, s, p, 50000)

	outcome, err := s.Close(ctx, p, l.ID, 11000, snapshot)
	require.NoError(t, err)
	assert.Equal(t, core.PositionStatusClosed, outcome.Status)
	assert.Equal(t, uint64(500_000), outcome.PnL.Amount)
	assert.True(t, outcome.PnL.Profit)
	assert.Equal(t, uint64(200_000), outcome.Released)
	assert.Empty(t, p.Leveraged)
	assert.Equal(t, uint64(0), p.LockedTradingMargin)
	assert.Equal(t, core.HealthFactorMax, p.HealthFactor)

	_, err = s.Close(ctx, p, l.ID, 11000, snapshot)
	assert.ErrorIs(t, err, core.ErrPositionNotFound)

	p.Leveraged = append(p.Leveraged, core.LeveragedPosition{ID: 7, Status: core.PositionStatusLiquidated})
	_, err = s.Close(ctx, p, 7, 11000, snapshot)
	assert.ErrorIs(t, err, core.ErrPositionClosed)
}

func TestLiquidate(t *testing.T) {
	ctx := context.Background()
	s := New(risk.New())
	p := newPosition(t)
	l := open(t, s, p, 10000)
	assert.Equal(t, uint64(9000), l.LiquidationPrice)

	_, err := s.Liquidate(ctx, p, l.ID, 9001, snapshot)
	assert.ErrorIs(t, err, core.ErrPositionNotLiquidatable)
	assert.Len(t, p.Leveraged, 1)

	outcome, err := s.Liquidate(ctx, p, l.ID, 9000, snapshot)
	require.NoError(t, err)
	assert.Equal(t, core.PositionStatusLiquidated, outcome.Status)
	assert.Equal(t, uint64(900_000), outcome.Remainder)
	assert.Equal(t, uint64(0), p.LockedTradingMargin)

	t.Run("loss beyond margin", func(t *testing.T) {
		p := newPosition(t)
		l := open(t, s, p, 50000)

		outcome, err := s.Liquidate(ctx, p, l.ID, 5000, snapshot)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), outcome.Remainder)
		assert.Equal(t, uint64(0), outcome.Fee)
	})

	t.Run("fee taken from the remainder", func(t *testing.T) {
		m := *market
		m.LiquidationFee = 100

		p := newPosition(t)
		l, err := s.Open(ctx, p, &m, core.OpenRequest{Size: 100, Price: 10000, Leverage: 10000}, snapshot)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), l.LiquidationFee)

		outcome, err := s.Liquidate(ctx, p, l.ID, 9000, snapshot)
		require.NoError(t, err)
		// 1% of the 900,000 left
		assert.Equal(t, uint64(9000), outcome.Fee)
		assert.Equal(t, uint64(891_000), outcome.Remainder)
	})

	t.Run("long without a liquidation price", func(t *testing.T) {
		p := newPosition(t)
		p.LockedTradingMargin = 100_000
		p.Leveraged = append(p.Leveraged, core.LeveragedPosition{
			ID:            1,
			Market:        "sol-usdc",
			Side:          core.SideLong,
			Size:          100,
			EntryPrice:    10000,
			Leverage:      100000,
			MarginUsed:    100_000,
			NotionalValue: 1_000_000,
			Status:        core.PositionStatusOpen,
		})

		outcomes, err := s.Monitor(ctx, p.Clone(), map[string]uint64{"sol-usdc": 10000}, snapshot)
		require.NoError(t, err)
		assert.Len(t, outcomes, 1)

		outcome, err := s.Liquidate(ctx, p, 1, 9999, snapshot)
		require.NoError(t, err)
		// 1 * 100 * 10x lost
		assert.Equal(t, uint64(99_000), outcome.Remainder)
		assert.Empty(t, p.Leveraged)
	})
}

func TestMonitor(t *testing.T) {
	ctx := context.Background()
	s := New(risk.New())
	p := newPosition(t)
	open(t, s, p, 50000)
	open(t, s, p, 10000)
	p.Leveraged = append(p.Leveraged, core.LeveragedPosition{ID: 3, Market: "btc-usdc", Status: core.PositionStatusOpen})

	outcomes, err := s.Monitor(ctx, p, map[string]uint64{"sol-usdc": 8500}, snapshot)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, uint64(2), outcomes[0].PositionID)

	open(t, s, p, 10000)
	outcomes, err = s.Monitor(ctx, p, map[string]uint64{"sol-usdc": 5000}, snapshot)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, uint64(4), outcomes[0].PositionID)
	assert.Equal(t, uint64(1), outcomes[1].PositionID)

	require.Len(t, p.Leveraged, 1)
	assert.Equal(t, uint64(3), p.Leveraged[0].ID)
	assert.Equal(t, uint64(0), p.LockedTradingMargin)
}

func TestApplyFunding(t *testing.T) {
	ctx := context.Background()
	s := New(risk.New())
	p := newPosition(t)
	open(t, s, p, 50000)
	p.Leveraged = append(p.Leveraged, core.LeveragedPosition{
		ID:            2,
		Market:        "sol-usdc",
		Side:          core.SideShort,
		NotionalValue: 1_000_000,
		Status:        core.PositionStatusOpen,
	})

	require.NoError(t, s.ApplyFunding(ctx, p, map[string]int64{"sol-usdc": 100}))
	assert.Equal(t, int64(100), p.Leveraged[0].FundingAccrued)
	assert.Equal(t, int64(-100), p.Leveraged[1].FundingAccrued)

	require.NoError(t, s.ApplyFunding(ctx, p, map[string]int64{"sol-usdc": -300}))
	assert.Equal(t, int64(-200), p.Leveraged[0].FundingAccrued)
	assert.Equal(t, int64(200), p.Leveraged[1].FundingAccrued)
}

func TestUnrealizedPnL(t *testing.T) {
	ctx := context.Background()
	s := New(risk.New())
	p := newPosition(t)
	open(t, s, p, 50000)
	open(t, s, p, 10000)

	pnl, err := s.UnrealizedPnL(ctx, p, map[string]uint64{"sol-usdc": 11000})
	require.NoError(t, err)
	assert.Equal(t, core.PnL{Amount: 600_000, Profit: true}, pnl)

	pnl, err = s.UnrealizedPnL(ctx, p, map[string]uint64{"sol-usdc": 9500})
	require.NoError(t, err)
	assert.Equal(t, core.PnL{Amount: 300_000, Profit: false}, pnl)

	pnl, err = s.UnrealizedPnL(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, core.PnL{}, pnl)
}
