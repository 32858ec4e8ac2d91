package margin

import (
	"context"
	"math"

	"lending/core"
	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

const (
	// MinLeverageHealthFactor simulated health factor required to open, 1.2x
	MinLeverageHealthFactor uint64 = 12000
	// FundingRateBase funding rates are expressed in millionths
	FundingRateBase uint64 = 1_000_000
)

type service struct {
	risk core.IRiskService
}

// New new margin service
func New(risk core.IRiskService) core.IMarginService {
	return &service{risk: risk}
}

// LiquidationPrice price at which the maintenance margin is consumed
//
//	long:  entry * (10000 - ratio*leverage/10000) / 10000, 0 when the impact reaches 100%
//	short: entry * (10000 + ratio*leverage/10000) / 10000
func LiquidationPrice(side core.Side, entry, leverage, ratio uint64) (uint64, error) {
	impact, err := number.MulDiv(ratio, leverage, core.BasisPoints)
	if err != nil {
		return 0, err
	}

	if side == core.SideLong {
		if impact >= core.BasisPoints {
			return 0, nil
		}

		return number.MulDiv(entry, core.BasisPoints-impact, core.BasisPoints)
	}

	factor, err := number.Add(core.BasisPoints, impact)
	if err != nil {
		return 0, err
	}

	return number.MulDiv(entry, factor, core.BasisPoints)
}

// PnL |exit - entry| * size * leverage / 10000, profit when the price moved with the side
func PnL(side core.Side, entry, exit, size, leverage uint64) (core.PnL, error) {
	var diff uint64
	var profit bool

	switch {
	case exit > entry:
		diff, profit = exit-entry, side == core.SideLong
	case exit < entry:
		diff, profit = entry-exit, side == core.SideShort
	}

	raw, err := number.Mul(diff, size)
	if err != nil {
		return core.PnL{}, err
	}

	amount, err := number.MulDiv(raw, leverage, core.BasisPoints)
	if err != nil {
		return core.PnL{}, err
	}

	return core.PnL{Amount: amount, Profit: profit && amount > 0}, nil
}

// crossed a long without a liquidation price has no maintenance margin left at any price
func crossed(l *core.LeveragedPosition, price uint64) bool {
	if l.Side == core.SideLong {
		return l.LiquidationPrice == 0 || price <= l.LiquidationPrice
	}

	return price >= l.LiquidationPrice
}

func nextID(p *core.Position) (uint64, error) {
	var id uint64
	for _, l := range p.Leveraged {
		if l.ID > id {
			id = l.ID
		}
	}

	return number.Add(id, 1)
}

func (s *service) Open(ctx context.Context, p *core.Position, market *core.Market, req core.OpenRequest, snapshot core.PriceSnapshot) (*core.LeveragedPosition, error) {
	log := logger.FromContext(ctx).WithField("service", "margin")

	if req.Leverage == 0 {
		req.Leverage = market.OptimalLeverage
	}

	if req.Leverage < core.BasisPoints {
		return nil, core.ErrLeverageTooLow
	}

	if req.Leverage > market.MaxLeverage {
		return nil, core.ErrLeverageExceedsMaximum
	}

	if req.Size == 0 || req.Price == 0 {
		return nil, core.ErrInvalidAmount
	}

	notional, err := number.Mul(req.Size, req.Price)
	if err != nil {
		return nil, err
	}

	required, err := number.MulDiv(notional, core.BasisPoints, req.Leverage)
	if err != nil {
		return nil, err
	}

	available, err := s.risk.AvailableCollateral(ctx, p, snapshot)
	if err != nil {
		return nil, err
	}

	if available < required {
		return nil, core.ErrInsufficientCollateral
	}

	simulated, err := s.simulateHealthFactor(ctx, p, snapshot, notional, required)
	if err != nil {
		return nil, err
	}

	if simulated < MinLeverageHealthFactor {
		return nil, core.ErrHealthFactorTooLow
	}

	if len(p.Leveraged) >= core.MaxLeveragedPositions {
		return nil, core.ErrCapacityExceeded
	}

	id, err := nextID(p)
	if err != nil {
		return nil, err
	}

	liquidationPrice, err := LiquidationPrice(req.Side, req.Price, req.Leverage, market.MaintenanceMarginRatio)
	if err != nil {
		return nil, err
	}

	// the maintenance margin would be gone at open
	if req.Side == core.SideLong && liquidationPrice == 0 {
		return nil, core.ErrLeverageExceedsMaximum
	}

	locked, err := number.Add(p.LockedTradingMargin, required)
	if err != nil {
		return nil, err
	}

	next := p.Clone()
	next.Leveraged = append(next.Leveraged, core.LeveragedPosition{
		ID:               id,
		Market:           market.ID,
		Side:             req.Side,
		Size:             req.Size,
		EntryPrice:       req.Price,
		Leverage:         req.Leverage,
		MarginUsed:       required,
		NotionalValue:    notional,
		LiquidationPrice: liquidationPrice,
		LiquidationFee:   market.LiquidationFee,
		Status:           core.PositionStatusOpen,
		OpenedAt:         req.Now,
		ClientID:         req.ClientID,
	})
	next.LockedTradingMargin = locked
	next.LastUpdated = req.Now

	if _, err := s.risk.HealthFactor(ctx, next, snapshot); err != nil {
		return nil, err
	}

	*p = *next
	opened := p.Leveraged[len(p.Leveraged)-1]

	log.Infof("open %s #%d %s %s: size %d @ %d, margin %d, liq %d", p.Owner, id, market.ID, req.Side, req.Size, req.Price, required, liquidationPrice)
	return &opened, nil
}

// simulateHealthFactor health factor with the margin taken out of collateral and the notional added to debt
func (s *service) simulateHealthFactor(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot, notional, margin uint64) (uint64, error) {
	v, err := s.risk.Valuation(ctx, p, snapshot)
	if err != nil {
		return 0, err
	}

	weighted := number.SubFloor(v.WeightedCollateral, margin)

	debt, err := number.Add(v.DebtValue, v.LeveragedExposure)
	if err != nil {
		return 0, err
	}

	if debt, err = number.Add(debt, notional); err != nil {
		return 0, err
	}

	if debt == 0 {
		return core.HealthFactorMax, nil
	}

	hf, err := number.WideMulDiv(number.Wide(weighted), number.Wide(core.BasisPoints), number.Wide(debt))
	if err != nil {
		return 0, err
	}

	if !hf.IsUint64() {
		return core.HealthFactorMax, nil
	}

	return hf.Uint64(), nil
}

// settle remove the position and release its margin on the clone
func settle(next *core.Position, idx int) (uint64, error) {
	l := next.Leveraged[idx]
	locked, err := number.Sub(next.LockedTradingMargin, l.MarginUsed)
	if err != nil {
		return 0, core.ErrInvariantViolation
	}

	next.LockedTradingMargin = locked
	next.Leveraged = append(next.Leveraged[:idx], next.Leveraged[idx+1:]...)
	return l.MarginUsed, nil
}

func find(p *core.Position, id uint64) (int, error) {
	idx := p.LeveragedByID(id)
	if idx < 0 {
		return -1, core.ErrPositionNotFound
	}

	if p.Leveraged[idx].Status != core.PositionStatusOpen {
		return -1, core.ErrPositionClosed
	}

	return idx, nil
}

func (s *service) Close(ctx context.Context, p *core.Position, id, exitPrice uint64, snapshot core.PriceSnapshot) (*core.MarginOutcome, error) {
	idx, err := find(p, id)
	if err != nil {
		return nil, err
	}

	l := p.Leveraged[idx]
	pnl, err := PnL(l.Side, l.EntryPrice, exitPrice, l.Size, l.Leverage)
	if err != nil {
		return nil, err
	}

	next := p.Clone()
	released, err := settle(next, idx)
	if err != nil {
		return nil, err
	}

	if _, err := s.risk.HealthFactor(ctx, next, snapshot); err != nil {
		return nil, err
	}

	*p = *next
	logger.FromContext(ctx).WithField("service", "margin").Infof("close %s #%d @ %d, pnl %d profit %v", p.Owner, id, exitPrice, pnl.Amount, pnl.Profit)

	return &core.MarginOutcome{
		PositionID: id,
		Market:     l.Market,
		Status:     core.PositionStatusClosed,
		PnL:        pnl,
		Released:   released,
	}, nil
}

func (s *service) Liquidate(ctx context.Context, p *core.Position, id, price uint64, snapshot core.PriceSnapshot) (*core.MarginOutcome, error) {
	next := p.Clone()
	outcome, err := liquidate(next, id, price)
	if err != nil {
		return nil, err
	}

	if _, err := s.risk.HealthFactor(ctx, next, snapshot); err != nil {
		return nil, err
	}

	*p = *next
	logger.FromContext(ctx).WithField("service", "margin").Infof("liquidate %s #%d @ %d, remainder %d, fee %d", p.Owner, id, price, outcome.Remainder, outcome.Fee)
	return outcome, nil
}

func liquidate(next *core.Position, id, price uint64) (*core.MarginOutcome, error) {
	idx, err := find(next, id)
	if err != nil {
		return nil, err
	}

	l := next.Leveraged[idx]
	if !crossed(&l, price) {
		return nil, core.ErrPositionNotLiquidatable
	}

	var pnl core.PnL
	var remainder, fee uint64
	if price > 0 {
		if pnl, err = PnL(l.Side, l.EntryPrice, price, l.Size, l.Leverage); err != nil {
			return nil, err
		}

		remainder = l.MarginUsed
		if !pnl.Profit {
			remainder = number.SubFloor(l.MarginUsed, pnl.Amount)
		}

		// fee = remainder * liquidation_fee / 10000
		if fee, err = number.MulDiv(remainder, l.LiquidationFee, core.BasisPoints); err != nil {
			return nil, err
		}

		remainder = number.SubFloor(remainder, fee)
	}

	released, err := settle(next, idx)
	if err != nil {
		return nil, err
	}

	return &core.MarginOutcome{
		PositionID: id,
		Market:     l.Market,
		Status:     core.PositionStatusLiquidated,
		PnL:        pnl,
		Released:   released,
		Remainder:  remainder,
		Fee:        fee,
	}, nil
}

// Monitor flags crossed positions and liquidates them in reverse discovery order.
// Either every flagged position is liquidated or none is.
func (s *service) Monitor(ctx context.Context, p *core.Position, currentPrices map[string]uint64, snapshot core.PriceSnapshot) ([]*core.MarginOutcome, error) {
	type flagged struct {
		id    uint64
		price uint64
	}

	var targets []flagged
	for _, l := range p.Leveraged {
		if l.Status != core.PositionStatusOpen {
			continue
		}

		price, ok := currentPrices[l.Market]
		if !ok {
			continue
		}

		if crossed(&l, price) {
			targets = append(targets, flagged{id: l.ID, price: price})
		}
	}

	if len(targets) == 0 {
		return nil, nil
	}

	next := p.Clone()
	outcomes := make([]*core.MarginOutcome, 0, len(targets))
	for i := len(targets) - 1; i >= 0; i-- {
		outcome, err := liquidate(next, targets[i].id, targets[i].price)
		if err != nil {
			return nil, err
		}

		outcomes = append(outcomes, outcome)
	}

	if _, err := s.risk.HealthFactor(ctx, next, snapshot); err != nil {
		return nil, err
	}

	*p = *next
	logger.FromContext(ctx).WithField("service", "margin").Infof("monitor %s: %d positions liquidated", p.Owner, len(outcomes))
	return outcomes, nil
}

// ApplyFunding accrue notional * rate / 1_000_000 into FundingAccrued, negated for shorts
func (s *service) ApplyFunding(ctx context.Context, p *core.Position, rates map[string]int64) error {
	next := p.Clone()
	for idx := range next.Leveraged {
		l := &next.Leveraged[idx]
		if l.Status != core.PositionStatusOpen {
			continue
		}

		rate, ok := rates[l.Market]
		if !ok || rate == 0 {
			continue
		}

		abs := uint64(rate)
		if rate < 0 {
			abs = uint64(-(rate + 1)) + 1
		}

		amount, err := number.MulDiv(l.NotionalValue, abs, FundingRateBase)
		if err != nil {
			return err
		}

		if amount > math.MaxInt64 {
			return core.ErrMathOverflow
		}

		signed := int64(amount)
		if (rate < 0) != (l.Side == core.SideShort) {
			signed = -signed
		}

		accrued, err := addInt64(l.FundingAccrued, signed)
		if err != nil {
			return err
		}

		l.FundingAccrued = accrued
	}

	*p = *next
	return nil
}

func addInt64(a, b int64) (int64, error) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, core.ErrMathOverflow
	}

	return c, nil
}

// UnrealizedPnL net pnl of open positions at the current prices, unpriced markets are skipped
func (s *service) UnrealizedPnL(ctx context.Context, p *core.Position, currentPrices map[string]uint64) (core.PnL, error) {
	var gains, losses uint256.Int
	for _, l := range p.OpenLeveraged() {
		price, ok := currentPrices[l.Market]
		if !ok {
			continue
		}

		pnl, err := PnL(l.Side, l.EntryPrice, price, l.Size, l.Leverage)
		if err != nil {
			return core.PnL{}, err
		}

		sum := &losses
		if pnl.Profit {
			sum = &gains
		}

		if _, overflow := sum.AddOverflow(sum, number.Wide(pnl.Amount)); overflow {
			return core.PnL{}, core.ErrMathOverflow
		}
	}

	if gains.Lt(&losses) {
		amount, err := number.Narrow(new(uint256.Int).Sub(&losses, &gains))
		return core.PnL{Amount: amount, Profit: false}, err
	}

	amount, err := number.Narrow(new(uint256.Int).Sub(&gains, &losses))
	return core.PnL{Amount: amount, Profit: amount > 0}, err
}
