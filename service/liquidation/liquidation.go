package liquidation

import (
	"context"
	"fmt"

	"lending/core"
	"lending/pkg/compound"
	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// CloseFactor max share of the debt value repaid in one liquidation, bps
const CloseFactor uint64 = 5000

type service struct {
	risk core.IRiskService
}

// New new liquidation service
func New(risk core.IRiskService) core.ILiquidationService {
	return &service{risk: risk}
}

// IsLiquidatable health factor strictly below break-even after a fresh recompute
func (s *service) IsLiquidatable(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot) (bool, error) {
	hf, err := s.risk.HealthFactor(ctx, p, snapshot)
	if err != nil {
		return false, err
	}

	return hf < core.MinHealthFactor, nil
}

// MaxLiquidationValue debt_value * CloseFactor / 10000
func (s *service) MaxLiquidationValue(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot) (uint64, error) {
	v, err := s.risk.Valuation(ctx, p, snapshot)
	if err != nil {
		return 0, err
	}

	return number.MulDiv(v.DebtValue, CloseFactor, core.BasisPoints)
}

// CalculateSeizedCollateral a * debt_price * (10000 + bonus) / 10000 / coll_price
func CalculateSeizedCollateral(amount, debtPrice, collPrice, bonus uint64) (uint64, error) {
	if collPrice == 0 {
		return 0, core.ErrDivisionByZero
	}

	value, overflow := new(uint256.Int).MulOverflow(number.Wide(amount), number.Wide(debtPrice))
	if overflow {
		return 0, core.ErrMathOverflow
	}

	factor, err := number.Add(core.BasisPoints, bonus)
	if err != nil {
		return 0, err
	}

	withBonus, err := number.WideMulDiv(value, number.Wide(factor), number.Wide(core.BasisPoints))
	if err != nil {
		return 0, err
	}

	return number.Narrow(withBonus.Div(withBonus, number.Wide(collPrice)))
}

// FindOptimalDebtToLiquidate highest value priced debt, whole if under the cap and pro rata above it.
// Ties go to the first entry.
func (s *service) FindOptimalDebtToLiquidate(ctx context.Context, p *core.Position, maxValue uint64, snapshot core.PriceSnapshot) (string, uint64, bool, error) {
	var (
		best    string
		amount  uint64
		highest = new(uint256.Int)
		found   bool
	)

	limit := number.Wide(maxValue)
	for _, d := range p.Debts {
		info, ok := snapshot.Lookup(d.ReserveID)
		if !ok {
			continue
		}

		value, overflow := new(uint256.Int).MulOverflow(number.Wide(d.AmountPrincipal), number.Wide(info.Price))
		if overflow {
			return "", 0, false, core.ErrMathOverflow
		}

		liquidate := d.AmountPrincipal
		if value.Gt(limit) {
			v, err := number.WideMulDiv(limit, number.Wide(d.AmountPrincipal), value)
			if err != nil {
				return "", 0, false, err
			}

			// limit < value so the result fits
			liquidate = v.Uint64()
		}

		if liquidate > 0 && value.Gt(highest) {
			best, amount, found = d.ReserveID, liquidate, true
			highest = value
		}
	}

	return best, amount, found, nil
}

// Liquidate repay part of the debt in exchange for collateral plus the bonus of the collateral reserve.
//
// Both reserves are refreshed to now and the debt is settled at the new borrow index first.
// The health factor is left as computed before the liquidation, callers recompute it explicitly.
func (s *service) Liquidate(ctx context.Context, p *core.Position, debt, coll *core.Reserve, snapshot core.PriceSnapshot, repay uint64, now int64) (*core.Liquidation, error) {
	log := logger.FromContext(ctx).WithField("service", "liquidation")

	if repay == 0 {
		return nil, core.ErrInvalidAmount
	}

	next := p.Clone()
	debtNext, collNext := debt.Clone(), coll.Clone()
	same := debt.ID == coll.ID
	if same {
		collNext = debtNext
	}

	if err := compound.RefreshPair(debtNext, collNext, now); err != nil {
		return nil, err
	}

	for _, r := range []*core.Reserve{debtNext, collNext} {
		if _, err := compound.SettleDebt(next, r); err != nil {
			return nil, err
		}
	}

	hf, err := s.risk.HealthFactor(ctx, next, snapshot)
	if err != nil {
		return nil, err
	}

	if hf >= core.MinHealthFactor {
		return nil, core.ErrNotLiquidatable
	}

	debtPrice, err := snapshot.Require(debt.ID)
	if err != nil {
		return nil, err
	}

	collPrice, err := snapshot.Require(coll.ID)
	if err != nil {
		return nil, err
	}

	idx := next.Debt(debt.ID)
	if idx < 0 {
		return nil, core.ErrDebtNotFound
	}

	if repay > next.Debts[idx].AmountPrincipal {
		return nil, core.ErrInsufficientBalance
	}

	maxValue, err := s.MaxLiquidationValue(ctx, next, snapshot)
	if err != nil {
		return nil, err
	}

	repayValue, err := number.Mul(repay, debtPrice.Price)
	if err != nil {
		return nil, err
	}

	if repayValue > maxValue {
		return nil, core.ErrCloseFactorExceeded
	}

	seized, err := CalculateSeizedCollateral(repay, debtPrice.Price, collPrice.Price, collNext.LiquidationBonus)
	if err != nil {
		return nil, err
	}

	cidx := next.Collateral(coll.ID)
	if cidx < 0 {
		return nil, core.ErrCollateralNotFound
	}

	if next.Collaterals[cidx].AmountPrincipal < seized {
		return nil, core.ErrInsufficientCollateral
	}

	removed, err := next.RemoveDebt(debt.ID, repay)
	if err != nil {
		return nil, err
	}

	if seized > 0 {
		if next.Collaterals[cidx].IsLending {
			collNext.AvailableForLending = number.SubFloor(collNext.AvailableForLending, seized)
		}

		if _, err := next.RemoveCollateral(coll.ID, seized); err != nil {
			return nil, err
		}
	}

	compound.BookRepay(debtNext, repay, removed)

	if collNext.TotalDeposited, err = number.Sub(collNext.TotalDeposited, seized); err != nil {
		return nil, fmt.Errorf("collateral reserve %s: %w", coll.ID, core.ErrInvariantViolation)
	}

	if err := debtNext.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := collNext.CheckInvariants(); err != nil {
		return nil, err
	}

	next.LastUpdated = now
	*p = *next
	*debt = *debtNext
	if !same {
		*coll = *collNext
	}

	log.Infof("liquidate %s: repay %d %s, seize %d %s, hf %d", p.Owner, repay, debt.ID, seized, coll.ID, hf)

	return &core.Liquidation{
		Owner:          p.Owner,
		DebtReserve:    debt.ID,
		CollReserve:    coll.ID,
		Repaid:         repay,
		RepaidValue:    repayValue,
		Seized:         seized,
		HealthFactorAt: hf,
	}, nil
}

// LiquidateOptimal pick the debt with FindOptimalDebtToLiquidate and liquidate it against collReserve.
//
// Every reserve is refreshed and every debt settled before the pick, nothing changes on error.
func (s *service) LiquidateOptimal(ctx context.Context, p *core.Position, reserves map[string]*core.Reserve, collReserve string, snapshot core.PriceSnapshot, now int64) (*core.Liquidation, error) {
	next := p.Clone()
	pool := make(map[string]*core.Reserve, len(reserves))
	for id, r := range reserves {
		pool[id] = r.Clone()
	}

	if err := compound.Accrue(next, pool, now); err != nil {
		return nil, err
	}

	ok, err := s.IsLiquidatable(ctx, next, snapshot)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, core.ErrNotLiquidatable
	}

	maxValue, err := s.MaxLiquidationValue(ctx, next, snapshot)
	if err != nil {
		return nil, err
	}

	reserveID, amount, ok, err := s.FindOptimalDebtToLiquidate(ctx, next, maxValue, snapshot)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, core.ErrPriceMissing
	}

	debt, found := pool[reserveID]
	if !found {
		return nil, core.ErrReserveNotFound
	}

	coll, found := pool[collReserve]
	if !found {
		return nil, core.ErrReserveNotFound
	}

	result, err := s.Liquidate(ctx, next, debt, coll, snapshot, amount, now)
	if err != nil {
		return nil, err
	}

	*p = *next
	for id, r := range pool {
		*reserves[id] = *r
	}

	return result, nil
}
