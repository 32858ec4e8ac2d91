package risk

import (
	"context"

	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

const (
	// TradingCollateralHaircut share of free collateral usable as trading margin, percent
	TradingCollateralHaircut uint64 = 80
)

type service struct{}

// New new collateral risk service
func New() core.IRiskService {
	return &service{}
}

type totals struct {
	weighted uint256.Int
	// collateral weighted by loan to value, the limit for new borrows
	borrowable uint256.Int
	raw        uint256.Int
	debt       uint256.Int
	exposure   uint256.Int
	margin     uint256.Int
}

func (t *totals) totalDebt() (*uint256.Int, error) {
	return number.WideAdd(&t.debt, &t.exposure)
}

// healthFactor weighted * 10000 / (debt + exposure), clamped to the sentinel
func (t *totals) healthFactor() (uint64, error) {
	debt, err := t.totalDebt()
	if err != nil {
		return 0, err
	}

	if debt.IsZero() {
		return core.HealthFactorMax, nil
	}

	hf, err := number.WideMulDiv(&t.weighted, number.Wide(core.BasisPoints), debt)
	if err != nil {
		return 0, err
	}

	if !hf.IsUint64() {
		return core.HealthFactorMax, nil
	}

	return hf.Uint64(), nil
}

// accumulate values of every priced entry, unpriced entries are skipped
func accumulate(p *core.Position, snapshot core.PriceSnapshot) (*totals, error) {
	var t totals

	for _, c := range p.Collaterals {
		if !c.IsCollateral {
			continue
		}

		info, ok := snapshot.Lookup(c.ReserveID)
		if !ok {
			continue
		}

		value, overflow := new(uint256.Int).MulOverflow(number.Wide(c.AmountPrincipal), number.Wide(info.Price))
		if overflow {
			return nil, core.ErrMathOverflow
		}

		weighted, err := number.WideMulDiv(value, number.Wide(info.LiquidationThreshold), number.Wide(core.BasisPoints))
		if err != nil {
			return nil, err
		}

		borrowable, err := number.WideMulDiv(value, number.Wide(info.LoanToValue), number.Wide(core.BasisPoints))
		if err != nil {
			return nil, err
		}

		if err := addTo(&t.raw, value); err != nil {
			return nil, err
		}

		if err := addTo(&t.borrowable, borrowable); err != nil {
			return nil, err
		}

		if err := addTo(&t.weighted, weighted); err != nil {
			return nil, err
		}
	}

	for _, d := range p.Debts {
		info, ok := snapshot.Lookup(d.ReserveID)
		if !ok {
			continue
		}

		value, overflow := new(uint256.Int).MulOverflow(number.Wide(d.AmountPrincipal), number.Wide(info.Price))
		if overflow {
			return nil, core.ErrMathOverflow
		}

		if err := addTo(&t.debt, value); err != nil {
			return nil, err
		}
	}

	for _, l := range p.OpenLeveraged() {
		// margin already sits inside collateral, only the rest is new exposure
		exposure := number.SubFloor(l.NotionalValue, l.MarginUsed)
		if err := addTo(&t.exposure, number.Wide(exposure)); err != nil {
			return nil, err
		}

		if err := addTo(&t.margin, number.Wide(l.MarginUsed)); err != nil {
			return nil, err
		}
	}

	return &t, nil
}

func addTo(sum, v *uint256.Int) error {
	if _, overflow := sum.AddOverflow(sum, v); overflow {
		return core.ErrMathOverflow
	}

	return nil
}

func (s *service) HealthFactor(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot) (uint64, error) {
	t, err := accumulate(p, snapshot)
	if err != nil {
		return 0, err
	}

	hf, err := t.healthFactor()
	if err != nil {
		return 0, err
	}

	p.HealthFactor = hf
	return hf, nil
}

func (s *service) BorrowingCapacity(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot) (uint64, uint64, error) {
	t, err := accumulate(p, snapshot)
	if err != nil {
		return 0, 0, err
	}

	weighted, err := number.Narrow(&t.weighted)
	if err != nil {
		return 0, 0, err
	}

	raw, err := number.Narrow(&t.raw)
	if err != nil {
		return 0, 0, err
	}

	return weighted, raw, nil
}

// CanBorrow debt + exposure + newDebtValue within the loan to value weighted collateral
func (s *service) CanBorrow(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot, newDebtValue uint64) (bool, error) {
	t, err := accumulate(p, snapshot)
	if err != nil {
		return false, err
	}

	debt, err := t.totalDebt()
	if err != nil {
		return false, err
	}

	next, err := number.WideAdd(debt, number.Wide(newDebtValue))
	if err != nil {
		return false, err
	}

	return !next.Gt(&t.borrowable), nil
}

// MaxBorrowable solves weighted * 10000 / (debt + x * price) >= minHF for the largest x
func (s *service) MaxBorrowable(ctx context.Context, p *core.Position, reserveID string, snapshot core.PriceSnapshot, minHF uint64) (uint64, error) {
	if minHF == 0 {
		return 0, core.ErrInvalidParameter
	}

	info, err := snapshot.Require(reserveID)
	if err != nil {
		return 0, err
	}

	t, err := accumulate(p, snapshot)
	if err != nil {
		return 0, err
	}

	limit, err := number.WideMulDiv(&t.weighted, number.Wide(core.BasisPoints), number.Wide(minHF))
	if err != nil {
		return 0, err
	}

	debt, err := t.totalDebt()
	if err != nil {
		return 0, err
	}

	if !limit.Gt(debt) {
		return 0, nil
	}

	room := new(uint256.Int).Sub(limit, debt)
	return number.Narrow(room.Div(room, number.Wide(info.Price)))
}

// AvailableCollateral (raw - debt - locked margin) * 80%, 0 when nothing is free
func (s *service) AvailableCollateral(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot) (uint64, error) {
	t, err := accumulate(p, snapshot)
	if err != nil {
		return 0, err
	}

	used, err := number.WideAdd(&t.debt, &t.margin)
	if err != nil {
		return 0, err
	}

	if !t.raw.Gt(used) {
		return 0, nil
	}

	free := new(uint256.Int).Sub(&t.raw, used)
	available, err := number.WideMulDiv(free, number.Wide(TradingCollateralHaircut), number.Wide(100))
	if err != nil {
		return 0, err
	}

	return number.Narrow(available)
}

func (s *service) Valuation(ctx context.Context, p *core.Position, snapshot core.PriceSnapshot) (*core.Valuation, error) {
	t, err := accumulate(p, snapshot)
	if err != nil {
		return nil, err
	}

	hf, err := t.healthFactor()
	if err != nil {
		return nil, err
	}

	v := &core.Valuation{HealthFactor: hf}
	for _, f := range []struct {
		dst *uint64
		src *uint256.Int
	}{
		{&v.WeightedCollateral, &t.weighted},
		{&v.BorrowLimit, &t.borrowable},
		{&v.TotalCollateral, &t.raw},
		{&v.DebtValue, &t.debt},
		{&v.LeveragedExposure, &t.exposure},
		{&v.LockedMargin, &t.margin},
	} {
		if *f.dst, err = number.Narrow(f.src); err != nil {
			return nil, err
		}
	}

	p.HealthFactor = hf
	return v, nil
}
