package lending

import (
	"context"

	"lending/core"
	"lending/pkg/compound"
	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
)

type service struct {
	risk core.IRiskService
}

// New new lending service
func New(risk core.IRiskService) core.ILendingService {
	return &service{risk: risk}
}

// begin refresh a clone of the reserve to now and settle the debt of the position in it
func begin(p *core.Position, r *core.Reserve, now int64) (*core.Position, *core.Reserve, error) {
	pn, rn := p.Clone(), r.Clone()
	if err := compound.Refresh(rn, now); err != nil {
		return nil, nil, err
	}

	if _, err := compound.SettleDebt(pn, rn); err != nil {
		return nil, nil, err
	}

	return pn, rn, nil
}

func commit(p, pn *core.Position, r, rn *core.Reserve, now int64) error {
	if err := rn.CheckInvariants(); err != nil {
		return err
	}

	pn.LastUpdated = now
	*p, *r = *pn, *rn
	return nil
}

func (s *service) Deposit(ctx context.Context, p *core.Position, r *core.Reserve, amount uint64, now int64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}

	pn, rn, err := begin(p, r, now)
	if err != nil {
		return err
	}

	scaled, err := compound.DepositToScaled(rn, amount)
	if err != nil {
		return err
	}

	if err := pn.AddCollateral(rn.ID, amount, scaled, now); err != nil {
		return err
	}

	if rn.TotalDeposited, err = number.Add(rn.TotalDeposited, amount); err != nil {
		return err
	}

	if pn.Collaterals[pn.Collateral(rn.ID)].IsLending {
		if err := supply(rn, amount); err != nil {
			return err
		}
	}

	return commit(p, pn, r, rn, now)
}

func (s *service) Withdraw(ctx context.Context, p *core.Position, r *core.Reserve, amount uint64, snapshot core.PriceSnapshot, now int64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}

	pn, rn, err := begin(p, r, now)
	if err != nil {
		return err
	}

	idx := pn.Collateral(rn.ID)
	if idx < 0 {
		return core.ErrCollateralNotFound
	}

	entry := pn.Collaterals[idx]
	if entry.IsLending {
		if now-entry.DepositTime < int64(rn.MinLendingDuration) {
			return core.ErrMinLendingDurationNotMet
		}

		if rn.AvailableForLending, err = number.Sub(rn.AvailableForLending, amount); err != nil || rn.AvailableForLending < rn.TotalLent {
			return core.ErrInsufficientLiquidity
		}
	}

	if _, err := pn.RemoveCollateral(rn.ID, amount); err != nil {
		return err
	}

	deposited, err := number.Sub(rn.TotalDeposited, amount)
	if err != nil || deposited < rn.TotalBorrowed || deposited < rn.TotalLent {
		return core.ErrInsufficientLiquidity
	}

	rn.TotalDeposited = deposited

	if pn.HasDebt() {
		hf, err := s.risk.HealthFactor(ctx, pn, snapshot)
		if err != nil {
			return err
		}

		if hf < core.MinHealthFactor {
			return core.ErrHealthFactorTooLow
		}
	}

	return commit(p, pn, r, rn, now)
}

func (s *service) Borrow(ctx context.Context, p *core.Position, r *core.Reserve, amount uint64, snapshot core.PriceSnapshot, now int64) error {
	log := logger.FromContext(ctx).WithField("service", "lending")

	if amount == 0 {
		return core.ErrInvalidAmount
	}

	pn, rn, err := begin(p, r, now)
	if err != nil {
		return err
	}

	if number.SubFloor(rn.TotalDeposited, rn.TotalBorrowed) < amount {
		return core.ErrInsufficientLiquidity
	}

	info, err := snapshot.Require(rn.ID)
	if err != nil {
		return err
	}

	value, err := number.Mul(amount, info.Price)
	if err != nil {
		return err
	}

	ok, err := s.risk.CanBorrow(ctx, pn, snapshot, value)
	if err != nil {
		return err
	}

	if !ok {
		return core.ErrBorrowExceedsLimit
	}

	rates, err := compound.CurRates(rn)
	if err != nil {
		return err
	}

	scaled, err := compound.DebtToScaled(rn, amount)
	if err != nil {
		return err
	}

	if err := pn.AddDebt(rn.ID, amount, scaled, rates.Borrow); err != nil {
		return err
	}

	if err := compound.BookBorrow(rn, amount, scaled); err != nil {
		return err
	}

	// lending supply is drawn first
	if rn.LendingEnabled {
		draw := number.SubFloor(rn.AvailableForLending, rn.TotalLent)
		if draw > amount {
			draw = amount
		}

		rn.TotalLent += draw
	}

	hf, err := s.risk.HealthFactor(ctx, pn, snapshot)
	if err != nil {
		return err
	}

	if hf < core.MinHealthFactor {
		return core.ErrHealthFactorTooLow
	}

	if err := commit(p, pn, r, rn, now); err != nil {
		return err
	}

	log.Debugf("borrow %s: %d %s, hf %d", p.Owner, amount, r.ID, hf)
	return nil
}

func (s *service) Repay(ctx context.Context, p *core.Position, r *core.Reserve, amount uint64, snapshot core.PriceSnapshot, now int64) (uint64, error) {
	if amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	pn, rn, err := begin(p, r, now)
	if err != nil {
		return 0, err
	}

	idx := pn.Debt(rn.ID)
	if idx < 0 {
		return 0, core.ErrDebtNotFound
	}

	// principal is settled, interest included
	if owed := pn.Debts[idx].AmountPrincipal; amount > owed {
		amount = owed
	}

	removed, err := pn.RemoveDebt(rn.ID, amount)
	if err != nil {
		return 0, err
	}

	compound.BookRepay(rn, amount, removed)

	if _, err := s.risk.HealthFactor(ctx, pn, snapshot); err != nil {
		return 0, err
	}

	if err := commit(p, pn, r, rn, now); err != nil {
		return 0, err
	}

	return amount, nil
}

// ClaimYield yield = scaled * lending_index / 10^12 - principal.
//
// Yield is paid from the accrued interest of the reserve, never from other deposits.
// Reinvesting adds the yield to the principal, otherwise the scaled balance is cut back
// so the entry only holds its principal and the yield leaves the pool.
func (s *service) ClaimYield(ctx context.Context, p *core.Position, r *core.Reserve, reinvest bool, now int64) (uint64, error) {
	pn, rn, err := begin(p, r, now)
	if err != nil {
		return 0, err
	}

	idx := pn.Collateral(rn.ID)
	if idx < 0 {
		return 0, core.ErrCollateralNotFound
	}

	entry := &pn.Collaterals[idx]
	current, err := compound.ScaledToAmount(rn, &entry.AmountScaled)
	if err != nil {
		return 0, err
	}

	yield := number.SubFloor(current, entry.AmountPrincipal)
	if yield == 0 {
		return 0, core.ErrInvalidAmount
	}

	if rn.AccruedInterest < yield {
		return 0, core.ErrInsufficientLiquidity
	}

	rn.AccruedInterest -= yield

	if reinvest {
		// already counted in total deposited since it accrued
		if entry.AmountPrincipal, err = number.Add(entry.AmountPrincipal, yield); err != nil {
			return 0, err
		}
	} else {
		if compound.Liquidity(rn) < yield {
			return 0, core.ErrInsufficientLiquidity
		}

		rn.TotalDeposited -= yield

		cut, err := number.WideMulDiv(number.Wide(yield), number.Wide(core.IndexBase), &rn.LendingIndex)
		if err != nil {
			return 0, err
		}

		rest, err := number.WideSub(&entry.AmountScaled, cut)
		if err != nil {
			return 0, err
		}

		entry.AmountScaled = *rest
	}

	if err := commit(p, pn, r, rn, now); err != nil {
		return 0, err
	}

	return yield, nil
}

// EnableLending move the whole deposit into the lending supply, bounded by the max lending ratio
func (s *service) EnableLending(ctx context.Context, p *core.Position, r *core.Reserve, now int64) error {
	pn, rn, err := begin(p, r, now)
	if err != nil {
		return err
	}

	if !rn.LendingEnabled {
		return core.ErrLendingNotEnabled
	}

	idx := pn.Collateral(rn.ID)
	if idx < 0 {
		return core.ErrCollateralNotFound
	}

	entry := &pn.Collaterals[idx]
	if entry.IsLending {
		return core.ErrInvalidParameter
	}

	if err := supply(rn, entry.AmountPrincipal); err != nil {
		return err
	}

	entry.IsLending = true
	entry.DepositTime = now

	return commit(p, pn, r, rn, now)
}

func supply(r *core.Reserve, amount uint64) error {
	capacity, err := compound.LendingCapacity(r)
	if err != nil {
		return err
	}

	if amount > capacity {
		return core.ErrMaxLendingCapacityReached
	}

	r.AvailableForLending += amount
	return nil
}
