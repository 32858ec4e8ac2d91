package compound

import (
	"lending/core"
	interest "lending/internal/compound"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

// Rates current rates of a reserve, all in bps
type Rates struct {
	Utilization uint64 `json:"utilization"`
	Borrow      uint64 `json:"borrow"`
	Supply      uint64 `json:"supply"`
}

// CurRates utilization, borrow and supply rate at the current reserve state
func CurRates(r *core.Reserve) (Rates, error) {
	utilization, err := interest.UtilizationRate(r.TotalBorrowed, r.TotalDeposited)
	if err != nil {
		return Rates{}, err
	}

	borrow, err := interest.BorrowRate(utilization, r.OptimalUtilization, r.BaseRate, r.Slope1, r.Slope2)
	if err != nil {
		return Rates{}, err
	}

	var supply uint64
	if r.LendingEnabled && r.AvailableForLending > 0 {
		if supply, err = interest.LendingSupplyRate(r.TotalLent, r.AvailableForLending, r.LendingInterestShare); err != nil {
			return Rates{}, err
		}
	} else if supply, err = interest.SupplyRate(borrow, utilization, r.ReserveFactor); err != nil {
		return Rates{}, err
	}

	return Rates{
		Utilization: utilization,
		Borrow:      borrow,
		Supply:      supply,
	}, nil
}

// Refresh accrue interest into both indices up to now.
//
// Interest owed on the scaled debt is booked into the pool: it raises total borrowed,
// total deposited and accrued interest by the same amount.
// Nothing moves when now equals the last update. With no deposits only the timestamp advances.
// On error the reserve is left untouched.
func Refresh(r *core.Reserve, now int64) error {
	elapsed, err := interest.Elapsed(r.LastUpdateTime, now)
	if err != nil {
		return err
	}

	if elapsed == 0 {
		return nil
	}

	if r.TotalDeposited == 0 {
		r.LastUpdateTime = now
		return nil
	}

	rates, err := CurRates(r)
	if err != nil {
		return err
	}

	borrowIndex, err := interest.CompoundIndex(&r.BorrowIndex, rates.Borrow, elapsed)
	if err != nil {
		return err
	}

	lendingIndex, err := interest.CompoundIndex(&r.LendingIndex, rates.Supply, elapsed)
	if err != nil {
		return err
	}

	growth, err := accrued(r.TotalBorrowed, &r.BorrowedScaled, borrowIndex)
	if err != nil {
		return err
	}

	borrowed, err := number.Add(r.TotalBorrowed, growth)
	if err != nil {
		return err
	}

	deposited, err := number.Add(r.TotalDeposited, growth)
	if err != nil {
		return err
	}

	pending, err := number.Add(r.AccruedInterest, growth)
	if err != nil {
		return err
	}

	r.TotalBorrowed, r.TotalDeposited, r.AccruedInterest = borrowed, deposited, pending
	r.BorrowIndex = *borrowIndex
	r.LendingIndex = *lendingIndex
	r.LastUpdateTime = now
	return nil
}

// accrued interest owed on the scaled debt at index beyond what is already booked
// interest = scaled * index / 10^12 - borrowed, floored at zero
func accrued(borrowed uint64, scaled, index *uint256.Int) (uint64, error) {
	v, err := number.WideMulDiv(scaled, index, indexBase)
	if err != nil {
		return 0, err
	}

	owed, err := number.Narrow(v)
	if err != nil {
		return 0, err
	}

	return number.SubFloor(owed, borrowed), nil
}
