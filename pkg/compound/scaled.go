package compound

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

var indexBase = uint256.NewInt(core.IndexBase)

// DepositToScaled deposit amount to lending index units, 1:1 until the lending index first grows
// scaled = amount * 10^12 / lending_index
func DepositToScaled(r *core.Reserve, amount uint64) (*uint256.Int, error) {
	if r.LendingIndex.Eq(indexBase) {
		return number.Wide(amount), nil
	}

	return number.WideMulDiv(number.Wide(amount), indexBase, &r.LendingIndex)
}

// ScaledToAmount lending index units back to token amount, rounded down
// amount = scaled * lending_index / 10^12
func ScaledToAmount(r *core.Reserve, scaled *uint256.Int) (uint64, error) {
	v, err := number.WideMulDiv(scaled, &r.LendingIndex, indexBase)
	if err != nil {
		return 0, err
	}

	return number.Narrow(v)
}

// DebtToScaled debt amount to borrow index units, rounded up
func DebtToScaled(r *core.Reserve, amount uint64) (*uint256.Int, error) {
	return number.WideMulDivUp(number.Wide(amount), indexBase, &r.BorrowIndex)
}

// ScaledToDebt borrow index units back to debt amount, rounded up
func ScaledToDebt(r *core.Reserve, scaled *uint256.Int) (uint64, error) {
	v, err := number.WideMulDivUp(scaled, &r.BorrowIndex, indexBase)
	if err != nil {
		return 0, err
	}

	return number.Narrow(v)
}

// BookBorrow add a new debt of amount, scaled borrow index units, to the reserve totals
func BookBorrow(r *core.Reserve, amount uint64, scaled *uint256.Int) error {
	borrowed, err := number.Add(r.TotalBorrowed, amount)
	if err != nil {
		return err
	}

	total, err := number.WideAdd(&r.BorrowedScaled, scaled)
	if err != nil {
		return err
	}

	r.TotalBorrowed = borrowed
	r.BorrowedScaled = *total
	return nil
}

// BookRepay take a repaid amount and its scaled units off the reserve totals.
// Entries round up against the totals so every total is floored at zero.
func BookRepay(r *core.Reserve, amount uint64, scaled *uint256.Int) {
	r.TotalBorrowed = number.SubFloor(r.TotalBorrowed, amount)
	r.TotalLent = number.SubFloor(r.TotalLent, amount)

	if scaled.Gt(&r.BorrowedScaled) {
		r.BorrowedScaled.Clear()
		return
	}

	r.BorrowedScaled.Sub(&r.BorrowedScaled, scaled)
}
