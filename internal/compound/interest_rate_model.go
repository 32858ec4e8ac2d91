package compound

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

// UtilizationRate utilization rate in bps
// utilization_rate = borrowed * 10000 / deposited
func UtilizationRate(borrowed, deposited uint64) (uint64, error) {
	if deposited == 0 {
		return 0, nil
	}

	return number.MulDiv(borrowed, core.BasisPoints, deposited)
}

// BorrowRate annualized borrow rate in bps, two segment curve around optimal utilization.
//
// optimal == 0 always uses the upper segment, optimal == 10000 always the lower one.
func BorrowRate(utilization, optimal, base, slope1, slope2 uint64) (uint64, error) {
	if optimal > core.BasisPoints {
		return 0, core.ErrInvalidParameter
	}

	if optimal > 0 && (utilization < optimal || optimal == core.BasisPoints) {
		v, err := number.MulDiv(utilization, slope1, optimal)
		if err != nil {
			return 0, err
		}

		return number.Add(base, v)
	}

	normal, err := number.Add(base, slope1)
	if err != nil {
		return 0, err
	}

	excess, err := number.Sub(utilization, optimal)
	if err != nil {
		return 0, err
	}

	v, err := number.MulDiv(excess, slope2, core.BasisPoints-optimal)
	if err != nil {
		return 0, err
	}

	return number.Add(normal, v)
}

// SupplyRate supply rate in bps
// supply_rate = borrow_rate * utilization / 10000 * (10000 - reserve_factor) / 10000
func SupplyRate(borrowRate, utilization, reserveFactor uint64) (uint64, error) {
	if reserveFactor > core.BasisPoints {
		return 0, core.ErrInvalidParameter
	}

	part, err := number.MulDiv(borrowRate, utilization, core.BasisPoints)
	if err != nil {
		return 0, err
	}

	return number.MulDiv(part, core.BasisPoints-reserveFactor, core.BasisPoints)
}

// LendingSupplyRate rate of a lending supply pool in bps
// rate = min(total_lent * 10000 / available, 10000) * share / 10000
func LendingSupplyRate(totalLent, available, share uint64) (uint64, error) {
	if available == 0 {
		return 0, nil
	}

	utilization, err := number.MulDiv(totalLent, core.BasisPoints, available)
	if err != nil {
		return 0, err
	}

	if utilization > core.BasisPoints {
		utilization = core.BasisPoints
	}

	return number.MulDiv(utilization, share, core.BasisPoints)
}

var yearBps = uint256.NewInt(core.BasisPoints * core.SecondsPerYear)

// CompoundIndex index * (10000 * SecondsPerYear + rate * elapsed) / (10000 * SecondsPerYear)
//
// The growth is never truncated to whole bps first, a short interval still moves a large index.
func CompoundIndex(index *uint256.Int, rate, elapsed uint64) (*uint256.Int, error) {
	// two uint64 factors never overflow 256 bits
	growth := new(uint256.Int).Mul(number.Wide(rate), number.Wide(elapsed))
	multiplier, err := number.WideAdd(yearBps, growth)
	if err != nil {
		return nil, err
	}

	next, err := number.WideMulDiv(index, multiplier, yearBps)
	if err != nil {
		return nil, err
	}

	// never decrease
	if next.Lt(index) {
		return index.Clone(), nil
	}

	return next, nil
}
