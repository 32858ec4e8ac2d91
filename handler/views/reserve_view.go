package views

import (
	"lending/core"
	"lending/internal/compound"
	pkgcompound "lending/pkg/compound"
	"lending/pkg/number"

	"github.com/shopspring/decimal"
)

// DaysPerYear compounding periods used for the displayed APY
const DaysPerYear = 365

// borrow apy rounds up, supply apy down
const apyPrecision = 8

// Reserve reserve view, rates as ratios
type Reserve struct {
	*core.Reserve
	BorrowIndex  decimal.Decimal `json:"borrow_index"`
	LendingIndex decimal.Decimal `json:"lending_index"`
	Liquidity    uint64          `json:"liquidity"`
	Utilization  decimal.Decimal `json:"utilization"`
	BorrowAPR    decimal.Decimal `json:"borrow_apr"`
	SupplyAPR    decimal.Decimal `json:"supply_apr"`
	BorrowAPY    decimal.Decimal `json:"borrow_apy"`
	SupplyAPY    decimal.Decimal `json:"supply_apy"`
}

// ReserveView rates at the current reserve state
func ReserveView(r *core.Reserve) (*Reserve, error) {
	rates, err := pkgcompound.CurRates(r)
	if err != nil {
		return nil, err
	}

	return &Reserve{
		Reserve:      r,
		BorrowIndex:  compound.IndexRatio(&r.BorrowIndex),
		LendingIndex: compound.IndexRatio(&r.LendingIndex),
		Liquidity:    pkgcompound.Liquidity(r),
		Utilization:  compound.AnnualRate(rates.Utilization),
		BorrowAPR:    compound.AnnualRate(rates.Borrow),
		SupplyAPR:    compound.AnnualRate(rates.Supply),
		BorrowAPY:    number.Ceil(compound.APY(rates.Borrow, DaysPerYear), apyPrecision),
		SupplyAPY:    compound.APY(rates.Supply, DaysPerYear).Truncate(apyPrecision),
	}, nil
}
