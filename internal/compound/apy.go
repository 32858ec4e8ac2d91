package compound

import (
	"lending/pkg/number"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// IndexBase = 10^indexDecimals
const indexDecimals = 12

// MaxPricision max pricision of displayed rates
var MaxPricision int32 = 16

// AnnualRate bps annual rate as a ratio, 700 => 0.07
func AnnualRate(bps uint64) decimal.Decimal {
	return number.Bps(bps)
}

// APY effective yearly yield of a bps rate compounded n times per year
// apy = (1 + rate/n)^n - 1
func APY(bps uint64, n int64) decimal.Decimal {
	if n <= 0 {
		return AnnualRate(bps)
	}

	periods := decimal.NewFromInt(n)
	step := decimal.NewFromInt(1).Add(AnnualRate(bps).DivRound(periods, MaxPricision))
	return step.Pow(periods).Sub(decimal.NewFromInt(1)).Truncate(MaxPricision)
}

// IndexRatio index as a ratio of IndexBase, 1.07 for 1_070_000_000_000
func IndexRatio(index *uint256.Int) decimal.Decimal {
	return number.FromWide(index, indexDecimals).Truncate(MaxPricision)
}
