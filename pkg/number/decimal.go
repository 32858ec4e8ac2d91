package number

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Bps bps to a ratio, 700 => 0.07
func Bps(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(uint256.Int).SetUint64(v).ToBig(), -4)
}

// FromWide wide integer to decimal, shifted by -exp
func FromWide(v *uint256.Int, exp int32) decimal.Decimal {
	return decimal.NewFromBigInt(v.ToBig(), -exp)
}

// ToWide decimal integer to wide integer, fraction is truncated
func ToWide(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, errNegative
	}

	return uint256.FromDecimal(d.Truncate(0).String())
}
