package number

import (
	"errors"

	"lending/core"

	"github.com/holiman/uint256"
)

var errNegative = errors.New("negative value")

// Wide uint64 to a fresh uint256
func Wide(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Narrow checked uint256 to uint64
func Narrow(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, core.ErrMathOverflow
	}

	return v.Uint64(), nil
}

func Add(a, b uint64) (uint64, error) {
	c := a + b
	if c < a {
		return 0, core.ErrMathOverflow
	}

	return c, nil
}

func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, core.ErrMathOverflow
	}

	return a - b, nil
}

// SubFloor a - b, 0 when b > a
func SubFloor(a, b uint64) uint64 {
	if b > a {
		return 0
	}

	return a - b
}

func Mul(a, b uint64) (uint64, error) {
	v, overflow := new(uint256.Int).MulOverflow(Wide(a), Wide(b))
	if overflow {
		return 0, core.ErrMathOverflow
	}

	return Narrow(v)
}

// MulDiv a * b / c rounded down, intermediate product in 256 bits
func MulDiv(a, b, c uint64) (uint64, error) {
	v, err := WideMulDiv(Wide(a), Wide(b), Wide(c))
	if err != nil {
		return 0, err
	}

	return Narrow(v)
}

// MulDivUp a * b / c rounded up
func MulDivUp(a, b, c uint64) (uint64, error) {
	v, err := WideMulDivUp(Wide(a), Wide(b), Wide(c))
	if err != nil {
		return 0, err
	}

	return Narrow(v)
}

// WideMulDiv a * b / c rounded down
func WideMulDiv(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, core.ErrDivisionByZero
	}

	v, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, core.ErrMathOverflow
	}

	return v.Div(v, c), nil
}

// WideMulDivUp a * b / c rounded up
func WideMulDivUp(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, core.ErrDivisionByZero
	}

	v, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, core.ErrMathOverflow
	}

	rem := new(uint256.Int).Mod(v, c)
	v.Div(v, c)
	if !rem.IsZero() {
		if _, overflow := v.AddOverflow(v, uint256.NewInt(1)); overflow {
			return nil, core.ErrMathOverflow
		}
	}

	return v, nil
}

// WideAdd checked a + b
func WideAdd(a, b *uint256.Int) (*uint256.Int, error) {
	v, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, core.ErrMathOverflow
	}

	return v, nil
}

// WideSub checked a - b
func WideSub(a, b *uint256.Int) (*uint256.Int, error) {
	v, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, core.ErrMathOverflow
	}

	return v, nil
}
