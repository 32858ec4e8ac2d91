package number

import (
	"math"
	"testing"

	"lending/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	v, err := MulDiv(math.MaxUint64, 10000, 20000)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), v)

	_, err = MulDiv(math.MaxUint64, 2, 1)
	assert.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = MulDiv(1, 1, 0)
	assert.ErrorIs(t, err, core.ErrDivisionByZero)
}

func TestMulDivUp(t *testing.T) {
	v, err := MulDivUp(10, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v)

	v, err = MulDivUp(9, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}

func TestChecked(t *testing.T) {
	_, err := Add(math.MaxUint64, 1)
	assert.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = Sub(1, 2)
	assert.ErrorIs(t, err, core.ErrMathOverflow)
	assert.Equal(t, uint64(0), SubFloor(1, 2))

	_, err = Mul(math.MaxUint64, 2)
	assert.ErrorIs(t, err, core.ErrMathOverflow)

	_, err = Narrow(new(uint256.Int).Lsh(uint256.NewInt(1), 64))
	assert.ErrorIs(t, err, core.ErrMathOverflow)
}
