package number

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/holiman/uint256"
)

func TestCeil(t *testing.T) {
	data := map[string]string{
		"0.10304":     "0.11",
		"0.100000001": "0.11",
		"0.108":       "0.11",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			c := Ceil(Decimal(k), 2)
			assert.Equal(t, v, c.String(), "should be ceil")
		})
	}
}

func TestBps(t *testing.T) {
	assert.Equal(t, "0.07", Bps(700).String())
	assert.Equal(t, "1", Bps(10000).String())
}

func TestWideDecimal(t *testing.T) {
	v := uint256.NewInt(1_070_000_000_000)
	assert.Equal(t, "1.07", FromWide(v, 12).String())

	w, err := ToWide(Decimal("1070000000000.9"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "1070000000000", w.Dec())

	_, err = ToWide(Decimal("-1"))
	assert.NotEqual(t, nil, err)
}
