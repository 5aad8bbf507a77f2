package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12.34", 1234},
		{"$1,234.50", 123450},
		{"0.005", 1},
		{"7", 700},
		{" 19.999 ", 2000},
		{"90,071,992,547,409.91", MaxCents},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "abc", ".", "1.2.3", "90071992547409.92", "184467440737095516.17"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.00", Format(0))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "999.99", Format(99999))
	assert.Equal(t, "1,234.56", Format(123456))
	assert.Equal(t, "1,000,000.00", Format(100000000))
	assert.Equal(t, "-1,234.56", Format(-123456))
}

func TestApplyRate(t *testing.T) {
	assert.Equal(t, int64(122738), ApplyRate(490952, decimal.RequireFromString("0.25")))
	assert.Equal(t, int64(0), ApplyRate(0, decimal.RequireFromString("0.25")))
}
