// Package money converts between user-entered decimal amounts and the integer
// cents stored on transactions.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents is the largest amount a transaction may carry. It is the largest
// integer a JSON number holds without precision loss.
const MaxCents = 1<<53 - 1

// ErrInvalidAmount is returned when input cannot be read as a currency value
// or falls outside 0..MaxCents.
var ErrInvalidAmount = errors.New("invalid amount")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxCents)
)

// ParseAmount converts a currency string such as "$1,234.5" into cents.
// Every character other than digits and the decimal point is ignored, and the
// value is rounded half away from zero to whole cents.
func ParseAmount(input string) (int64, error) {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "." {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ToCents rounds a decimal amount to cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents returns the decimal value of an amount in cents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders cents with two decimals and comma thousand separators,
// e.g. 123456 -> "1,234.56".
func Format(cents int64) string {
	s := FromCents(cents).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	return sign + grouped.String() + "." + frac
}

// ApplyRate returns cents multiplied by rate, rounded to whole cents.
func ApplyRate(cents int64, rate decimal.Decimal) int64 {
	return ToCents(FromCents(cents).Mul(rate))
}
