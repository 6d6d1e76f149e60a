package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount in integer minor units. It encodes to JSON as a
// decimal dollar amount so the wire shape stays `"estimatedValue": 50000.01`.
type Cents int64

// Dollars builds a Cents value from whole dollars.
func Dollars(d int64) Cents { return Cents(d * 100) }

// MaxAmount caps a single entered amount at one trillion dollars. Larger
// values are rejected by validation long before sums could overflow.
const MaxAmount = Cents(100_000_000_000_000)

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseCents parses a decimal dollar amount such as "184500", "50000.01" or
// "-12.5". Digits past the second fractional place round half away from zero.
// Amounts outside the int64 cent range are an error.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("domain: empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("domain: parse amount %q: %w", s, err)
	}
	minor := d.Shift(2).Round(0)
	if minor.GreaterThan(maxCents) || minor.LessThan(minCents) {
		return 0, fmt.Errorf("domain: amount %q out of range", s)
	}
	return Cents(minor.IntPart()), nil
}

// Add returns c+d clamped to the int64 range instead of wrapping around.
func (c Cents) Add(d Cents) Cents {
	sum := c + d
	switch {
	case d > 0 && sum < c:
		return Cents(math.MaxInt64)
	case d < 0 && sum > c:
		return Cents(math.MinInt64)
	}
	return sum
}

// String renders the amount as a plain decimal, e.g. "50000" or "50000.01".
func (c Cents) String() string {
	v := uint64(c)
	sign := ""
	if c < 0 {
		sign = "-"
		v = -v
	}
	if v%100 == 0 {
		return fmt.Sprintf("%s%d", sign, v/100)
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Form inputs often
// post values as strings.
func (c *Cents) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("domain: decode amount: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			*c = 0
			return nil
		}
		raw = s
	}
	v, err := ParseCents(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalYAML keeps seed files human readable.
func (c Cents) MarshalYAML() (any, error) {
	if c%100 == 0 {
		return int64(c / 100), nil
	}
	return float64(c) / 100, nil
}

// UnmarshalYAML reads plain numbers like `184500` or `50000.01`.
func (c *Cents) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("domain: decode amount: %w", err)
	}
	v, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
