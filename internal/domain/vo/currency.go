package vo

import "github.com/quintans/faults"

// Currency is an ISO-4217 code from the supported set.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
	JPY Currency = "JPY"
)

// exponents maps a currency to the number of minor-unit digits.
var exponents = map[Currency]int32{
	EUR: 2,
	USD: 2,
	GBP: 2,
	CHF: 2,
	JPY: 0,
}

func ParseCurrency(raw string) (Currency, error) {
	c := Currency(raw)
	if _, ok := exponents[c]; !ok {
		return "", faults.Errorf("unknown currency: %q", raw)
	}
	return c, nil
}

// maxExponent is the finest minor-unit granularity across the supported set.
func maxExponent() int32 {
	var max int32
	for _, e := range exponents {
		if e > max {
			max = e
		}
	}
	return max
}

// Exponent returns the number of decimal places of the minor unit.
func (c Currency) Exponent() int32 {
	return exponents[c]
}

func (c Currency) String() string {
	return string(c)
}
