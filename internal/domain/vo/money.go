package vo

import (
	"github.com/quintans/faults"
	"github.com/shopspring/decimal"
)

// Amount is a monetary amount in the minor unit of its currency, e.g. cents.
// Floating point never enters the books.
type Amount int64

// ParseAmount converts a major-unit decimal into the minor unit of the given
// currency. It fails if the value is not exactly representable, e.g. 0.005 USD
// or 0.5 JPY.
func ParseAmount(value decimal.Decimal, currency Currency) (Amount, error) {
	return parseAmount(value, currency.Exponent(), currency.String())
}

// CheckAmount validates representability against the finest minor unit any
// supported currency has. It lets amount violations surface even when the
// currency of a command failed to parse.
func CheckAmount(value decimal.Decimal) error {
	_, err := parseAmount(value, maxExponent(), "any supported currency")
	return err
}

func parseAmount(value decimal.Decimal, exponent int32, unit string) (Amount, error) {
	minor := value.Shift(exponent)
	if !minor.IsInteger() {
		return 0, faults.Errorf("amount %s is not representable in minor units of %s", value, unit)
	}
	b := minor.BigInt()
	if !b.IsInt64() {
		return 0, faults.Errorf("amount %s out of range", value)
	}
	return Amount(b.Int64()), nil
}

// Money pairs an Amount with its Currency. Arithmetic is only defined between
// equal currencies.
type Money struct {
	Amount   Amount   `json:"amount"`
	Currency Currency `json:"currency"`
}

func NewMoney(amount Amount, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, faults.Errorf("currency mismatch: cannot add %s to %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, faults.Errorf("currency mismatch: cannot subtract %s from %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// String renders the amount in major units, e.g. "12.34 USD".
func (m Money) String() string {
	d := decimal.New(int64(m.Amount), -m.Currency.Exponent())
	return d.StringFixed(m.Currency.Exponent()) + " " + m.Currency.String()
}
