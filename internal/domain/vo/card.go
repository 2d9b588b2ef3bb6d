package vo

import (
	"strings"

	"github.com/quintans/faults"
)

// CardType is the brand of a credit card.
type CardType string

const (
	Visa            CardType = "visa"
	Mastercard      CardType = "mastercard"
	AmericanExpress CardType = "american-express"
	DinersClub      CardType = "diners-club"
	Discover        CardType = "discover"
	JCB             CardType = "jcb"
	UnionPay        CardType = "unionpay"
	Maestro         CardType = "maestro"
	Mir             CardType = "mir"
	Elo             CardType = "elo"
)

var cardTypes = map[CardType]struct{}{
	Visa: {}, Mastercard: {}, AmericanExpress: {}, DinersClub: {},
	Discover: {}, JCB: {}, UnionPay: {}, Maestro: {}, Mir: {}, Elo: {},
}

func ParseCardType(raw string) (CardType, error) {
	t := CardType(strings.ToLower(raw))
	if _, ok := cardTypes[t]; !ok {
		return "", faults.Errorf("unknown card type: %q", raw)
	}
	return t, nil
}

// CardNumber is a credit card number, stored without separators.
type CardNumber string

func ParseCardNumber(raw string) (CardNumber, error) {
	v := strings.ReplaceAll(raw, " ", "")
	v = strings.ReplaceAll(v, "-", "")
	if len(v) < 12 || len(v) > 19 {
		return "", faults.Errorf("not a valid credit card number: %q", raw)
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return "", faults.Errorf("not a valid credit card number: %q", raw)
		}
	}
	if !passesLuhn(v) {
		return "", faults.Errorf("credit card number failed the Luhn check: %q", raw)
	}
	return CardNumber(v), nil
}

func (n CardNumber) String() string {
	return string(n)
}

// passesLuhn is the standard mod-10 check used by all card issuers.
func passesLuhn(number string) bool {
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		n := int(number[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
