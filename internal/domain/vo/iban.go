package vo

import (
	"regexp"
	"strings"

	"github.com/quintans/faults"
)

var (
	ibanPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{1,30}$`)
	bicPattern  = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// IBAN is an international bank account number, stored in electronic format
// (no spaces, upper case).
type IBAN string

func ParseIBAN(raw string) (IBAN, error) {
	v := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	if !ibanPattern.MatchString(v) {
		return "", faults.Errorf("not a valid IBAN: %q", raw)
	}
	if mod97(v[4:]+v[:4]) != 1 {
		return "", faults.Errorf("IBAN checksum failed: %q", raw)
	}
	return IBAN(v), nil
}

func (i IBAN) String() string {
	return string(i)
}

// mod97 computes ISO 7064 mod-97-10 over the rearranged IBAN, with letters
// substituted by their ordinal (A=10 .. Z=35).
func mod97(s string) int {
	rem := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			n := int(r-'A') + 10
			rem = (rem*100 + n) % 97
		} else {
			rem = (rem*10 + int(r-'0')) % 97
		}
	}
	return rem
}

// BIC is a SWIFT business identifier code, 8 or 11 characters.
type BIC string

func ParseBIC(raw string) (BIC, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if !bicPattern.MatchString(v) {
		return "", faults.Errorf("not a valid BIC: %q", raw)
	}
	return BIC(v), nil
}

func (b BIC) String() string {
	return string(b)
}
