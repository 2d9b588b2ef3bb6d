package vo

import (
	"net/mail"
	"strings"

	"github.com/quintans/faults"
)

// EmailAddress identifies a PayPal wallet.
type EmailAddress string

func ParseEmailAddress(raw string) (EmailAddress, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", faults.Errorf("not a valid email address: %q", raw)
	}
	return EmailAddress(addr.Address), nil
}

func (e EmailAddress) String() string {
	return string(e)
}
