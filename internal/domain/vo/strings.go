package vo

import (
	"strings"
	"time"

	"github.com/quintans/faults"
)

// AccountName uniquely identifies an account. Case sensitive, immutable.
type AccountName string

func ParseAccountName(raw string) (AccountName, error) {
	if strings.TrimSpace(raw) == "" {
		return "", faults.New("account name must not be empty")
	}
	return AccountName(raw), nil
}

func (n AccountName) String() string {
	return string(n)
}

// Tag is a non-empty, case-sensitive label.
type Tag string

func ParseTag(raw string) (Tag, error) {
	if strings.TrimSpace(raw) == "" {
		return "", faults.New("tag must not be empty")
	}
	return Tag(raw), nil
}

// Subject is the mandatory one-line description of a transaction.
type Subject string

func ParseSubject(raw string) (Subject, error) {
	if strings.TrimSpace(raw) == "" {
		return "", faults.New("subject must not be empty")
	}
	return Subject(raw), nil
}

// Notes is free text attached to a transaction. May be empty.
type Notes string

// TransactionTime is the booking time of a transaction.
type TransactionTime time.Time

func ParseTransactionTime(raw string) (TransactionTime, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return TransactionTime{}, faults.Errorf("invalid transaction time %q: %w", raw, err)
	}
	if t.IsZero() {
		return TransactionTime{}, faults.New("transaction time must not be zero")
	}
	return TransactionTime(t), nil
}

func (t TransactionTime) Time() time.Time {
	return time.Time(t)
}

func (t TransactionTime) String() string {
	return time.Time(t).Format(time.RFC3339Nano)
}

// Institute is the name of a financial institute.
type Institute string

func ParseInstitute(raw string) (Institute, error) {
	if strings.TrimSpace(raw) == "" {
		return "", faults.New("institute must not be empty")
	}
	return Institute(raw), nil
}

// DebitorName identifies the other party of a debit or liability account.
type DebitorName string

func ParseDebitorName(raw string) (DebitorName, error) {
	if strings.TrimSpace(raw) == "" {
		return "", faults.New("debitor name must not be empty")
	}
	return DebitorName(raw), nil
}

// CardHolder is the name printed on a credit card.
type CardHolder string

func ParseCardHolder(raw string) (CardHolder, error) {
	if strings.TrimSpace(raw) == "" {
		return "", faults.New("card holder must not be empty")
	}
	return CardHolder(raw), nil
}
