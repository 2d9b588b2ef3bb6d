package entity

import (
	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/domain/vo"
)

// Transaction is one booked transfer: account1 was debited, account2 was
// credited. Immutable once recorded.
type Transaction struct {
	Account1        vo.AccountName
	Account2        vo.AccountName
	Money           vo.Money
	Subject         vo.Subject
	Notes           vo.Notes
	TransactionTime vo.TransactionTime
	Tags            []vo.Tag
}

// NewTransaction validates every field eagerly and aggregates all violations
// into one ValidationError.
func NewTransaction(
	rawAccount1, rawAccount2 string,
	amount vo.Amount, rawCurrency string,
	rawSubject, rawNotes, rawTime string,
	rawTags []string,
) (*Transaction, error) {
	verr := &domain.ValidationError{}

	account1, err := vo.ParseAccountName(rawAccount1)
	if err != nil {
		verr.Add("account1", err.Error())
	}
	account2, err := vo.ParseAccountName(rawAccount2)
	if err != nil {
		verr.Add("account2", err.Error())
	}
	currency, err := vo.ParseCurrency(rawCurrency)
	if err != nil {
		verr.Add("currency", err.Error())
	}
	subject, err := vo.ParseSubject(rawSubject)
	if err != nil {
		verr.Add("subject", err.Error())
	}
	txTime, err := vo.ParseTransactionTime(rawTime)
	if err != nil {
		verr.Add("transactionTime", err.Error())
	}
	tags := make([]vo.Tag, 0, len(rawTags))
	for i, raw := range rawTags {
		tag, err := vo.ParseTag(raw)
		if err != nil {
			verr.Addf("tags", "tag #%d: %s", i+1, err.Error())
			continue
		}
		tags = append(tags, tag)
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	return &Transaction{
		Account1:        account1,
		Account2:        account2,
		Money:           vo.NewMoney(amount, currency),
		Subject:         subject,
		Notes:           vo.Notes(rawNotes),
		TransactionTime: txTime,
		Tags:            tags,
	}, nil
}
