package readmodel

import (
	"sync"

	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/fabric"
)

// TransactionDTO mirrors the booked transaction in primitive form.
type TransactionDTO struct {
	Account1        string   `json:"account1"`
	Account2        string   `json:"account2"`
	Amount          int64    `json:"amount"`
	Currency        string   `json:"currency"`
	Subject         string   `json:"subject"`
	Notes           string   `json:"notes"`
	TransactionTime string   `json:"transactionTime"`
	Tags            []string `json:"tags"`
}

// TransactionList projects the booked transactions in booking order.
type TransactionList struct {
	mu   sync.RWMutex
	list []TransactionDTO
}

func NewTransactionList() *TransactionList {
	return &TransactionList{}
}

func (t *TransactionList) HandleEvent(_ fabric.Envelope, evt fabric.Typer) {
	e, ok := evt.(event.TransactionBooked)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.list = append(t.list, TransactionDTO{
		Account1:        e.Account1,
		Account2:        e.Account2,
		Amount:          e.Amount,
		Currency:        e.Currency,
		Subject:         e.Subject,
		Notes:           e.Notes,
		TransactionTime: e.TransactionTime,
		Tags:            e.Tags,
	})
}

func (t *TransactionList) Transactions() []TransactionDTO {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TransactionDTO, len(t.list))
	copy(out, t.list)
	return out
}
