package app

import (
	"context"

	"github.com/quintans/faults"
	log "github.com/sirupsen/logrus"

	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/domain/entity"
	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/domain/vo"
	"github.com/Rekhyt/money-bob/internal/fabric"
)

// TransactionLedger records booked transfers for audit and reporting. It is
// append-only, trusts its caller about account state, and knows nothing
// about balances.
type TransactionLedger struct {
	transactions []*entity.Transaction
	version      uint64
}

func NewTransactionLedger() *TransactionLedger {
	return &TransactionLedger{}
}

func (l *TransactionLedger) AggregateType() string {
	return event.AggregateType_Transaction
}

func (l *TransactionLedger) Version() uint64 {
	return l.version
}

// Transactions returns the booked transactions in booking order. Read-side
// only; the returned slice must not be mutated.
func (l *TransactionLedger) Transactions() []*entity.Transaction {
	return l.transactions
}

func (l *TransactionLedger) HandleCommand(ctx context.Context, cmd fabric.Command) ([]fabric.Typer, error) {
	payload, ok := cmd.Payload.(domain.RecordTransactionCommand)
	if !ok {
		return nil, faults.Errorf("unknown command %q for aggregate %s", cmd.Name, l.AggregateType())
	}
	return l.recordTransaction(payload)
}

func (l *TransactionLedger) recordTransaction(cmd domain.RecordTransactionCommand) ([]fabric.Typer, error) {
	log.WithFields(log.Fields{
		"method": "TransactionLedger.recordTransaction",
	}).Infof("recording transaction %q: %s %s from %q to %q", cmd.Subject, cmd.Amount, cmd.Currency, cmd.Account1, cmd.Account2)

	// currency errors are reported by NewTransaction; without a valid
	// currency the amount is still checked against the finest minor unit
	var amount vo.Amount
	var amountErr error
	if currency, err := vo.ParseCurrency(cmd.Currency); err == nil {
		amount, amountErr = vo.ParseAmount(cmd.Amount, currency)
	} else {
		amountErr = vo.CheckAmount(cmd.Amount)
	}

	tx, txErr := entity.NewTransaction(
		cmd.Account1, cmd.Account2, amount, cmd.Currency,
		cmd.Subject, cmd.Notes, cmd.TransactionTime, cmd.Tags,
	)
	if amountErr != nil {
		verr, ok := txErr.(*domain.ValidationError)
		if !ok {
			verr = &domain.ValidationError{}
		}
		verr.Add("amount", amountErr.Error())
		txErr = verr
	}
	if txErr != nil {
		return nil, txErr
	}

	return []fabric.Typer{event.TransactionBooked{
		Account1:        tx.Account1.String(),
		Account2:        tx.Account2.String(),
		Amount:          int64(tx.Money.Amount),
		Currency:        tx.Money.Currency.String(),
		Subject:         string(tx.Subject),
		Notes:           string(tx.Notes),
		TransactionTime: tx.TransactionTime.String(),
		Tags:            cmd.Tags,
	}}, nil
}

// ApplyEvent appends the booked transaction. A Transaction is never edited
// or removed afterwards.
func (l *TransactionLedger) ApplyEvent(e fabric.Typer) {
	evt, ok := e.(event.TransactionBooked)
	if !ok {
		return
	}

	amount := vo.Amount(evt.Amount)
	tx, err := entity.NewTransaction(
		evt.Account1, evt.Account2, amount, evt.Currency,
		evt.Subject, evt.Notes, evt.TransactionTime, evt.Tags,
	)
	if err != nil {
		log.WithFields(log.Fields{
			"method": "TransactionLedger.ApplyEvent",
		}).Errorf("dropping unreplayable %s event: %v", evt.GetType(), err)
		return
	}
	l.transactions = append(l.transactions, tx)
	l.version++
}
