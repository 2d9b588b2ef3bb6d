package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/fabric"
)

// Command names accepted by the aggregates and the saga.
const (
	Command_CreateAccount   = "Account.createAccount"
	Command_LinkAccounts    = "Account.linkAccounts"
	Command_AddTags         = "Account.addTags"
	Command_BookTransfer    = "Account.bookTransaction"
	Command_RecordTransfer  = "Transaction.bookTransaction"
	Command_BookTransaction = "BookTransaction.bookTransaction"
)

type CreateAccountCommand struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Currency string         `json:"currency"`
	Metadata event.Metadata `json:"metadata"`
}

type LinkAccountsCommand struct {
	SubAccountName    string `json:"subAccountName"`
	ParentAccountName string `json:"parentAccountName"`
}

type AddTagsCommand struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// BookTransferCommand moves money between two leaf accounts. Amount is in
// major units; it must be exactly representable in the currency's minor unit.
type BookTransferCommand struct {
	Account1 string          `json:"account1"`
	Account2 string          `json:"account2"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// RecordTransactionCommand appends the audit record of a transfer to the
// ledger.
type RecordTransactionCommand struct {
	Account1        string          `json:"account1"`
	Account2        string          `json:"account2"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Subject         string          `json:"subject"`
	Notes           string          `json:"notes"`
	TransactionTime string          `json:"transactionTime"`
	Tags            []string        `json:"tags"`
}

// BookTransactionCommand is the saga entry point: balance mutation plus
// ledger record, atomic via compensation.
type BookTransactionCommand struct {
	Account1        string          `json:"account1"`
	Account2        string          `json:"account2"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Subject         string          `json:"subject"`
	Notes           string          `json:"notes"`
	TransactionTime string          `json:"transactionTime"`
	Tags            []string        `json:"tags"`
}

// Dispatcher is what the aggregates' callers see of the fabric.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd fabric.Command) error
	Version(aggregateType string) (uint64, error)
}

// BookTransactionService orchestrates the transfer saga.
type BookTransactionService interface {
	BookTransaction(ctx context.Context, cmd BookTransactionCommand) (uuid.UUID, error)
}
