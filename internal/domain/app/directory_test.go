package app_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/domain/app"
	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/domain/vo"
	"github.com/Rekhyt/money-bob/internal/fabric"
)

func debitMetadata() event.Metadata {
	return event.Metadata{Debit: &event.MetadataDebit{DebitorName: "bob"}}
}

// exec runs a command the way the fabric would: validate, then fold the
// resulting events into the aggregate.
func exec(t *testing.T, d *app.AccountDirectory, name string, payload any) []fabric.Typer {
	t.Helper()
	events, err := d.HandleCommand(context.Background(), fabric.NewCommand(name, payload))
	require.NoError(t, err)
	for _, e := range events {
		d.ApplyEvent(e)
	}
	return events
}

func createAccount(t *testing.T, d *app.AccountDirectory, name string) {
	t.Helper()
	exec(t, d, domain.Command_CreateAccount, domain.CreateAccountCommand{
		Name: name, Type: "debit", Currency: "USD", Metadata: debitMetadata(),
	})
}

func TestCreateAccount(t *testing.T) {
	d := app.NewAccountDirectory()

	events := exec(t, d, domain.Command_CreateAccount, domain.CreateAccountCommand{
		Name: "account-1", Type: "debit", Currency: "USD", Metadata: debitMetadata(),
	})

	require.Len(t, events, 1)
	created, ok := events[0].(event.AccountCreated)
	require.True(t, ok)
	assert.Equal(t, "account-1", created.Name)

	acc, ok := d.Account("account-1")
	require.True(t, ok)
	assert.Equal(t, vo.NewMoney(0, vo.USD), acc.Balance)
	assert.Equal(t, uint64(1), d.Version())
}

func TestCreateAccountDuplicateName(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_CreateAccount,
		domain.CreateAccountCommand{Name: "account-1", Type: "debit", Currency: "USD", Metadata: debitMetadata()},
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Contains(t, verr.Fields[0].Message, "already exists")
}

func TestCreateAccountInvalidAggregates(t *testing.T) {
	d := app.NewAccountDirectory()

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_CreateAccount,
		domain.CreateAccountCommand{Name: "", Type: "wallet", Currency: "USD", Metadata: event.Metadata{}},
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2) // name and type
}

func TestLinkAccounts(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")
	createAccount(t, d, "account-2")

	events := exec(t, d, domain.Command_LinkAccounts, domain.LinkAccountsCommand{
		SubAccountName: "account-1", ParentAccountName: "account-2",
	})
	require.Len(t, events, 1)

	acc, _ := d.Account("account-1")
	assert.Equal(t, vo.AccountName("account-2"), acc.Parent)

	// the reverse link must close a circle
	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_LinkAccounts,
		domain.LinkAccountsCommand{SubAccountName: "account-2", ParentAccountName: "account-1"},
	))
	var cycleErr *domain.CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestLinkAccountsReportsAllMissing(t *testing.T) {
	d := app.NewAccountDirectory()

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_LinkAccounts,
		domain.LinkAccountsCommand{SubAccountName: "nope-1", ParentAccountName: "nope-2"},
	))

	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, []string{"nope-1", "nope-2"}, nfErr.Names)
}

func TestAddTags(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")

	events := exec(t, d, domain.Command_AddTags, domain.AddTagsCommand{
		Name: "account-1", Tags: []string{"a", "b", "a"},
	})
	require.Len(t, events, 1)
	assert.Equal(t, []string{"a", "b"}, events[0].(event.TagsAdded).Tags)

	// all duplicates: no growth, no event
	events = exec(t, d, domain.Command_AddTags, domain.AddTagsCommand{
		Name: "account-1", Tags: []string{"a", "b"},
	})
	assert.Empty(t, events)

	// empty tag list is a no-op
	events = exec(t, d, domain.Command_AddTags, domain.AddTagsCommand{Name: "account-1"})
	assert.Empty(t, events)

	acc, _ := d.Account("account-1")
	assert.Equal(t, []vo.Tag{"a", "b"}, acc.Tags)
}

func TestAddTagsValidation(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_AddTags,
		domain.AddTagsCommand{Name: "account-1", Tags: []string{""}},
	))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_AddTags,
		domain.AddTagsCommand{Name: "missing", Tags: []string{"a"}},
	))
	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestBookTransfer(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")
	createAccount(t, d, "account-2")

	events := exec(t, d, domain.Command_BookTransfer, domain.BookTransferCommand{
		Account1: "account-1", Account2: "account-2",
		Amount: decimal.NewFromInt(5), Currency: "USD",
	})

	// withdrawal strictly before deposit, both from the one command
	require.Len(t, events, 2)
	withdrawn, ok := events[0].(event.MoneyWithdrawn)
	require.True(t, ok)
	assert.Equal(t, int64(500), withdrawn.Amount)
	added, ok := events[1].(event.MoneyAdded)
	require.True(t, ok)
	assert.Equal(t, "account-2", added.Name)

	acc1, _ := d.Account("account-1")
	acc2, _ := d.Account("account-2")
	assert.Equal(t, vo.Amount(-500), acc1.Balance.Amount)
	assert.Equal(t, vo.Amount(500), acc2.Balance.Amount)
}

func TestBookTransferRejectsAggregators(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")
	createAccount(t, d, "account-2")
	createAccount(t, d, "sub")
	exec(t, d, domain.Command_LinkAccounts, domain.LinkAccountsCommand{
		SubAccountName: "sub", ParentAccountName: "account-1",
	})

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_BookTransfer,
		domain.BookTransferCommand{
			Account1: "account-1", Account2: "account-2",
			Amount: decimal.NewFromInt(5), Currency: "USD",
		},
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "account1", verr.Fields[0].Field)

	// rejection leaves balances untouched
	acc1, _ := d.Account("account-1")
	acc2, _ := d.Account("account-2")
	assert.True(t, acc1.Balance.IsZero())
	assert.True(t, acc2.Balance.IsZero())
}

func TestBookTransferCurrencyMustMatchBothAccounts(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")
	exec(t, d, domain.Command_CreateAccount, domain.CreateAccountCommand{
		Name: "account-2", Type: "debit", Currency: "EUR", Metadata: debitMetadata(),
	})

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_BookTransfer,
		domain.BookTransferCommand{
			Account1: "account-1", Account2: "account-2",
			Amount: decimal.NewFromInt(5), Currency: "USD",
		},
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "currency", verr.Fields[0].Field)
}

func TestBookTransferRejectsFractionalMinorUnits(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")
	createAccount(t, d, "account-2")

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_BookTransfer,
		domain.BookTransferCommand{
			Account1: "account-1", Account2: "account-2",
			Amount: decimal.RequireFromString("0.005"), Currency: "USD",
		},
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Fields[0].Field)
}

func TestBookTransferReportsAmountDespiteBadCurrency(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")
	createAccount(t, d, "account-2")

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_BookTransfer,
		domain.BookTransferCommand{
			Account1: "account-1", Account2: "account-2",
			Amount: decimal.RequireFromString("0.005"), Currency: "XXX",
		},
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	assert.Contains(t, fields, "currency")
	assert.Contains(t, fields, "amount")
}

func TestBookTransferRejectsSelfTransfer(t *testing.T) {
	d := app.NewAccountDirectory()
	createAccount(t, d, "account-1")

	_, err := d.HandleCommand(context.Background(), fabric.NewCommand(
		domain.Command_BookTransfer,
		domain.BookTransferCommand{
			Account1: "account-1", Account2: "account-1",
			Amount: decimal.NewFromInt(1), Currency: "USD",
		},
	))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "account2", verr.Fields[0].Field)
}
