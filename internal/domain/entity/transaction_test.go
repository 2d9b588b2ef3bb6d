package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/domain/entity"
	"github.com/Rekhyt/money-bob/internal/domain/vo"
)

func TestNewTransaction(t *testing.T) {
	tx, err := entity.NewTransaction(
		"account-1", "account-2", 500, "USD",
		"groceries", "weekly shopping", "2024-05-01T12:00:00Z",
		[]string{"food"},
	)
	require.NoError(t, err)

	assert.Equal(t, vo.AccountName("account-1"), tx.Account1)
	assert.Equal(t, vo.NewMoney(500, vo.USD), tx.Money)
	assert.Equal(t, vo.Subject("groceries"), tx.Subject)
	want, _ := time.Parse(time.RFC3339, "2024-05-01T12:00:00Z")
	assert.Equal(t, want, tx.TransactionTime.Time())
}

func TestNewTransactionCollectsAllViolations(t *testing.T) {
	_, err := entity.NewTransaction(
		"", "", 500, "XXX",
		"", "", "not-a-time",
		[]string{""},
	)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"account1", "account2", "currency", "subject", "transactionTime", "tags",
	}, fieldNames(verr))
}

func TestNewTransactionNotesMayBeEmpty(t *testing.T) {
	_, err := entity.NewTransaction(
		"account-1", "account-2", 1, "EUR",
		"subject", "", "2024-05-01T12:00:00Z", nil,
	)
	assert.NoError(t, err)
}
