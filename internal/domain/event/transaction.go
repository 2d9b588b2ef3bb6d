package event

const (
	AggregateType_Transaction = "Transaction"
	Event_TransactionBooked   = "Transaction.transactionBooked"
)

type TransactionBooked struct {
	Account1        string   `json:"account1"`
	Account2        string   `json:"account2"`
	Amount          int64    `json:"amount"`
	Currency        string   `json:"currency"`
	Subject         string   `json:"subject"`
	Notes           string   `json:"notes"`
	TransactionTime string   `json:"transactionTime"`
	Tags            []string `json:"tags"`
}

func (TransactionBooked) GetType() string {
	return Event_TransactionBooked
}
