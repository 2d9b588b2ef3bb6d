package event

const (
	AggregateType_Account     = "Account"
	Event_AccountCreated      = "Account.accountCreated"
	Event_AccountsLinked      = "Account.accountsLinked"
	Event_TagsAdded           = "Account.tagsAdded"
	Event_MoneyWithdrawn      = "Account.moneyWithdrawn"
	Event_MoneyAdded          = "Account.moneyAdded"
)

// Metadata carries the kind-specific account metadata in primitive form,
// keyed by account type. Exactly the entry matching the account's type is set.
type Metadata struct {
	BankAccount *MetadataBankAccount `json:"bankaccount,omitempty"`
	CreditCard  *MetadataCreditCard  `json:"creditcard,omitempty"`
	PayPal      *MetadataPayPal      `json:"paypal,omitempty"`
	Debit       *MetadataDebit       `json:"debit,omitempty"`
	Liability   *MetadataLiability   `json:"liability,omitempty"`
}

type MetadataBankAccount struct {
	Institute string `json:"institute"`
	Iban      string `json:"iban"`
	Bic       string `json:"bic"`
}

type MetadataCreditCard struct {
	Institute string `json:"institute"`
	Type      string `json:"type"`
	Holder    string `json:"holder"`
	Number    string `json:"number"`
}

type MetadataPayPal struct {
	EmailAddress string `json:"emailAddress"`
}

type MetadataDebit struct {
	DebitorName string `json:"debitorName"`
}

type MetadataLiability struct {
	DebitorName string `json:"debitorName"`
}

type AccountCreated struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Currency string   `json:"currency"`
	Metadata Metadata `json:"metadata"`
}

func (AccountCreated) GetType() string {
	return Event_AccountCreated
}

type AccountsLinked struct {
	SubAccountName    string `json:"subAccountName"`
	ParentAccountName string `json:"parentAccountName"`
}

func (AccountsLinked) GetType() string {
	return Event_AccountsLinked
}

type TagsAdded struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func (TagsAdded) GetType() string {
	return Event_TagsAdded
}

type MoneyWithdrawn struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (MoneyWithdrawn) GetType() string {
	return Event_MoneyWithdrawn
}

type MoneyAdded struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (MoneyAdded) GetType() string {
	return Event_MoneyAdded
}
