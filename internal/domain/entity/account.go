package entity

import (
	"github.com/quintans/faults"

	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/domain/vo"
)

// AccountType discriminates the account kind variants.
type AccountType string

const (
	TypeBankAccount AccountType = "bankaccount"
	TypeCreditCard  AccountType = "creditcard"
	TypePayPal      AccountType = "paypal"
	TypeDebit       AccountType = "debit"
	TypeLiability   AccountType = "liability"
)

var accountTypes = map[AccountType]struct{}{
	TypeBankAccount: {},
	TypeCreditCard:  {},
	TypePayPal:      {},
	TypeDebit:       {},
	TypeLiability:   {},
}

func ParseAccountType(raw string) (AccountType, error) {
	t := AccountType(raw)
	if _, ok := accountTypes[t]; !ok {
		return "", faults.Errorf("must be one of bankaccount, creditcard, paypal, debit, liability, got %q", raw)
	}
	return t, nil
}

// Metadata is the kind-specific part of an account.
type Metadata interface {
	isMetadata()
}

type BankAccountMetadata struct {
	Institute vo.Institute
	IBAN      vo.IBAN
	BIC       vo.BIC
}

type CreditCardMetadata struct {
	Institute vo.Institute
	CardType  vo.CardType
	Holder    vo.CardHolder
	Number    vo.CardNumber
}

type PayPalMetadata struct {
	EmailAddress vo.EmailAddress
}

type DebitMetadata struct {
	DebitorName vo.DebitorName
}

type LiabilityMetadata struct {
	DebitorName vo.DebitorName
}

func (BankAccountMetadata) isMetadata() {}
func (CreditCardMetadata) isMetadata()  {}
func (PayPalMetadata) isMetadata()      {}
func (DebitMetadata) isMetadata()       {}
func (LiabilityMetadata) isMetadata()   {}

// Account is one node of the account forest. Balance starts at zero and is
// only ever mutated through completed transfer events.
type Account struct {
	Name     vo.AccountName
	Type     AccountType
	Currency vo.Currency
	Balance  vo.Money
	Parent   vo.AccountName // empty means root
	Children []vo.AccountName
	Tags     []vo.Tag
	Metadata Metadata
}

// NewAccount validates all fields eagerly and returns every violation
// aggregated in a single ValidationError.
func NewAccount(rawName, rawType, rawCurrency string, md event.Metadata) (*Account, error) {
	verr := &domain.ValidationError{}

	name, err := vo.ParseAccountName(rawName)
	if err != nil {
		verr.Add("name", "must not be an empty string")
	}

	typ, err := ParseAccountType(rawType)
	if err != nil {
		verr.Add("type", err.Error())
	}

	currency, err := vo.ParseCurrency(rawCurrency)
	if err != nil {
		verr.Addf("currency", "unknown currency: %q", rawCurrency)
	}

	var metadata Metadata
	if typ != "" {
		metadata = parseMetadata(typ, md, verr)
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	return &Account{
		Name:     name,
		Type:     typ,
		Currency: currency,
		Balance:  vo.NewMoney(0, currency),
		Metadata: metadata,
	}, nil
}

func parseMetadata(typ AccountType, md event.Metadata, verr *domain.ValidationError) Metadata {
	switch typ {
	case TypeBankAccount:
		if md.BankAccount == nil {
			verr.Add("metadata", "no metadata provided for account type bankaccount")
			return nil
		}
		return parseBankAccount(*md.BankAccount, verr)
	case TypeCreditCard:
		if md.CreditCard == nil {
			verr.Add("metadata", "no metadata provided for account type creditcard")
			return nil
		}
		return parseCreditCard(*md.CreditCard, verr)
	case TypePayPal:
		if md.PayPal == nil {
			verr.Add("metadata", "no metadata provided for account type paypal")
			return nil
		}
		email, err := vo.ParseEmailAddress(md.PayPal.EmailAddress)
		if err != nil {
			verr.Add("metadata.paypal.emailAddress", err.Error())
			return nil
		}
		return PayPalMetadata{EmailAddress: email}
	case TypeDebit:
		if md.Debit == nil {
			verr.Add("metadata", "no metadata provided for account type debit")
			return nil
		}
		name, err := vo.ParseDebitorName(md.Debit.DebitorName)
		if err != nil {
			verr.Add("metadata.debit.debitorName", err.Error())
			return nil
		}
		return DebitMetadata{DebitorName: name}
	case TypeLiability:
		if md.Liability == nil {
			verr.Add("metadata", "no metadata provided for account type liability")
			return nil
		}
		name, err := vo.ParseDebitorName(md.Liability.DebitorName)
		if err != nil {
			verr.Add("metadata.liability.debitorName", err.Error())
			return nil
		}
		return LiabilityMetadata{DebitorName: name}
	}
	return nil
}

func parseBankAccount(md event.MetadataBankAccount, verr *domain.ValidationError) Metadata {
	before := len(verr.Fields)

	institute, err := vo.ParseInstitute(md.Institute)
	if err != nil {
		verr.Add("metadata.bankaccount.institute", err.Error())
	}
	iban, err := vo.ParseIBAN(md.Iban)
	if err != nil {
		verr.Add("metadata.bankaccount.iban", err.Error())
	}
	bic, err := vo.ParseBIC(md.Bic)
	if err != nil {
		verr.Add("metadata.bankaccount.bic", err.Error())
	}

	if len(verr.Fields) > before {
		return nil
	}
	return BankAccountMetadata{Institute: institute, IBAN: iban, BIC: bic}
}

func parseCreditCard(md event.MetadataCreditCard, verr *domain.ValidationError) Metadata {
	before := len(verr.Fields)

	institute, err := vo.ParseInstitute(md.Institute)
	if err != nil {
		verr.Add("metadata.creditcard.institute", err.Error())
	}
	cardType, err := vo.ParseCardType(md.Type)
	if err != nil {
		verr.Add("metadata.creditcard.type", err.Error())
	}
	holder, err := vo.ParseCardHolder(md.Holder)
	if err != nil {
		verr.Add("metadata.creditcard.holder", err.Error())
	}
	number, err := vo.ParseCardNumber(md.Number)
	if err != nil {
		verr.Add("metadata.creditcard.number", err.Error())
	}

	if len(verr.Fields) > before {
		return nil
	}
	return CreditCardMetadata{Institute: institute, CardType: cardType, Holder: holder, Number: number}
}

// HasChildren reports whether the account aggregates sub-accounts. Accounts
// with children never take part in transfers.
func (a *Account) HasChildren() bool {
	return len(a.Children) > 0
}

// AddTags returns the subset of tags that are actually new, preserving first
// occurrence order. Duplicates within the call or against existing tags are
// dropped silently.
func (a *Account) AddTags(tags []vo.Tag) []vo.Tag {
	seen := map[vo.Tag]struct{}{}
	for _, t := range a.Tags {
		seen[t] = struct{}{}
	}
	var added []vo.Tag
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		added = append(added, t)
	}
	return added
}

// ApplyTags folds a TagsAdded event into the account.
func (a *Account) ApplyTags(tags []vo.Tag) {
	a.Tags = append(a.Tags, a.AddTags(tags)...)
}

// ApplyDeposit and ApplyWithdrawal fold transfer events into the balance.
// Events were validated before recording, so a currency mismatch here cannot
// happen.
func (a *Account) ApplyDeposit(m vo.Money) {
	sum, _ := a.Balance.Add(m)
	a.Balance = sum
}

func (a *Account) ApplyWithdrawal(m vo.Money) {
	diff, _ := a.Balance.Subtract(m)
	a.Balance = diff
}
