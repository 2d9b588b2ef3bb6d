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

// AccountDirectory owns all account records. It is the sole mutator of
// balances and the guardian of the account forest invariants. Commands are
// validated eagerly and fully before any event is recorded, so a failing
// command never applies partially.
type AccountDirectory struct {
	forest  entity.Forest
	version uint64
}

func NewAccountDirectory() *AccountDirectory {
	return &AccountDirectory{forest: entity.Forest{}}
}

func (d *AccountDirectory) AggregateType() string {
	return event.AggregateType_Account
}

func (d *AccountDirectory) Version() uint64 {
	return d.version
}

// Account looks up a single account. Read-side only.
func (d *AccountDirectory) Account(name vo.AccountName) (*entity.Account, bool) {
	acc, ok := d.forest[name]
	return acc, ok
}

func (d *AccountDirectory) HandleCommand(ctx context.Context, cmd fabric.Command) ([]fabric.Typer, error) {
	switch payload := cmd.Payload.(type) {
	case domain.CreateAccountCommand:
		return d.createAccount(payload)
	case domain.LinkAccountsCommand:
		return d.linkAccounts(payload)
	case domain.AddTagsCommand:
		return d.addTags(payload)
	case domain.BookTransferCommand:
		return d.bookTransfer(payload)
	default:
		return nil, faults.Errorf("unknown command %q for aggregate %s", cmd.Name, d.AggregateType())
	}
}

func (d *AccountDirectory) createAccount(cmd domain.CreateAccountCommand) ([]fabric.Typer, error) {
	log.WithFields(log.Fields{
		"method": "AccountDirectory.createAccount",
	}).Infof("creating account %q of type %q (%s)", cmd.Name, cmd.Type, cmd.Currency)

	_, err := entity.NewAccount(cmd.Name, cmd.Type, cmd.Currency, cmd.Metadata)

	if cmd.Name != "" {
		if _, exists := d.forest[vo.AccountName(cmd.Name)]; exists {
			verr, ok := err.(*domain.ValidationError)
			if !ok {
				verr = &domain.ValidationError{}
			}
			verr.Addf("name", "account with name %q already exists", cmd.Name)
			err = verr
		}
	}
	if err != nil {
		return nil, err
	}

	return []fabric.Typer{event.AccountCreated{
		Name:     cmd.Name,
		Type:     cmd.Type,
		Currency: cmd.Currency,
		Metadata: cmd.Metadata,
	}}, nil
}

func (d *AccountDirectory) linkAccounts(cmd domain.LinkAccountsCommand) ([]fabric.Typer, error) {
	log.WithFields(log.Fields{
		"method": "AccountDirectory.linkAccounts",
	}).Infof("linking %q under %q", cmd.SubAccountName, cmd.ParentAccountName)

	verr := &domain.ValidationError{}
	sub, err := vo.ParseAccountName(cmd.SubAccountName)
	if err != nil {
		verr.Add("subAccountName", err.Error())
	}
	parent, err := vo.ParseAccountName(cmd.ParentAccountName)
	if err != nil {
		verr.Add("parentAccountName", err.Error())
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if err := d.resolve(sub, parent); err != nil {
		return nil, err
	}
	if err := d.forest.CheckLink(sub, parent); err != nil {
		return nil, err
	}

	return []fabric.Typer{event.AccountsLinked{
		SubAccountName:    sub.String(),
		ParentAccountName: parent.String(),
	}}, nil
}

func (d *AccountDirectory) addTags(cmd domain.AddTagsCommand) ([]fabric.Typer, error) {
	name, err := vo.ParseAccountName(cmd.Name)
	if err != nil {
		verr := &domain.ValidationError{}
		verr.Add("name", err.Error())
		return nil, verr
	}
	acc, ok := d.forest[name]
	if !ok {
		return nil, &domain.NotFoundError{Names: []string{name.String()}}
	}

	verr := &domain.ValidationError{}
	tags := make([]vo.Tag, 0, len(cmd.Tags))
	for i, raw := range cmd.Tags {
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

	added := acc.AddTags(tags)
	if len(added) == 0 {
		// nothing actually grows the tag set, so no event either
		return nil, nil
	}

	primitives := make([]string, len(added))
	for i, t := range added {
		primitives[i] = string(t)
	}
	return []fabric.Typer{event.TagsAdded{Name: name.String(), Tags: primitives}}, nil
}

func (d *AccountDirectory) bookTransfer(cmd domain.BookTransferCommand) ([]fabric.Typer, error) {
	log.WithFields(log.Fields{
		"method": "AccountDirectory.bookTransfer",
	}).Infof("transferring %s %s from %q to %q", cmd.Amount, cmd.Currency, cmd.Account1, cmd.Account2)

	verr := &domain.ValidationError{}
	name1, err := vo.ParseAccountName(cmd.Account1)
	if err != nil {
		verr.Add("account1", err.Error())
	}
	name2, err := vo.ParseAccountName(cmd.Account2)
	if err != nil {
		verr.Add("account2", err.Error())
	}
	currency, err := vo.ParseCurrency(cmd.Currency)
	if err != nil {
		verr.Add("currency", err.Error())
	}
	var amount vo.Amount
	if currency != "" {
		amount, err = vo.ParseAmount(cmd.Amount, currency)
	} else {
		err = vo.CheckAmount(cmd.Amount)
	}
	if err != nil {
		verr.Add("amount", err.Error())
	}
	if name1 != "" && name1 == name2 {
		verr.Add("account2", "cannot transfer money from an account to itself")
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if err := d.resolve(name1, name2); err != nil {
		return nil, err
	}

	acc1, acc2 := d.forest[name1], d.forest[name2]
	if acc1.HasChildren() {
		verr.Addf("account1", "account %q has sub-accounts; only leaf accounts can take part in transfers", name1)
	}
	if acc2.HasChildren() {
		verr.Addf("account2", "account %q has sub-accounts; only leaf accounts can take part in transfers", name2)
	}
	if acc1.Currency != currency {
		verr.Addf("currency", "account %q is held in %s, not %s", name1, acc1.Currency, currency)
	}
	if acc2.Currency != currency {
		verr.Addf("currency", "account %q is held in %s, not %s", name2, acc2.Currency, currency)
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	// the dual emission from a single command is what makes the balance
	// halves of the transfer atomic within this aggregate
	return []fabric.Typer{
		event.MoneyWithdrawn{Name: name1.String(), Amount: int64(amount), Currency: currency.String()},
		event.MoneyAdded{Name: name2.String(), Amount: int64(amount), Currency: currency.String()},
	}, nil
}

// resolve reports every missing account reference in a single error.
func (d *AccountDirectory) resolve(names ...vo.AccountName) error {
	var missing []string
	for _, n := range names {
		if _, ok := d.forest[n]; !ok {
			missing = append(missing, n.String())
		}
	}
	if len(missing) > 0 {
		return &domain.NotFoundError{Names: missing}
	}
	return nil
}

// ApplyEvent folds a recorded event into the directory state. Events were
// fully validated before recording, so applying never fails.
func (d *AccountDirectory) ApplyEvent(e fabric.Typer) {
	switch evt := e.(type) {
	case event.AccountCreated:
		acc, err := entity.NewAccount(evt.Name, evt.Type, evt.Currency, evt.Metadata)
		if err != nil {
			log.WithFields(log.Fields{
				"method": "AccountDirectory.ApplyEvent",
			}).Errorf("dropping unreplayable %s event: %v", evt.GetType(), err)
			return
		}
		if _, exists := d.forest[acc.Name]; exists {
			return
		}
		d.forest[acc.Name] = acc
	case event.AccountsLinked:
		d.forest.CommitLink(vo.AccountName(evt.SubAccountName), vo.AccountName(evt.ParentAccountName))
	case event.TagsAdded:
		if acc, ok := d.forest[vo.AccountName(evt.Name)]; ok {
			tags := make([]vo.Tag, len(evt.Tags))
			for i, t := range evt.Tags {
				tags[i] = vo.Tag(t)
			}
			acc.ApplyTags(tags)
		}
	case event.MoneyWithdrawn:
		if acc, ok := d.forest[vo.AccountName(evt.Name)]; ok {
			acc.ApplyWithdrawal(vo.NewMoney(vo.Amount(evt.Amount), vo.Currency(evt.Currency)))
		}
	case event.MoneyAdded:
		if acc, ok := d.forest[vo.AccountName(evt.Name)]; ok {
			acc.ApplyDeposit(vo.NewMoney(vo.Amount(evt.Amount), vo.Currency(evt.Currency)))
		}
	default:
		return
	}
	d.version++
}
