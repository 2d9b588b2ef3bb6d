package event

import (
	"github.com/quintans/faults"

	"github.com/Rekhyt/money-bob/internal/fabric"
)

type Factory struct{}

func (Factory) NewEvent(kind string) (fabric.Typer, error) {
	var e fabric.Typer
	switch kind {
	case Event_AccountCreated:
		e = &AccountCreated{}
	case Event_AccountsLinked:
		e = &AccountsLinked{}
	case Event_TagsAdded:
		e = &TagsAdded{}
	case Event_MoneyWithdrawn:
		e = &MoneyWithdrawn{}
	case Event_MoneyAdded:
		e = &MoneyAdded{}
	case Event_TransactionBooked:
		e = &TransactionBooked{}
	}
	if e == nil {
		return nil, faults.Errorf("unknown event kind: %s", kind)
	}
	return e, nil
}
