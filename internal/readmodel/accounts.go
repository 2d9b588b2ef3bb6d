// Package readmodel holds the projections fed by the dispatch fabric. They
// subscribe to domain events and serve the query side; they never validate
// or reject anything.
package readmodel

import (
	"sync"

	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/fabric"
)

// AccountDTO is the flat, primitive view of a created account.
type AccountDTO struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Currency string         `json:"currency"`
	Balance  int64          `json:"balance"`
	Parent   string         `json:"parent,omitempty"`
	Tags     []string       `json:"tags"`
	Metadata event.Metadata `json:"metadata"`
}

// Accounts lists every created account in creation order.
type Accounts struct {
	mu    sync.RWMutex
	list  []*AccountDTO
	index map[string]*AccountDTO
}

func NewAccounts() *Accounts {
	return &Accounts{index: map[string]*AccountDTO{}}
}

func (a *Accounts) HandleEvent(_ fabric.Envelope, evt fabric.Typer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch e := evt.(type) {
	case event.AccountCreated:
		if _, ok := a.index[e.Name]; ok {
			return
		}
		dto := &AccountDTO{
			Name:     e.Name,
			Type:     e.Type,
			Currency: e.Currency,
			Tags:     []string{},
			Metadata: e.Metadata,
		}
		a.list = append(a.list, dto)
		a.index[e.Name] = dto
	case event.AccountsLinked:
		if dto, ok := a.index[e.SubAccountName]; ok {
			dto.Parent = e.ParentAccountName
		}
	case event.TagsAdded:
		if dto, ok := a.index[e.Name]; ok {
			dto.Tags = append(dto.Tags, e.Tags...)
		}
	case event.MoneyWithdrawn:
		if dto, ok := a.index[e.Name]; ok {
			dto.Balance -= e.Amount
		}
	case event.MoneyAdded:
		if dto, ok := a.index[e.Name]; ok {
			dto.Balance += e.Amount
		}
	}
}

func (a *Accounts) Accounts() []AccountDTO {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]AccountDTO, len(a.list))
	for i, dto := range a.list {
		out[i] = *dto
	}
	return out
}
