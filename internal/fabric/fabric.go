// Package fabric is the in-process dispatch fabric: it delivers commands to
// aggregates one at a time per aggregate, appends the resulting events to an
// append-only log before acknowledging the dispatch, notifies subscribers,
// and replays the historical log through the aggregates' pure apply
// functions on startup.
package fabric

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quintans/faults"
)

// Typer is implemented by every domain event.
type Typer interface {
	GetType() string
}

// AnyVersion disables the optimistic concurrency check of a command.
const AnyVersion = ^uint64(0)

// Command is a named request targeting a single aggregate. The aggregate is
// derived from the name prefix, e.g. "Account.createAccount" -> "Account".
// Build commands with NewCommand unless the version check is wanted; a
// zero-valued ExpectedVersion literally expects version 0.
type Command struct {
	Name            string
	Time            time.Time
	ExpectedVersion uint64
	Payload         any
}

func NewCommand(name string, payload any) Command {
	return Command{
		Name:            name,
		Time:            time.Now().UTC(),
		ExpectedVersion: AnyVersion,
		Payload:         payload,
	}
}

// Aggregate is a consistency boundary. HandleCommand validates eagerly and
// returns the events to record without mutating state; ApplyEvent folds an
// already-recorded event into state and must not fail.
type Aggregate interface {
	AggregateType() string
	HandleCommand(ctx context.Context, cmd Command) ([]Typer, error)
	ApplyEvent(e Typer)
	Version() uint64
}

// Envelope is a recorded event as it sits in the log.
type Envelope struct {
	ID            uuid.UUID `json:"id"`
	Sequence      uint64    `json:"sequence"`
	AggregateType string    `json:"aggregateType"`
	Kind          string    `json:"kind"`
	OccurredAt    time.Time `json:"occurredAt"`
	Body          []byte    `json:"body"`
}

// Subscriber receives every recorded event, after it was appended to the log
// and applied to its aggregate.
type Subscriber interface {
	HandleEvent(e Envelope, evt Typer)
}

// ConflictFunc builds the error returned on a stale expected version. The
// fabric stays free of domain error types.
type ConflictFunc func(aggregateType string, expected, actual uint64) error

type registration struct {
	mu  sync.Mutex // single-writer discipline per aggregate
	agg Aggregate
}

type Dispatcher struct {
	codec    Codec
	conflict ConflictFunc

	regMu sync.RWMutex
	regs  map[string]*registration

	logMu sync.Mutex
	log   []Envelope

	subMu sync.RWMutex
	subs  []Subscriber

	readyMu sync.RWMutex
	ready   bool
}

func NewDispatcher(codec Codec, conflict ConflictFunc) *Dispatcher {
	return &Dispatcher{
		codec:    codec,
		conflict: conflict,
		regs:     map[string]*registration{},
	}
}

func (d *Dispatcher) Register(agg Aggregate) {
	d.regMu.Lock()
	defer d.regMu.Unlock()
	d.regs[agg.AggregateType()] = &registration{agg: agg}
}

func (d *Dispatcher) Subscribe(s Subscriber) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.subs = append(d.subs, s)
}

// Replay folds historical events into the registered aggregates and
// subscribers. Must be called exactly once, before any Dispatch; with no
// history an empty slice is fine.
func (d *Dispatcher) Replay(events []Envelope) error {
	d.readyMu.Lock()
	defer d.readyMu.Unlock()
	if d.ready {
		return faults.New("fabric already replayed")
	}

	for _, e := range events {
		evt, err := d.codec.Decode(e.Kind, e.Body)
		if err != nil {
			return faults.Errorf("replaying event %s (%s): %w", e.ID, e.Kind, err)
		}
		reg, err := d.registration(e.AggregateType)
		if err != nil {
			return err
		}
		reg.agg.ApplyEvent(evt)

		d.logMu.Lock()
		d.log = append(d.log, e)
		d.logMu.Unlock()

		d.publish(e, evt)
	}

	d.ready = true
	return nil
}

// Dispatch routes a command to its aggregate, holding that aggregate's lock
// for the whole validate-record-apply round so invariant checks never race a
// concurrent mutation of the same aggregate.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	d.readyMu.RLock()
	ready := d.ready
	d.readyMu.RUnlock()
	if !ready {
		return faults.New("fabric has not replayed history yet")
	}

	aggType := AggregateTypeOf(cmd.Name)
	reg, err := d.registration(aggType)
	if err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if cmd.ExpectedVersion != AnyVersion && cmd.ExpectedVersion != reg.agg.Version() {
		return faults.Wrap(d.conflict(aggType, cmd.ExpectedVersion, reg.agg.Version()))
	}

	events, err := reg.agg.HandleCommand(ctx, cmd)
	if err != nil {
		return err
	}

	for _, evt := range events {
		env, err := d.append(aggType, evt)
		if err != nil {
			return err
		}
		reg.agg.ApplyEvent(evt)
		d.publish(env, evt)
	}
	return nil
}

// Version reports the current version of an aggregate, for deriving the
// expected version of a follow-up command.
func (d *Dispatcher) Version(aggregateType string) (uint64, error) {
	reg, err := d.registration(aggregateType)
	if err != nil {
		return 0, err
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.agg.Version(), nil
}

// Log returns a copy of the event log.
func (d *Dispatcher) Log() []Envelope {
	d.logMu.Lock()
	defer d.logMu.Unlock()
	out := make([]Envelope, len(d.log))
	copy(out, d.log)
	return out
}

func (d *Dispatcher) registration(aggregateType string) (*registration, error) {
	d.regMu.RLock()
	defer d.regMu.RUnlock()
	reg, ok := d.regs[aggregateType]
	if !ok {
		return nil, faults.Errorf("no aggregate registered for type %q", aggregateType)
	}
	return reg, nil
}

func (d *Dispatcher) append(aggregateType string, evt Typer) (Envelope, error) {
	body, err := d.codec.Encode(evt)
	if err != nil {
		return Envelope{}, faults.Errorf("encoding event %s: %w", evt.GetType(), err)
	}

	d.logMu.Lock()
	defer d.logMu.Unlock()
	env := Envelope{
		ID:            uuid.New(),
		Sequence:      uint64(len(d.log) + 1),
		AggregateType: aggregateType,
		Kind:          evt.GetType(),
		OccurredAt:    time.Now().UTC(),
		Body:          body,
	}
	d.log = append(d.log, env)
	return env, nil
}

func (d *Dispatcher) publish(env Envelope, evt Typer) {
	d.subMu.RLock()
	defer d.subMu.RUnlock()
	for _, s := range d.subs {
		s.HandleEvent(env, evt)
	}
}

// AggregateTypeOf extracts the aggregate from a command or event name.
func AggregateTypeOf(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
