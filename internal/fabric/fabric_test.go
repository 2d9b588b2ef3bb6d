package fabric_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/quintans/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rekhyt/money-bob/internal/fabric"
)

// A minimal counter aggregate keeps these tests independent of the domain.

type ticked struct {
	By int `json:"by"`
}

func (ticked) GetType() string { return "Counter.ticked" }

type counterFactory struct{}

func (counterFactory) NewEvent(kind string) (fabric.Typer, error) {
	if kind != "Counter.ticked" {
		return nil, faults.Errorf("unknown event kind %q", kind)
	}
	return &ticked{}, nil
}

type counter struct {
	total   int
	version uint64
	fail    error

	// overlap detection: the fabric promises at most one command inside
	// HandleCommand/ApplyEvent per aggregate at any time
	inFlight   atomic.Int32
	overlapped atomic.Bool
}

func (c *counter) AggregateType() string { return "Counter" }
func (c *counter) Version() uint64       { return c.version }

func (c *counter) HandleCommand(_ context.Context, cmd fabric.Command) ([]fabric.Typer, error) {
	if c.inFlight.Add(1) > 1 {
		c.overlapped.Store(true)
	}
	defer c.inFlight.Add(-1)

	if c.fail != nil {
		return nil, c.fail
	}
	by, _ := cmd.Payload.(int)
	return []fabric.Typer{ticked{By: by}}, nil
}

func (c *counter) ApplyEvent(e fabric.Typer) {
	evt, ok := e.(ticked)
	if !ok {
		return
	}
	c.total += evt.By
	c.version++
}

type recorder struct {
	envelopes []fabric.Envelope
	events    []fabric.Typer
}

func (r *recorder) HandleEvent(e fabric.Envelope, evt fabric.Typer) {
	r.envelopes = append(r.envelopes, e)
	r.events = append(r.events, evt)
}

func conflictf(aggregateType string, expected, actual uint64) error {
	return fmt.Errorf("conflict on %s: expected %d, at %d", aggregateType, expected, actual)
}

func newDispatcher(t *testing.T, c *counter) *fabric.Dispatcher {
	t.Helper()
	d := fabric.NewDispatcher(fabric.NewJSONCodec(counterFactory{}), conflictf)
	d.Register(c)
	require.NoError(t, d.Replay(nil))
	return d
}

func TestDispatchRequiresReplay(t *testing.T) {
	d := fabric.NewDispatcher(fabric.NewJSONCodec(counterFactory{}), conflictf)
	d.Register(&counter{})

	err := d.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", 1))
	assert.Error(t, err)

	require.NoError(t, d.Replay(nil))
	assert.Error(t, d.Replay(nil), "replay must be one-shot")
	assert.NoError(t, d.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", 1)))
}

func TestDispatchAppendsBeforePublishing(t *testing.T) {
	c := &counter{}
	d := newDispatcher(t, c)
	sub := &recorder{}
	d.Subscribe(sub)

	require.NoError(t, d.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", 2)))
	require.NoError(t, d.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", 3)))

	assert.Equal(t, 5, c.total)
	assert.Equal(t, uint64(2), c.version)

	log := d.Log()
	require.Len(t, log, 2)
	assert.Equal(t, uint64(1), log[0].Sequence)
	assert.Equal(t, uint64(2), log[1].Sequence)
	assert.Equal(t, "Counter.ticked", log[0].Kind)
	assert.Equal(t, "Counter", log[0].AggregateType)

	require.Len(t, sub.events, 2)
	assert.Equal(t, ticked{By: 2}, sub.events[0])
	assert.Equal(t, log[0].ID, sub.envelopes[0].ID)
}

func TestDispatchRejectsStaleExpectedVersion(t *testing.T) {
	c := &counter{}
	d := newDispatcher(t, c)
	require.NoError(t, d.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", 1)))

	stale := fabric.NewCommand("Counter.tick", 1)
	stale.ExpectedVersion = 0
	err := d.Dispatch(context.Background(), stale)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 0, at 1")

	current := fabric.NewCommand("Counter.tick", 1)
	current.ExpectedVersion = 1
	assert.NoError(t, d.Dispatch(context.Background(), current))
}

func TestDispatchFailedCommandRecordsNothing(t *testing.T) {
	boom := errors.New("boom")
	c := &counter{fail: boom}
	d := newDispatcher(t, c)
	sub := &recorder{}
	d.Subscribe(sub)

	err := d.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", 1))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, d.Log())
	assert.Empty(t, sub.events)
	assert.Equal(t, uint64(0), c.version)
}

func TestDispatchUnknownAggregate(t *testing.T) {
	d := newDispatcher(t, &counter{})
	err := d.Dispatch(context.Background(), fabric.NewCommand("Gauge.tick", 1))
	assert.Error(t, err)

	_, err = d.Version("Gauge")
	assert.Error(t, err)
}

// Replaying one dispatcher's log into a fresh one reconstructs the same
// state, and replayed events reach subscribers as values just like live ones.
func TestReplayReconstructsState(t *testing.T) {
	c1 := &counter{}
	d1 := newDispatcher(t, c1)
	for _, by := range []int{1, 2, 3} {
		require.NoError(t, d1.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", by)))
	}

	c2 := &counter{}
	d2 := fabric.NewDispatcher(fabric.NewJSONCodec(counterFactory{}), conflictf)
	d2.Register(c2)
	sub := &recorder{}
	d2.Subscribe(sub)
	require.NoError(t, d2.Replay(d1.Log()))

	assert.Equal(t, c1.total, c2.total)
	assert.Equal(t, c1.version, c2.version)
	require.Len(t, sub.events, 3)
	assert.Equal(t, ticked{By: 1}, sub.events[0], "replayed events must be values, not pointers")
	assert.Len(t, d2.Log(), 3)

	version, err := d2.Version("Counter")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version)
}

// Dispatching from many goroutines at once must serialize per aggregate: no
// lost update, the version counts every event, and the log sequence is
// strictly increasing.
func TestConcurrentDispatchesDeliverSequentially(t *testing.T) {
	c := &counter{}
	d := newDispatcher(t, c)

	const n = 100
	errs := make(chan error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			errs <- d.Dispatch(context.Background(), fabric.NewCommand("Counter.tick", 1))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.False(t, c.overlapped.Load(), "two commands were inside the aggregate at once")
	assert.Equal(t, n, c.total)
	assert.Equal(t, uint64(n), c.version)

	log := d.Log()
	require.Len(t, log, n)
	for i, env := range log {
		assert.Equal(t, uint64(i+1), env.Sequence)
	}
}

func TestAggregateTypeOf(t *testing.T) {
	assert.Equal(t, "Account", fabric.AggregateTypeOf("Account.createAccount"))
	assert.Equal(t, "Account", fabric.AggregateTypeOf("Account"))
	assert.Equal(t, ".oops", fabric.AggregateTypeOf(".oops"))
}
