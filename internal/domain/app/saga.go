package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quintans/faults"
	log "github.com/sirupsen/logrus"

	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/fabric"
)

type SagaStatus string

const (
	SagaProvisioned        SagaStatus = "Provisioned"
	SagaRunning            SagaStatus = "Running"
	SagaCompleted          SagaStatus = "Completed"
	SagaCompensating       SagaStatus = "Compensating"
	SagaFailed             SagaStatus = "Failed"
	SagaCompensationFailed SagaStatus = "CompensationFailed"
)

type TaskStatus string

const (
	TaskPending          TaskStatus = "Pending"
	TaskDone             TaskStatus = "Done"
	TaskCompensationDone TaskStatus = "CompensationDone"
)

// DefaultTaskTimeout bounds how long a single saga task may take.
const DefaultTaskTimeout = 5000 * time.Millisecond

// rollbackNotesPrefix marks a compensating booking so it is recognizable in
// the ledger.
const rollbackNotesPrefix = "[ROLLBACK] "

// Task is one step of a saga: a forward command and a pure function deriving
// the compensating command from the forward payload. Declarative data, not
// closures over hidden state.
type Task struct {
	Aggregate  string
	Forward    fabric.Command
	Compensate func(forward fabric.Command) fabric.Command
	Timeout    time.Duration
	Status     TaskStatus
}

// SagaInstance tracks one logical transfer through its tasks. Instances are
// provisioned per request and never reused.
type SagaInstance struct {
	ID     uuid.UUID
	Tasks  []Task
	Cursor int
	Status SagaStatus
}

// BookTransactionSaga coordinates a transfer as two independent writes: the
// balance mutation on the account directory and the audit record on the
// ledger. The two aggregates cannot share a transaction, so atomicity comes
// from reverse-order compensation of completed tasks when a later one fails.
type BookTransactionSaga struct {
	dispatcher domain.Dispatcher
	timeout    time.Duration

	mu        sync.Mutex
	instances map[uuid.UUID]*SagaInstance
}

var _ domain.BookTransactionService = (*BookTransactionSaga)(nil)

func NewBookTransactionSaga(dispatcher domain.Dispatcher) *BookTransactionSaga {
	return &BookTransactionSaga{
		dispatcher: dispatcher,
		timeout:    DefaultTaskTimeout,
		instances:  map[uuid.UUID]*SagaInstance{},
	}
}

// SetTaskTimeout overrides the per-task timeout for sagas provisioned after
// the call.
func (s *BookTransactionSaga) SetTaskTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// Instance returns a provisioned saga by id, for inspection.
func (s *BookTransactionSaga) Instance(id uuid.UUID) (*SagaInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	return inst, ok
}

func (s *BookTransactionSaga) BookTransaction(ctx context.Context, cmd domain.BookTransactionCommand) (uuid.UUID, error) {
	inst := s.provision(cmd)

	log.WithFields(log.Fields{
		"method": "BookTransactionSaga.BookTransaction",
		"saga":   inst.ID,
	}).Infof("booking %s %s from %q to %q", cmd.Amount, cmd.Currency, cmd.Account1, cmd.Account2)

	return inst.ID, s.run(ctx, inst)
}

// provision builds the declarative task list: the balance transfer against
// the account directory first, then the ledger record. Compensations swap
// account1/account2 and mark the notes as a rollback.
func (s *BookTransactionSaga) provision(cmd domain.BookTransactionCommand) *SagaInstance {
	s.mu.Lock()
	defer s.mu.Unlock()

	forward := domain.BookTransferCommand{
		Account1: cmd.Account1,
		Account2: cmd.Account2,
		Amount:   cmd.Amount,
		Currency: cmd.Currency,
	}
	reverse := domain.BookTransferCommand{
		Account1: cmd.Account2,
		Account2: cmd.Account1,
		Amount:   cmd.Amount,
		Currency: cmd.Currency,
	}
	record := domain.RecordTransactionCommand{
		Account1:        cmd.Account1,
		Account2:        cmd.Account2,
		Amount:          cmd.Amount,
		Currency:        cmd.Currency,
		Subject:         cmd.Subject,
		Notes:           cmd.Notes,
		TransactionTime: cmd.TransactionTime,
		Tags:            cmd.Tags,
	}
	recordReverse := record
	recordReverse.Account1, recordReverse.Account2 = record.Account2, record.Account1
	recordReverse.Notes = rollbackNotesPrefix + record.Notes

	inst := &SagaInstance{
		ID:     uuid.New(),
		Status: SagaProvisioned,
		Tasks: []Task{
			{
				Aggregate: fabric.AggregateTypeOf(domain.Command_BookTransfer),
				Forward:   fabric.NewCommand(domain.Command_BookTransfer, forward),
				Compensate: func(fabric.Command) fabric.Command {
					return fabric.NewCommand(domain.Command_BookTransfer, reverse)
				},
				Timeout: s.timeout,
				Status:  TaskPending,
			},
			{
				Aggregate: fabric.AggregateTypeOf(domain.Command_RecordTransfer),
				Forward:   fabric.NewCommand(domain.Command_RecordTransfer, record),
				Compensate: func(fabric.Command) fabric.Command {
					return fabric.NewCommand(domain.Command_RecordTransfer, recordReverse)
				},
				Timeout: s.timeout,
				Status:  TaskPending,
			},
		},
	}

	s.instances[inst.ID] = inst
	return inst
}

// run executes the tasks strictly in declaration order. On the first failure
// it compensates the completed tasks in reverse order. A timed-out task has
// an unknown outcome and is itself never compensated.
func (s *BookTransactionSaga) run(ctx context.Context, inst *SagaInstance) error {
	inst.Status = SagaRunning

	for i := range inst.Tasks {
		inst.Cursor = i
		task := &inst.Tasks[i]
		if err := s.execute(ctx, task.Aggregate, task.Forward, task.Timeout); err != nil {
			return s.compensate(ctx, inst, i, err)
		}
		task.Status = TaskDone
	}

	inst.Status = SagaCompleted
	return nil
}

func (s *BookTransactionSaga) compensate(ctx context.Context, inst *SagaInstance, failed int, cause error) error {
	inst.Status = SagaCompensating
	failedName := inst.Tasks[failed].Forward.Name

	log.WithFields(log.Fields{
		"method": "BookTransactionSaga.compensate",
		"saga":   inst.ID,
	}).Warnf("task %s failed, compensating %d completed task(s): %v", failedName, failed, cause)

	for i := failed - 1; i >= 0; i-- {
		task := &inst.Tasks[i]
		cmd := task.Compensate(task.Forward)
		if err := s.execute(ctx, task.Aggregate, cmd, task.Timeout); err != nil {
			inst.Status = SagaCompensationFailed
			return &domain.CompensationFailedError{
				SagaID: inst.ID.String(),
				Task:   task.Forward.Name,
				Cause:  cause,
				Err:    err,
			}
		}
		task.Status = TaskCompensationDone
	}

	inst.Status = SagaFailed
	return &domain.TaskFailedError{
		SagaID: inst.ID.String(),
		Task:   failedName,
		Err:    cause,
	}
}

// execute dispatches one command with the task timeout. The expected version
// is read immediately before dispatch; a concurrent mutation in between
// surfaces as a ConflictError, which fails the task like any other error.
func (s *BookTransactionSaga) execute(ctx context.Context, aggregate string, cmd fabric.Command, timeout time.Duration) error {
	version, err := s.dispatcher.Version(aggregate)
	if err != nil {
		return err
	}
	cmd.ExpectedVersion = version

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.dispatcher.Dispatch(ctx, cmd)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return faults.Errorf("task %q timed out after %s, outcome unknown: %w", cmd.Name, timeout, ctx.Err())
	}
}
