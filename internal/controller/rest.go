package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quintans/faults"
	log "github.com/sirupsen/logrus"

	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/fabric"
	"github.com/Rekhyt/money-bob/internal/readmodel"
)

// CommandEnvelope is the generic command format accepted on POST /commands:
// the name selects the target aggregate and operation, the payload carries
// the operation's fields.
type CommandEnvelope struct {
	Name    string          `json:"name"`
	Time    string          `json:"time"`
	Payload json.RawMessage `json:"payload"`
}

type RestController struct {
	dispatcher   domain.Dispatcher
	saga         domain.BookTransactionService
	accounts     *readmodel.Accounts
	tree         *readmodel.AccountTree
	transactions *readmodel.TransactionList
}

func NewRestController(
	dispatcher domain.Dispatcher,
	saga domain.BookTransactionService,
	accounts *readmodel.Accounts,
	tree *readmodel.AccountTree,
	transactions *readmodel.TransactionList,
) RestController {
	return RestController{
		dispatcher:   dispatcher,
		saga:         saga,
		accounts:     accounts,
		tree:         tree,
		transactions: transactions,
	}
}

func (ctl RestController) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "ready to serve")
}

func (ctl RestController) Command(c echo.Context) error {
	env := CommandEnvelope{}
	if err := c.Bind(&env); err != nil {
		return err
	}

	ctx := c.Request().Context()

	switch env.Name {
	case domain.Command_BookTransaction:
		cmd := domain.BookTransactionCommand{}
		if err := json.Unmarshal(env.Payload, &cmd); err != nil {
			return badPayload(c, env.Name, err)
		}
		id, err := ctl.saga.BookTransaction(ctx, cmd)
		if err != nil {
			return resolveError(c, err)
		}
		return c.JSON(http.StatusCreated, map[string]string{"sagaId": id.String()})
	case domain.Command_CreateAccount:
		return ctl.dispatch(c, env, &domain.CreateAccountCommand{})
	case domain.Command_LinkAccounts:
		return ctl.dispatch(c, env, &domain.LinkAccountsCommand{})
	case domain.Command_AddTags:
		return ctl.dispatch(c, env, &domain.AddTagsCommand{})
	case domain.Command_BookTransfer:
		return ctl.dispatch(c, env, &domain.BookTransferCommand{})
	case domain.Command_RecordTransfer:
		return ctl.dispatch(c, env, &domain.RecordTransactionCommand{})
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "unknown command: " + env.Name,
		})
	}
}

// dispatch decodes the payload into the typed command and hands it to the
// fabric. The payload pointer is dereferenced so aggregates always see value
// payloads.
func (ctl RestController) dispatch(c echo.Context, env CommandEnvelope, payload any) error {
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return badPayload(c, env.Name, err)
	}

	var value any
	switch p := payload.(type) {
	case *domain.CreateAccountCommand:
		value = *p
	case *domain.LinkAccountsCommand:
		value = *p
	case *domain.AddTagsCommand:
		value = *p
	case *domain.BookTransferCommand:
		value = *p
	case *domain.RecordTransactionCommand:
		value = *p
	default:
		return faults.Errorf("unhandled payload type for command %q", env.Name)
	}

	if err := ctl.dispatcher.Dispatch(c.Request().Context(), fabric.NewCommand(env.Name, value)); err != nil {
		return resolveError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (ctl RestController) Accounts(c echo.Context) error {
	return c.JSON(http.StatusOK, ctl.accounts.Accounts())
}

func (ctl RestController) Tree(c echo.Context) error {
	return c.JSON(http.StatusOK, ctl.tree.Tree())
}

func (ctl RestController) Transactions(c echo.Context) error {
	return c.JSON(http.StatusOK, ctl.transactions.Transactions())
}

func badPayload(c echo.Context, name string, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]string{
		"message": "invalid payload for " + name + ": " + err.Error(),
	})
}

// resolveError maps the domain error taxonomy onto HTTP statuses. The saga
// errors come first: they wrap their cause, which may itself be a domain
// error with a mapping of its own.
func resolveError(c echo.Context, err error) error {
	var compErr *domain.CompensationFailedError
	if errors.As(err, &compErr) {
		// the books are inconsistent, this needs an operator
		log.WithFields(log.Fields{
			"method": "RestController.resolveError",
		}).Errorf("compensation failed: %v", compErr)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": compErr.Error()})
	}

	var taskErr *domain.TaskFailedError
	if errors.As(err, &taskErr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": taskErr.Error()})
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"message": verr.Error(),
			"fields":  verr.Fields,
		})
	}

	var nfErr *domain.NotFoundError
	if errors.As(err, &nfErr) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": nfErr.Error()})
	}

	var cycleErr *domain.CycleError
	if errors.As(err, &cycleErr) {
		return c.JSON(http.StatusConflict, map[string]any{
			"message": cycleErr.Error(),
			"path":    cycleErr.Path,
		})
	}

	var depthErr *domain.DepthExceededError
	if errors.As(err, &depthErr) {
		return c.JSON(http.StatusConflict, map[string]string{"message": depthErr.Error()})
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, map[string]string{"message": conflictErr.Error()})
	}

	return err
}
