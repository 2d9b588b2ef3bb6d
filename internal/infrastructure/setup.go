package infrastructure

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/quintans/toolkit/latch"
	log "github.com/sirupsen/logrus"

	"github.com/Rekhyt/money-bob/internal/controller"
	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/domain/app"
	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/fabric"
	"github.com/Rekhyt/money-bob/internal/readmodel"
)

type Config struct {
	ApiPort         int           `env:"API_PORT" envDefault:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"3s"`
}

// Setup wires the dispatch fabric, the aggregates, the saga and the read
// models, then serves the REST interface until a termination signal.
func Setup(cfg *Config) {
	dispatcher, saga, accounts, tree, transactions := Wire()

	// no history on a fresh process, but the fabric still requires the
	// replay step before accepting commands
	if err := dispatcher.Replay(nil); err != nil {
		log.Fatalf("%+v", err)
	}

	rest := controller.NewRestController(dispatcher, saga, accounts, tree, transactions)

	ltx := latch.NewCountDownLatch()
	ctx, cancel := context.WithCancel(context.Background())

	ltx.Add(1)
	go func() {
		startRestServer(ctx, rest, cfg.ApiPort)
		ltx.Done()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-quit
	cancel()
	ltx.WaitWithTimeout(cfg.ShutdownTimeout)
}

// Wire builds the full object graph without starting any server. The
// returned dispatcher still needs Replay before use.
func Wire() (*fabric.Dispatcher, domain.BookTransactionService, *readmodel.Accounts, *readmodel.AccountTree, *readmodel.TransactionList) {
	codec := fabric.NewJSONCodec(event.Factory{})
	dispatcher := fabric.NewDispatcher(codec, func(aggregateType string, expected, actual uint64) error {
		return &domain.ConflictError{
			Aggregate:       aggregateType,
			ExpectedVersion: expected,
			ActualVersion:   actual,
		}
	})

	dispatcher.Register(app.NewAccountDirectory())
	dispatcher.Register(app.NewTransactionLedger())

	accounts := readmodel.NewAccounts()
	tree := readmodel.NewAccountTree()
	transactions := readmodel.NewTransactionList()
	dispatcher.Subscribe(accounts)
	dispatcher.Subscribe(tree)
	dispatcher.Subscribe(transactions)

	saga := app.NewBookTransactionSaga(dispatcher)

	return dispatcher, saga, accounts, tree, transactions
}

func startRestServer(ctx context.Context, rest controller.RestController, port int) {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/ping", rest.Ping)
	e.POST("/commands", rest.Command)
	e.GET("/accounts", rest.Accounts)
	e.GET("/accounts/tree", rest.Tree)
	e.GET("/transactions", rest.Transactions)

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(c); err != nil {
			log.Fatal(err)
		}
	}()

	address := fmt.Sprintf(":%d", port)
	if err := e.Start(address); err != nil {
		log.WithError(err).Info("shutting down the server")
	}
}
