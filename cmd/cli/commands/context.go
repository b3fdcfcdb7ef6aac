package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/internal/config"
	"github.com/jakechorley/guard-rota/pkg/clients/mailclient"
	"github.com/jakechorley/guard-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/guard-rota/pkg/core/scheduler"
	"github.com/jakechorley/guard-rota/pkg/core/services"
	"github.com/jakechorley/guard-rota/pkg/db"
	"github.com/jakechorley/guard-rota/pkg/events"
	"github.com/jakechorley/guard-rota/pkg/mongostore"
	"github.com/jakechorley/guard-rota/pkg/postgres"
	"github.com/jakechorley/guard-rota/pkg/runlock"
	"github.com/jakechorley/guard-rota/pkg/utils/logging"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg       *config.Config
	Store     db.Store
	Scheduler *scheduler.Scheduler
	Locker    services.Locker
	Hooks     []services.ResultHook
	Logger    *zap.Logger
	Ctx       context.Context

	closers []func(context.Context) error
}

// Init sets up logger, config, store, locker and result hooks
func (app *AppContext) Init(ctx context.Context, env string, logOpts logging.Options) error {
	var err error
	app.Ctx = ctx

	app.Logger, err = logging.InitLogger(env, logOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger.Info("Connecting to store", zap.String("driver", app.Cfg.Store.Driver))
	switch app.Cfg.Store.Driver {
	case "mongo":
		app.Store, err = mongostore.Connect(ctx, app.Cfg.Store.MongoURI, app.Cfg.Store.MongoDatabase)
	default:
		app.Store, err = postgres.NewDB(ctx, app.Cfg.Store.PostgresDSN)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	app.closers = append(app.closers, app.Store.Close)

	app.Scheduler = scheduler.New(scheduler.Config{
		Policy:    schedulerPolicy(app.Cfg.Scheduler),
		TimeLimit: app.Cfg.Scheduler.TimeLimit,
	}, app.Logger)

	if err := app.initLocker(); err != nil {
		return err
	}
	if err := app.initHooks(); err != nil {
		return err
	}

	app.Logger.Debug("Application initialized", zap.Int("hooks", len(app.Hooks)))
	return nil
}

func (app *AppContext) initLocker() error {
	if app.Cfg.Redis.Addr == "" {
		app.Logger.Debug("Redis not configured, runs are not locked")
		app.Locker = runlock.Noop{}
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.Cfg.Redis.Addr,
		Password: app.Cfg.Redis.Password,
		DB:       app.Cfg.Redis.DB,
	})
	if err := client.Ping(app.Ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) error { return client.Close() })
	app.Locker = runlock.NewRedisLocker(client, app.Cfg.Redis.LockTTL)
	app.Logger.Info("Run lock enabled", zap.String("redis", app.Cfg.Redis.Addr))
	return nil
}

func (app *AppContext) initHooks() error {
	cfg := app.Cfg

	if cfg.RabbitMQ.URL != "" {
		publisher, err := events.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PublishTimeout, app.Logger)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, func(context.Context) error { return publisher.Close() })
		app.Hooks = append(app.Hooks, publisher)
	}

	if cfg.Sheets.SpreadsheetID != "" {
		credentials, err := os.ReadFile(cfg.Sheets.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to read sheets credentials: %w", err)
		}
		client, err := sheetsclient.NewClient(app.Ctx, credentials)
		if err != nil {
			return err
		}
		app.Hooks = append(app.Hooks, sheetsclient.NewPublisher(client, cfg.Sheets.SpreadsheetID, app.Logger))
	}

	if cfg.Mail.Host != "" {
		client, err := mailclient.NewClient(mailclient.Options{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, app.Logger)
		if err != nil {
			return err
		}
		app.Hooks = append(app.Hooks, mailclient.NewPartialAlert(client))
	}

	return nil
}

// GenerateDeps bundles the collaborators of a scheduling run
func (app *AppContext) GenerateDeps() services.GenerateDeps {
	return services.GenerateDeps{
		Store:     app.Store,
		Scheduler: app.Scheduler,
		Locker:    app.Locker,
		Hooks:     app.Hooks,
	}
}

// Close releases every connection opened by Init, newest first
func (app *AppContext) Close(ctx context.Context) error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

// schedulerPolicy overlays the configured rule constants on the defaults
func schedulerPolicy(cfg config.SchedulerConfig) scheduler.Policy {
	policy := scheduler.DefaultPolicy()
	if cfg.MaxWorkingDays > 0 {
		policy.MaxWorkingDays = cfg.MaxWorkingDays
	}
	if cfg.FairnessBand > 0 {
		policy.FairnessBand = int64(cfg.FairnessBand)
	}
	if cfg.FairnessWeight > 0 {
		policy.FairnessWeight = cfg.FairnessWeight
	}
	if cfg.SentinelCost > 0 {
		policy.SentinelCost = cfg.SentinelCost
	}
	return policy
}
