package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"strings"
	"time"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	relaycommand "github.com/goliatone/go-conversation-relay/command"
	"github.com/goliatone/go-conversation-relay/core"
	"github.com/goliatone/go-conversation-relay/directory"
	"github.com/goliatone/go-conversation-relay/migrations"
	"github.com/goliatone/go-conversation-relay/query"
	"github.com/goliatone/go-conversation-relay/resolver"
	"github.com/goliatone/go-conversation-relay/server"
	sqlstore "github.com/goliatone/go-conversation-relay/store/sql"
	"github.com/goliatone/go-conversation-relay/webhooks"
)

func main() {
	ctx := context.Background()

	_, logger := glog.Resolve("conversation-relay", nil, nil)
	logger = glog.Ensure(logger)

	defaults := core.DefaultConfig()
	provider := core.NewCfgxConfigProvider(&core.EnvConfigLoader{Lookup: os.LookupEnv})
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		logger.Fatal("configuration invalid", "error", core.MapError(err))
	}
	cfg, err := core.GoOptionsResolver{}.Resolve(defaults, loaded, core.Config{})
	if err != nil {
		logger.Fatal("configuration resolution failed", "error", core.MapError(err))
	}

	processorOptions := []webhooks.ProcessorOption{webhooks.WithLogger(logger)}
	serverOptions := []server.Option{server.WithLogger(logger)}

	if cfg.Database.Enabled() {
		store, cleanup, err := openLedger(ctx, cfg.Database)
		if err != nil {
			logger.Error("delivery ledger unavailable, continuing without it", "error", err)
		} else {
			defer cleanup()
			processorOptions = append(processorOptions, webhooks.WithDeliveryRecorder(store))
			serverOptions = append(serverOptions,
				server.WithRecentDeliveries(query.NewRecentDeliveriesQuery(store)))
			logger.Info("delivery ledger enabled", "driver", cfg.Database.Driver)
		}
	}

	client := buildDirectoryClient(ctx, cfg, logger)

	var processor *webhooks.Processor
	exclusions := webhooks.NewExclusionSet(cfg.Exclusions.Emails)
	if client != nil {
		taskResolver := resolver.New(client, resolver.WithLogger(logger))
		processor = webhooks.NewProcessor(taskResolver, client, exclusions, processorOptions...)

		commanddispatcher.SubscribeCommand(relaycommand.NewMoveTaskCommand(client))
		commanddispatcher.SubscribeQuery(query.NewResolveTaskQuery(taskResolver))
		commanddispatcher.SubscribeQuery(query.NewGetTaskDetailsQuery(client))
		commanddispatcher.SubscribeQuery(query.NewCurrentUserQuery(client))
	} else {
		processor = webhooks.NewProcessor(nil, nil, exclusions, processorOptions...)
	}
	commanddispatcher.SubscribeCommand(relaycommand.NewProcessDeliveryCommand(processor))

	srv := server.New(cfg, processor, serverOptions...)
	if err := srv.Run(); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}

// buildDirectoryClient soft-fails: a missing credential or a failed
// connectivity check leaves the relay serving, with deliveries terminating
// at client_unavailable until the process is restarted with good config.
func buildDirectoryClient(ctx context.Context, cfg core.Config, logger core.Logger) *directory.Client {
	if strings.TrimSpace(cfg.Directory.AccessToken) == "" ||
		strings.TrimSpace(cfg.Directory.ProjectGID) == "" {
		logger.Error("directory client not configured, webhook moves disabled")
		return nil
	}
	client, err := directory.New(ctx, cfg.Directory, directory.WithLogger(logger))
	if err != nil {
		logger.Error("directory client initialization failed", "error", err)
		return nil
	}
	return client
}

type persistenceConfig struct {
	db core.DatabaseConfig
}

func (c persistenceConfig) GetDebug() bool {
	return false
}

func (c persistenceConfig) GetDriver() string {
	return c.db.Driver
}

func (c persistenceConfig) GetServer() string {
	return c.db.DSN
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "conversation-relay"
}

func openLedger(ctx context.Context, dbCfg core.DatabaseConfig) (*sqlstore.DeliveryStore, func(), error) {
	if strings.TrimSpace(dbCfg.Driver) == "" {
		dbCfg.Driver = "sqlite3"
	}
	sqlDB, err := sql.Open(dbCfg.Driver, dbCfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	dialect := migrations.DialectPostgres
	client, err := func() (*persistence.Client, error) {
		if dbCfg.Driver == "sqlite3" {
			dialect = migrations.DialectSQLite
			return persistence.New(persistenceConfig{db: dbCfg}, sqlDB, sqlitedialect.New())
		}
		return persistence.New(persistenceConfig{db: dbCfg}, sqlDB, pgdialect.New())
	}()
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	_, err = migrations.Register(ctx, func(_ context.Context, d string, _ string, fsys fs.FS) error {
		if d != dialect {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithValidationTargets(dialect))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	store, err := sqlstore.NewDeliveryStoreFromPersistence(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() { _ = client.Close() }, nil
}
