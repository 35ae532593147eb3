package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbrew/openbrew/pkg/api"
	"github.com/openbrew/openbrew/pkg/config"
	"github.com/openbrew/openbrew/pkg/menu"
	"github.com/openbrew/openbrew/pkg/telemetry"
)

func newServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the coffee menu API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), version)
		},
	}
}

func runServe(ctx context.Context, version string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Telemetry.ServiceVersion == "dev" && version != "" {
		cfg.Telemetry.ServiceVersion = version
	}

	tel, err := telemetry.New(&cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			tel.Logger.WithError(err).Warn("telemetry shutdown failed")
		}
	}()

	store, err := newStore(ctx, cfg, tel.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if count, err := store.Count(ctx); err == nil {
		tel.Metrics.SetMenuItems(float64(count))
	}

	// Live log-level reloads when running with a config file.
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, tel.Logger, func(next *config.Config) {
			tel.Logger.SetLevel(next.Telemetry.Logging.Level)
		})
		if err != nil {
			tel.Logger.WithError(err).Warn("config watcher unavailable")
		} else {
			go watcher.Run(ctx)
		}
	}

	server := api.NewServer(cfg.Server.ListenAddress, api.New(store, tel), tel.Logger)
	return server.Start(ctx)
}

// newStore builds the configured menu store, seeded with the default menu.
func newStore(ctx context.Context, cfg *config.Config, log *telemetry.Logger) (menu.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		store, err := menu.NewSQLiteStore(menu.SQLiteConfig{Path: cfg.Store.Path})
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		if err := store.Seed(ctx, menu.DefaultMenu()); err != nil {
			_ = store.Close()
			return nil, err
		}
		log.WithField("path", cfg.Store.Path).Info("using sqlite menu store")
		return store, nil
	case config.StoreDriverMemory:
		log.Info("using in-memory menu store")
		return menu.NewMemoryStore(menu.DefaultMenu()), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
