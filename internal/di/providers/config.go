// Package providers contains dependency injection providers for the StayBook server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/config"
	"github.com/staybook/staybook-server/internal/logger"
)

// Args are the command-line arguments configuration is loaded from.
// Register a value before the first invoke to override os.Args.
type Args []string

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	args, err := do.Invoke[Args](i)
	if err != nil {
		args = os.Args[1:]
	}
	return config.LoadConfig(args)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting StayBook server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.App.DataPath,
		"store", cfg.Database.StoreKind(),
	)

	return log, nil
}
