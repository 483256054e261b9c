package providers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/config"
	"github.com/staybook/staybook-server/internal/logger"
	"github.com/staybook/staybook-server/internal/store"
	"github.com/staybook/staybook-server/internal/store/mongo"
	"github.com/staybook/staybook-server/internal/store/sqlite"
)

// StoreHandle wraps the selected store backend with shutdown capability.
type StoreHandle struct {
	store.Store
	Kind string
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the backend selected by the database URL.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := openStore(cfg, log.Logger)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: st, Kind: cfg.Database.StoreKind()}, nil
}

func openStore(cfg *config.Config, log *slog.Logger) (store.Store, error) {
	switch kind := cfg.Database.StoreKind(); kind {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		st, err := mongo.Open(ctx, cfg.Database.URL, cfg.Database.Name, log)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		log.Info("Database initialized", "backend", kind, "database", cfg.Database.Name)
		return st, nil

	case "sqlite":
		path := cfg.Database.SQLitePath()
		st, err := sqlite.Open(path, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("Database initialized", "backend", kind, "path", path)
		return st, nil

	default:
		dbPath := filepath.Join(cfg.App.DataPath, "db")
		st, err := store.New(dbPath, log)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		log.Info("Database initialized", "backend", kind, "path", dbPath)
		return st, nil
	}
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
