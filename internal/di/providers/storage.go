package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/config"
	"github.com/staybook/staybook-server/internal/logger"
	"github.com/staybook/staybook-server/internal/media/uploads"
)

// ProvideUploadStorage provides the photo upload directory.
func ProvideUploadStorage(i do.Injector) (*uploads.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := uploads.NewStorage(cfg.Uploads.Path, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("upload storage: %w", err)
	}

	log.Info("Upload storage initialized",
		"path", cfg.Uploads.Path,
		"max_bytes", cfg.Uploads.MaxBytes,
		"max_files", cfg.Uploads.MaxFiles,
	)

	return storage, nil
}
