package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/api"
	"github.com/staybook/staybook-server/internal/config"
	"github.com/staybook/staybook-server/internal/logger"
	"github.com/staybook/staybook-server/internal/media/uploads"
	"github.com/staybook/staybook-server/internal/service"
)

// ProvideAPIServer provides the HTTP handler with every route mounted.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Place:   do.MustInvoke[*service.PlaceService](i),
		Booking: do.MustInvoke[*service.BookingService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
	}
	storage := &api.StorageServices{
		Uploads: do.MustInvoke[*uploads.Storage](i),
	}

	return api.NewServer(storeHandle.Store, services, storage, api.Options{
		CORSOrigins:       cfg.Server.CORSOrigins,
		MaxUploadBytes:    cfg.Uploads.MaxBytes,
		MaxUploadFiles:    cfg.Uploads.MaxFiles,
		AuthRateLimit:     cfg.Server.AuthRateLimit,
		AuthRateBurst:     cfg.Server.AuthRateBurst,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	}, log.Logger), nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
