// Package di provides dependency injection configuration for the StayBook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/api"
	"github.com/staybook/staybook-server/internal/auth"
	"github.com/staybook/staybook-server/internal/cache"
	"github.com/staybook/staybook-server/internal/config"
	"github.com/staybook/staybook-server/internal/di/providers"
	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/events"
	"github.com/staybook/staybook-server/internal/logger"
	"github.com/staybook/staybook-server/internal/media/uploads"
	"github.com/staybook/staybook-server/internal/service"
	"github.com/staybook/staybook-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	registerCore(injector)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// NewServiceContainer registers everything except the HTTP layer, for
// tools that drive the services directly.
func NewServiceContainer(args []string) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, providers.Args(args))
	registerCore(injector)
	return injector
}

func registerCore(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage, cache and events
	do.Provide(injector, providers.ProvideUploadStorage)
	do.Provide(injector, providers.ProvidePlaceCache)
	do.Provide(injector, providers.ProvidePublisher)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvidePlaceService)
	do.Provide(injector, providers.ProvideBookingService)
}

// Bootstrap initializes the core services. When serve is true the HTTP
// server is started as well. Provider failures are returned as errors.
func Bootstrap(injector *do.RootScope, serve bool) error {
	core := []func(do.Injector) error{
		invokeAs[*config.Config],
		invokeAs[*logger.Logger],
		invokeAs[*validation.Validator],
		invokeAs[*providers.StoreHandle],
		invokeAs[*uploads.Storage],
		invokeAs[*cache.Cache[*domain.Place]],
		invokeAs[events.Publisher],
		invokeAs[*providers.SearchIndexHandle],
		invokeAs[*service.SearchService],
		invokeAs[providers.AuthKey],
		invokeAs[auth.TokenService],

		// Business services
		invokeAs[*service.AuthService],
		invokeAs[*service.PlaceService],
		invokeAs[*service.BookingService],
	}
	if err := invokeAll(injector, core); err != nil {
		return err
	}

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	if serve {
		return invokeAll(injector, []func(do.Injector) error{
			invokeAs[*api.Server],
			invokeAs[*providers.HTTPServerHandle],
		})
	}
	return nil
}

func invokeAll(injector do.Injector, steps []func(do.Injector) error) error {
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}
	return nil
}

func invokeAs[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
