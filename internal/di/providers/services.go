package providers

import (
	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/auth"
	"github.com/staybook/staybook-server/internal/cache"
	"github.com/staybook/staybook-server/internal/config"
	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/events"
	"github.com/staybook/staybook-server/internal/logger"
	"github.com/staybook/staybook-server/internal/media/uploads"
	"github.com/staybook/staybook-server/internal/service"
	"github.com/staybook/staybook-server/internal/validation"
)

// ProvideValidator provides the shared struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvidePlaceCache provides the place read cache. The memcached tier is
// only attached when an address is configured.
func ProvidePlaceCache(i do.Injector) (*cache.Cache[*domain.Place], error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var remote cache.Remote
	if client := cache.NewMemcached(cfg.Cache.MemcachedAddr); client != nil {
		remote = client
	}

	c := cache.New[*domain.Place](cache.Config{
		Namespace: "place",
		Size:      cfg.Cache.Size,
		TTL:       cfg.Cache.TTL,
	}, remote, log.Logger)

	log.Info("Place cache initialized",
		"size", cfg.Cache.Size,
		"ttl", cfg.Cache.TTL,
		"memcached", cfg.Cache.MemcachedAddr != "",
	)

	return c, nil
}

// ProvidePublisher provides the domain event publisher: AMQP when a broker
// URL is configured, otherwise a no-op.
func ProvidePublisher(i do.Injector) (events.Publisher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Events.AMQPURL == "" {
		log.Info("Event publishing disabled")
		return events.Noop{}, nil
	}

	pub, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Event publishing enabled", "exchange", cfg.Events.Exchange)
	return pub, nil
}

// ProvideAuthService provides the registration and login service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, v, log.Logger), nil
}

// ProvidePlaceService provides the place service wired to the cache, the
// search index, upload placeholders and the event publisher.
func ProvidePlaceService(i do.Injector) (*service.PlaceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	placeCache := do.MustInvoke[*cache.Cache[*domain.Place]](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storage := do.MustInvoke[*uploads.Storage](i)
	publisher := do.MustInvoke[events.Publisher](i)

	svc := service.NewPlaceService(storeHandle.Store, v, log.Logger)
	svc.SetCache(placeCache)
	svc.SetSearchIndex(indexHandle.SearchIndex)
	svc.SetPlaceholderSource(storage)
	svc.SetPublisher(publisher)

	return svc, nil
}

// ProvideBookingService provides the booking service.
func ProvideBookingService(i do.Injector) (*service.BookingService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	publisher := do.MustInvoke[events.Publisher](i)

	svc := service.NewBookingService(storeHandle.Store, v, service.BookingOptions{
		RejectOverlap: cfg.Booking.RejectOverlap,
	}, log.Logger)
	svc.SetPublisher(publisher)

	return svc, nil
}
