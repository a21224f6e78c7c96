package di

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"profile-backend/application/ports"
	"profile-backend/application/services"
	"profile-backend/infrastructure/config"
	"profile-backend/infrastructure/persistence/postgres"
	"profile-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *gorm.DB
	RedisClient    *redis.Client
	Store          *postgres.ConsumerStore
	Repository     ports.ConsumerRepository
	Terms          ports.TermsAccessor
	ProfileService *services.ProfileService
	Metrics        *observability.Metrics
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideCache,
	ProvideKeySpace,
	ProvideCachingConfig,
	ProvideRegistry,
	ProvideMetrics,
	ProvideConsumerStore,
	ProvideConsumerStorePort,
	ProvideConsumerRepository,
	ProvideTermsStore,
	ProvideTermsAccessor,
	ProvideTermsResolver,
	ProvideAddressResolver,
	ProvideDeliveryResolver,
	ProvideBlockedItemsResolver,
	ProvideEventPublisher,
	ProvideDecorator,
	ProvideProfileService,
	wire.Struct(new(Container), "*"),
)

// Close releases the container's long-lived resources
func (c *Container) Close() error {
	var firstErr error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
