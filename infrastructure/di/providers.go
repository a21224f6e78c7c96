package di

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"profile-backend/application/ports"
	"profile-backend/application/services"
	"profile-backend/infrastructure/config"
	"profile-backend/infrastructure/messaging/redisstream"
	"profile-backend/infrastructure/persistence/cache"
	"profile-backend/infrastructure/persistence/postgres"
	"profile-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err == nil {
		zapCfg.Level = level
	}
	return zapCfg.Build()
}

// ProvideDatabase opens the GORM connection to PostgreSQL
func ProvideDatabase(cfg *config.Config) (*gorm.DB, error) {
	return postgres.Connect(postgres.Config{
		Host:            cfg.PostgresHost,
		Port:            strconv.Itoa(cfg.PostgresPort),
		Username:        cfg.PostgresUser,
		Password:        cfg.PostgresPassword,
		Database:        cfg.PostgresDatabase,
		SSLMode:         cfg.PostgresSSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
}

// ProvideRedisClient creates and pings the shared Redis client. The same
// client backs the cache and the event stream publisher.
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// ProvideCache creates the cache port over the shared Redis client
func ProvideCache(client *redis.Client) ports.Cache {
	return cache.NewRedisCacheFromClient(client)
}

// ProvideKeySpace creates the key space resolver
func ProvideKeySpace(cfg *config.Config) *cache.KeySpace {
	return cache.NewKeySpace(cfg.CacheKeyPrefix)
}

// ProvideCachingConfig maps the TTL configuration
func ProvideCachingConfig(cfg *config.Config) cache.CachingConfig {
	return cache.CachingConfig{
		IdentityTTL: cfg.IdentityTTL,
		DeliveryTTL: cfg.DeliveryTTL,
		TermsTTL:    cfg.TermsTTL,
		AddressTTL:  cfg.AddressTTL,
	}
}

// ProvideRegistry creates the Prometheus registry
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(registry *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(registry)
}

// ProvideConsumerStore creates the GORM-backed consumer store
func ProvideConsumerStore(db *gorm.DB, logger *zap.Logger) *postgres.ConsumerStore {
	return postgres.NewConsumerStore(db, logger)
}

// ProvideConsumerStorePort exposes the concrete store as its port
func ProvideConsumerStorePort(store *postgres.ConsumerStore) ports.ConsumerStore {
	return store
}

// ProvideConsumerRepository creates the caching repository over the store
func ProvideConsumerRepository(
	store ports.ConsumerStore,
	c ports.Cache,
	keys *cache.KeySpace,
	cachingCfg cache.CachingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.ConsumerRepository {
	return cache.NewCachingConsumerRepository(store, c, keys, cachingCfg, metrics, logger)
}

// ProvideTermsStore creates the terms acceptance store
func ProvideTermsStore(db *gorm.DB, logger *zap.Logger) ports.TermsStore {
	return postgres.NewTermsAcceptanceStore(db, logger)
}

// ProvideTermsAccessor creates the cached terms accessor
func ProvideTermsAccessor(
	store ports.TermsStore,
	c ports.Cache,
	keys *cache.KeySpace,
	cachingCfg cache.CachingConfig,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.TermsAccessor {
	return cache.NewCachedTermsResolver(store, c, keys, cachingCfg, cfg.LatestTermsVersion, metrics, logger)
}

// ProvideTermsResolver narrows the accessor to the read-only resolver port
func ProvideTermsResolver(accessor ports.TermsAccessor) ports.TermsResolver {
	return accessor
}

// ProvideAddressResolver creates the cached address resolver over the store
func ProvideAddressResolver(
	db *gorm.DB,
	c ports.Cache,
	keys *cache.KeySpace,
	cachingCfg cache.CachingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.AddressResolver {
	return cache.NewCachedAddressResolver(postgres.NewAddressStore(db, logger), c, keys, cachingCfg, metrics, logger)
}

// ProvideDeliveryResolver creates the cached delivery schedule resolver
func ProvideDeliveryResolver(
	db *gorm.DB,
	c ports.Cache,
	keys *cache.KeySpace,
	cachingCfg cache.CachingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.DeliveryScheduleResolver {
	return cache.NewCachedDeliveryResolver(postgres.NewDeliveryScheduleStore(db, logger), c, keys, cachingCfg, metrics, logger)
}

// ProvideBlockedItemsResolver creates the blocked-items resolver
func ProvideBlockedItemsResolver(db *gorm.DB, logger *zap.Logger) ports.BlockedItemsResolver {
	return postgres.NewBlockedItemsStore(db, logger)
}

// ProvideEventPublisher creates the Redis stream event publisher
func ProvideEventPublisher(client *redis.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return redisstream.NewPublisher(client, cfg.EventStream, logger)
}

// ProvideDecorator creates the profile decorator over the enrichment ports
func ProvideDecorator(
	address ports.AddressResolver,
	delivery ports.DeliveryScheduleResolver,
	terms ports.TermsResolver,
	blocked ports.BlockedItemsResolver,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.ProfileDecorator {
	return services.NewProfileDecorator(address, delivery, terms, blocked, cfg.EnrichmentTimeout, metrics, logger)
}

// ProvideProfileService creates the orchestration service
func ProvideProfileService(
	repo ports.ConsumerRepository,
	decorator *services.ProfileDecorator,
	terms ports.TermsAccessor,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.ProfileService {
	return services.NewProfileService(repo, decorator, terms, publisher, logger)
}
