package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"profile-backend/application/ports"
	"profile-backend/domain/core/valueobjects"
	"profile-backend/pkg/observability"
)

// CachedAddressResolver is a read-through wrapper over an address resolver,
// keyed in the address use case by geo address id. Entries are evicted when a
// save changes the consumer's default address link.
type CachedAddressResolver struct {
	inner   ports.AddressResolver
	cache   ports.Cache
	keys    *KeySpace
	config  CachingConfig
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCachedAddressResolver creates the cached address resolver
func NewCachedAddressResolver(
	inner ports.AddressResolver,
	cache ports.Cache,
	keys *KeySpace,
	config CachingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CachedAddressResolver {
	return &CachedAddressResolver{
		inner:   inner,
		cache:   cache,
		keys:    keys,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve returns the address detail, cache-first
func (r *CachedAddressResolver) Resolve(ctx context.Context, addressID string) (*ports.AddressDetail, error) {
	key := r.keys.PhysicalKey(KeyDescriptor{
		UseCase: UseCaseAddress,
		Type:    KeyByGeoAddressID,
		Value:   addressID,
	})

	if data, found, err := r.cache.Get(ctx, key); err == nil && found {
		var detail ports.AddressDetail
		if err := json.Unmarshal(data, &detail); err == nil {
			r.metrics.CacheHit(string(UseCaseAddress))
			return &detail, nil
		}
		r.metrics.CacheError()
	} else if err != nil {
		r.metrics.CacheError()
	} else {
		r.metrics.CacheMiss(string(UseCaseAddress))
	}

	detail, err := r.inner.Resolve(ctx, addressID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(detail); err == nil {
		if err := r.cache.Set(ctx, key, data, r.config.TTLFor(UseCaseAddress)); err != nil {
			r.metrics.CacheError()
			r.logger.Debug("address cache populate failed", zap.String("key", key), zap.Error(err))
		}
	}
	return detail, nil
}

var _ ports.AddressResolver = (*CachedAddressResolver)(nil)

// CachedDeliveryResolver is a read-through wrapper over a delivery schedule
// resolver, keyed in the delivery use case by internal consumer id. The short
// delivery TTL bounds staleness between schedule changes and cache eviction.
type CachedDeliveryResolver struct {
	inner   ports.DeliveryScheduleResolver
	cache   ports.Cache
	keys    *KeySpace
	config  CachingConfig
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCachedDeliveryResolver creates the cached delivery resolver
func NewCachedDeliveryResolver(
	inner ports.DeliveryScheduleResolver,
	cache ports.Cache,
	keys *KeySpace,
	config CachingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CachedDeliveryResolver {
	return &CachedDeliveryResolver{
		inner:   inner,
		cache:   cache,
		keys:    keys,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// NextScheduledDelivery returns the next delivery time, cache-first
func (r *CachedDeliveryResolver) NextScheduledDelivery(ctx context.Context, consumerID valueobjects.ConsumerID) (*time.Time, error) {
	key := r.keys.PhysicalKey(KeyDescriptor{
		UseCase: UseCaseDelivery,
		Type:    KeyByInternalID,
		Value:   consumerID.String(),
	})

	if data, found, err := r.cache.Get(ctx, key); err == nil && found {
		var at time.Time
		if err := json.Unmarshal(data, &at); err == nil {
			r.metrics.CacheHit(string(UseCaseDelivery))
			return &at, nil
		}
		r.metrics.CacheError()
	} else if err != nil {
		r.metrics.CacheError()
	} else {
		r.metrics.CacheMiss(string(UseCaseDelivery))
	}

	at, err := r.inner.NextScheduledDelivery(ctx, consumerID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(at); err == nil {
		if err := r.cache.Set(ctx, key, data, r.config.TTLFor(UseCaseDelivery)); err != nil {
			r.metrics.CacheError()
			r.logger.Debug("delivery cache populate failed", zap.String("key", key), zap.Error(err))
		}
	}
	return at, nil
}

var _ ports.DeliveryScheduleResolver = (*CachedDeliveryResolver)(nil)
