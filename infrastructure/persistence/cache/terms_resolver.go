package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"profile-backend/application/ports"
	"profile-backend/domain/core/entities"
	"profile-backend/domain/core/valueobjects"
	pkgerrors "profile-backend/pkg/errors"
	"profile-backend/pkg/observability"
)

// CachedTermsResolver is the repository-like accessor for terms-of-service
// status: read-through over the terms store under the terms use case, with an
// explicit Accept mutation that invalidates the cached status. Status reads
// never mutate acceptance state.
type CachedTermsResolver struct {
	store         ports.TermsStore
	cache         ports.Cache
	keys          *KeySpace
	config        CachingConfig
	latestVersion string
	metrics       *observability.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewCachedTermsResolver creates the terms accessor. latestVersion is the
// currently published terms-of-service version.
func NewCachedTermsResolver(
	store ports.TermsStore,
	cache ports.Cache,
	keys *KeySpace,
	config CachingConfig,
	latestVersion string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CachedTermsResolver {
	return &CachedTermsResolver{
		store:         store,
		cache:         cache,
		keys:          keys,
		config:        config,
		latestVersion: latestVersion,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (r *CachedTermsResolver) WithClock(now func() time.Time) *CachedTermsResolver {
	r.now = now
	return r
}

func (r *CachedTermsResolver) descriptor(consumerID valueobjects.ConsumerID) KeyDescriptor {
	return KeyDescriptor{UseCase: UseCaseTerms, Type: KeyByInternalID, Value: consumerID.String()}
}

// Status returns the consumer's standing against the latest terms version,
// cache-first. A consumer with no recorded acceptance has a valid zero status.
func (r *CachedTermsResolver) Status(ctx context.Context, consumerID valueobjects.ConsumerID) (entities.TermsOfServiceStatus, error) {
	key := r.keys.PhysicalKey(r.descriptor(consumerID))

	if data, found, err := r.cache.Get(ctx, key); err == nil && found {
		var status entities.TermsOfServiceStatus
		if err := json.Unmarshal(data, &status); err == nil {
			r.metrics.CacheHit(string(UseCaseTerms))
			return status, nil
		}
		r.metrics.CacheError()
	} else if err != nil {
		r.metrics.CacheError()
	} else {
		r.metrics.CacheMiss(string(UseCaseTerms))
	}

	acceptance, err := r.store.LatestAcceptance(ctx, consumerID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			status := entities.TermsOfServiceStatus{AcceptedLatest: false}
			r.populate(ctx, key, status)
			return status, nil
		}
		return entities.TermsOfServiceStatus{}, err
	}

	status := acceptance.StatusAgainst(r.latestVersion)
	r.populate(ctx, key, status)
	return status, nil
}

// Accept records an explicit acceptance and deletes the cached status so the
// next read repopulates from the store
func (r *CachedTermsResolver) Accept(ctx context.Context, consumerID valueobjects.ConsumerID, version string) error {
	acceptance, err := entities.NewTermsAcceptance(consumerID.String(), version, r.now())
	if err != nil {
		return err
	}
	if err := r.store.RecordAcceptance(ctx, acceptance); err != nil {
		return err
	}

	key := r.keys.PhysicalKey(r.descriptor(consumerID))
	if err := r.cache.Delete(ctx, key); err != nil {
		r.metrics.CacheError()
		r.logger.Warn("terms cache invalidation failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	r.metrics.CacheInvalidated(1)
	return nil
}

func (r *CachedTermsResolver) populate(ctx context.Context, key string, status entities.TermsOfServiceStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.config.TTLFor(UseCaseTerms)); err != nil {
		r.metrics.CacheError()
		r.logger.Debug("terms cache populate failed", zap.String("key", key), zap.Error(err))
	}
}

var _ ports.TermsAccessor = (*CachedTermsResolver)(nil)
