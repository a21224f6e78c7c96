package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"profile-backend/application/ports"
	"profile-backend/domain/core/entities"
	"profile-backend/domain/core/valueobjects"
	"profile-backend/pkg/observability"
)

// CachingConsumerRepository implements ports.ConsumerRepository as a
// read-through, write-invalidating layer over the consumer store.
//
// Reads try the cache first and, on a miss, populate every identity key the
// record maps to before returning, so a follow-up read by any equivalent key
// hits cache. Writes go to the store transactionally and then delete every key
// the record could be reached through - writes never repopulate the cache,
// because a writer-side Set races a concurrent reader holding a stale store
// read. The window between commit and invalidation is bounded by the identity
// TTL; that staleness is an accepted trade, not a bug.
type CachingConsumerRepository struct {
	store   ports.ConsumerStore
	cache   ports.Cache
	keys    *KeySpace
	config  CachingConfig
	metrics *observability.Metrics
	logger  *zap.Logger
}

// CachingConfig controls per-use-case TTLs. Identity entries carry a short
// TTL on purpose: it is the bound on the save/invalidate staleness window.
type CachingConfig struct {
	IdentityTTL time.Duration
	DeliveryTTL time.Duration
	TermsTTL    time.Duration
	AddressTTL  time.Duration
}

// DefaultCachingConfig returns sensible TTL defaults
func DefaultCachingConfig() CachingConfig {
	return CachingConfig{
		IdentityTTL: 5 * time.Minute,
		DeliveryTTL: 1 * time.Minute,
		TermsTTL:    1 * time.Hour,
		AddressTTL:  10 * time.Minute,
	}
}

// TTLFor returns the TTL for a use case
func (c CachingConfig) TTLFor(useCase UseCase) time.Duration {
	switch useCase {
	case UseCaseIdentity:
		return c.IdentityTTL
	case UseCaseDelivery:
		return c.DeliveryTTL
	case UseCaseTerms:
		return c.TermsTTL
	case UseCaseAddress:
		return c.AddressTTL
	default:
		return c.IdentityTTL
	}
}

// NewCachingConsumerRepository creates the caching layer over a store
func NewCachingConsumerRepository(
	store ports.ConsumerStore,
	cache ports.Cache,
	keys *KeySpace,
	config CachingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.ConsumerRepository {
	return &CachingConsumerRepository{
		store:   store,
		cache:   cache,
		keys:    keys,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// GetByID retrieves a consumer by internal id, cache-first
func (r *CachingConsumerRepository) GetByID(ctx context.Context, id valueobjects.ConsumerID) (*entities.Consumer, error) {
	lookup := KeyDescriptor{UseCase: UseCaseIdentity, Type: KeyByInternalID, Value: id.String()}
	if consumer := r.cachedConsumer(ctx, lookup); consumer != nil {
		return consumer, nil
	}

	consumer, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.populateIdentity(ctx, consumer)
	return consumer, nil
}

// GetByUserID retrieves a consumer by its external identity triple, cache-first
func (r *CachingConsumerRepository) GetByUserID(ctx context.Context, userID, tenantID string, experience valueobjects.ExperienceType) (*entities.Consumer, error) {
	value, ok := byExternalUserID(entities.ConsumerSnapshot{
		UserID:     userID,
		TenantID:   tenantID,
		Experience: experience.String(),
	})
	if ok {
		lookup := KeyDescriptor{UseCase: UseCaseIdentity, Type: KeyByExternalUserID, Value: value}
		if consumer := r.cachedConsumer(ctx, lookup); consumer != nil {
			return consumer, nil
		}
	}

	consumer, err := r.store.GetByUserID(ctx, userID, tenantID, experience)
	if err != nil {
		return nil, err
	}

	r.populateIdentity(ctx, consumer)
	return consumer, nil
}

// Save persists the consumer inside a store transaction and, only after the
// transaction commits, deletes every cache key resolvable from both the
// pre-write and post-write identifying attributes.
func (r *CachingConsumerRepository) Save(ctx context.Context, consumer *entities.Consumer) error {
	// Pre-image keys cover lookups that reached the record before this write
	// (e.g. the old external user id after a relink).
	var preImage *entities.ConsumerSnapshot
	if existing, err := r.store.GetByID(ctx, consumer.ID()); err == nil {
		snap := existing.Snapshot()
		preImage = &snap
	}

	// Resolve invalidation targets before the write so a resolver programming
	// error aborts the operation instead of leaving stale keys behind.
	postSnap := consumer.Snapshot()
	descriptors, err := r.keys.AllKeysFor(postSnap)
	if err != nil {
		return err
	}
	if preImage != nil {
		preDescriptors, err := r.keys.AllKeysFor(*preImage)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, preDescriptors...)
	}

	err = r.store.Transactionally(ctx, func(tx ports.ConsumerStore) error {
		return tx.Upsert(ctx, consumer)
	})
	if err != nil {
		return err
	}

	// Store commit strictly precedes invalidation; reversing the order would
	// widen the staleness window.
	r.invalidate(ctx, descriptors)
	return nil
}

// Delete transactionally soft-deletes the record and invalidates every use
// case, not just identity
func (r *CachingConsumerRepository) Delete(ctx context.Context, id valueobjects.ConsumerID) error {
	existing, err := r.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	snap := existing.Snapshot()

	descriptors, err := r.keys.AllKeysFor(snap)
	if err != nil {
		return err
	}

	err = r.store.Transactionally(ctx, func(tx ports.ConsumerStore) error {
		return tx.SoftDelete(ctx, id)
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, descriptors)
	return nil
}

// cachedConsumer attempts a cache read. Any cache failure degrades to a miss;
// cache errors never surface to callers.
func (r *CachingConsumerRepository) cachedConsumer(ctx context.Context, d KeyDescriptor) *entities.Consumer {
	key := r.keys.PhysicalKey(d)

	data, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.metrics.CacheError()
		r.logger.Debug("cache read degraded to miss", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found {
		r.metrics.CacheMiss(string(d.UseCase))
		return nil
	}

	var snap entities.ConsumerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Corrupt entry: fall through to the store and let the read path
		// repopulate it.
		r.metrics.CacheError()
		return nil
	}
	consumer, err := entities.FromSnapshot(snap)
	if err != nil {
		r.metrics.CacheError()
		return nil
	}

	r.metrics.CacheHit(string(d.UseCase))
	return consumer
}

// populateIdentity writes the record under every identity-use-case key before
// the read returns. Set failures are tolerated: the next read falls back to
// the store again.
func (r *CachingConsumerRepository) populateIdentity(ctx context.Context, consumer *entities.Consumer) {
	snap := consumer.Snapshot()
	descriptors, err := r.keys.KeysFor(UseCaseIdentity, snap)
	if err != nil {
		// Unsupported use case is a programming error; it cannot happen for
		// the static identity table but must never be silently dropped.
		r.logger.Error("identity key resolution failed", zap.Error(err))
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		r.logger.Error("consumer snapshot marshal failed", zap.String("consumer_id", snap.ID), zap.Error(err))
		return
	}

	ttl := r.config.TTLFor(UseCaseIdentity)
	for _, d := range descriptors {
		if err := r.cache.Set(ctx, r.keys.PhysicalKey(d), data, ttl); err != nil {
			r.metrics.CacheError()
			r.logger.Debug("cache populate failed", zap.String("key", r.keys.PhysicalKey(d)), zap.Error(err))
		}
	}
}

// invalidate deletes the given descriptors. Deletes are idempotent and
// commutative, so duplicates from overlapping pre/post images are harmless.
func (r *CachingConsumerRepository) invalidate(ctx context.Context, descriptors []KeyDescriptor) {
	if len(descriptors) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(descriptors))
	keys := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		key := r.keys.PhysicalKey(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	if err := r.cache.Delete(ctx, keys...); err != nil {
		// The write already committed; surfacing a cache error here would fail
		// a successful write. Staleness stays bounded by the entry TTLs.
		r.metrics.CacheError()
		r.logger.Warn("cache invalidation failed", zap.Int("keys", len(keys)), zap.Error(err))
		return
	}
	r.metrics.CacheInvalidated(len(keys))
}
