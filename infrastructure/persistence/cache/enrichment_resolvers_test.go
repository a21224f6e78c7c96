package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profile-backend/application/ports"
	"profile-backend/domain/core/valueobjects"
	pkgerrors "profile-backend/pkg/errors"
)

type countingAddressResolver struct {
	calls  int
	detail *ports.AddressDetail
}

func (r *countingAddressResolver) Resolve(ctx context.Context, addressID string) (*ports.AddressDetail, error) {
	r.calls++
	if r.detail == nil {
		return nil, pkgerrors.NewNotFoundError("address")
	}
	return r.detail, nil
}

type countingDeliveryResolver struct {
	calls int
	at    *time.Time
}

func (r *countingDeliveryResolver) NextScheduledDelivery(ctx context.Context, consumerID valueobjects.ConsumerID) (*time.Time, error) {
	r.calls++
	if r.at == nil {
		return nil, pkgerrors.NewNotFoundError("scheduled delivery")
	}
	return r.at, nil
}

func TestCachedAddressResolver_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingAddressResolver{detail: &ports.AddressDetail{ID: "addr-1", City: "Seattle"}}
	resolver := NewCachedAddressResolver(inner, NewMemoryCache(), NewKeySpace("test:"), DefaultCachingConfig(), testMetrics(), zap.NewNop())

	first, err := resolver.Resolve(ctx, "addr-1")
	require.NoError(t, err)
	assert.Equal(t, "Seattle", first.City)

	second, err := resolver.Resolve(ctx, "addr-1")
	require.NoError(t, err)
	assert.Equal(t, "Seattle", second.City)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedAddressResolver_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingAddressResolver{}
	resolver := NewCachedAddressResolver(inner, NewMemoryCache(), NewKeySpace("test:"), DefaultCachingConfig(), testMetrics(), zap.NewNop())

	_, err := resolver.Resolve(ctx, "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = resolver.Resolve(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedDeliveryResolver_ReadThrough(t *testing.T) {
	ctx := context.Background()
	at := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	inner := &countingDeliveryResolver{at: &at}
	resolver := NewCachedDeliveryResolver(inner, NewMemoryCache(), NewKeySpace("test:"), DefaultCachingConfig(), testMetrics(), zap.NewNop())
	consumerID := valueobjects.NewConsumerID()

	first, err := resolver.NextScheduledDelivery(ctx, consumerID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Equal(at))

	second, err := resolver.NextScheduledDelivery(ctx, consumerID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.True(t, second.Equal(at))
	assert.Equal(t, 1, inner.calls)
}
