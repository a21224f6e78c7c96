package cache

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profile-backend/domain/core/entities"
	"profile-backend/domain/core/valueobjects"
	pkgerrors "profile-backend/pkg/errors"
)

type fakeTermsStore struct {
	mu          sync.Mutex
	acceptances map[string][]entities.TermsAcceptance
	latestCalls int
}

func newFakeTermsStore() *fakeTermsStore {
	return &fakeTermsStore{acceptances: make(map[string][]entities.TermsAcceptance)}
}

func (f *fakeTermsStore) LatestAcceptance(ctx context.Context, consumerID valueobjects.ConsumerID) (*entities.TermsAcceptance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++

	list := f.acceptances[consumerID.String()]
	if len(list) == 0 {
		return nil, pkgerrors.NewNotFoundError("terms acceptance")
	}
	sorted := make([]entities.TermsAcceptance, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AcceptedAt.After(sorted[j].AcceptedAt) })
	return &sorted[0], nil
}

func (f *fakeTermsStore) RecordAcceptance(ctx context.Context, acceptance entities.TermsAcceptance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acceptances[acceptance.ConsumerID] = append(f.acceptances[acceptance.ConsumerID], acceptance)
	return nil
}

func newTestTermsResolver(store *fakeTermsStore, c *MemoryCache, latestVersion string) *CachedTermsResolver {
	return NewCachedTermsResolver(store, c, NewKeySpace("test:"), DefaultCachingConfig(), latestVersion, testMetrics(), zap.NewNop())
}

func TestCachedTermsResolver_Status_NoAcceptanceIsZeroStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeTermsStore()
	resolver := newTestTermsResolver(store, NewMemoryCache(), "2024-06")
	consumerID := valueobjects.NewConsumerID()

	status, err := resolver.Status(ctx, consumerID)

	require.NoError(t, err)
	assert.False(t, status.AcceptedLatest)
	assert.Nil(t, status.LatestAcceptedVersion)
}

func TestCachedTermsResolver_Status_CachesZeroStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeTermsStore()
	resolver := newTestTermsResolver(store, NewMemoryCache(), "2024-06")
	consumerID := valueobjects.NewConsumerID()

	_, err := resolver.Status(ctx, consumerID)
	require.NoError(t, err)
	_, err = resolver.Status(ctx, consumerID)
	require.NoError(t, err)

	assert.Equal(t, 1, store.latestCalls)
}

func TestCachedTermsResolver_Status_AgainstLatestVersion(t *testing.T) {
	ctx := context.Background()
	store := newFakeTermsStore()
	resolver := newTestTermsResolver(store, NewMemoryCache(), "2024-06")
	consumerID := valueobjects.NewConsumerID()

	acceptance, err := entities.NewTermsAcceptance(consumerID.String(), "2024-06", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.RecordAcceptance(ctx, acceptance))

	status, err := resolver.Status(ctx, consumerID)

	require.NoError(t, err)
	assert.True(t, status.AcceptedLatest)
	require.NotNil(t, status.LatestAcceptedVersion)
	assert.Equal(t, "2024-06", *status.LatestAcceptedVersion)
}

func TestCachedTermsResolver_Status_StaleVersionIsNotLatest(t *testing.T) {
	ctx := context.Background()
	store := newFakeTermsStore()
	resolver := newTestTermsResolver(store, NewMemoryCache(), "2024-06")
	consumerID := valueobjects.NewConsumerID()

	acceptance, err := entities.NewTermsAcceptance(consumerID.String(), "2023-11", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.RecordAcceptance(ctx, acceptance))

	status, err := resolver.Status(ctx, consumerID)

	require.NoError(t, err)
	assert.False(t, status.AcceptedLatest)
	require.NotNil(t, status.LatestAcceptedVersion)
	assert.Equal(t, "2023-11", *status.LatestAcceptedVersion)
}

func TestCachedTermsResolver_Accept_InvalidatesCachedStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeTermsStore()
	resolver := newTestTermsResolver(store, NewMemoryCache(), "2024-06")
	consumerID := valueobjects.NewConsumerID()

	// Warm the cache with the zero status
	status, err := resolver.Status(ctx, consumerID)
	require.NoError(t, err)
	require.False(t, status.AcceptedLatest)

	require.NoError(t, resolver.Accept(ctx, consumerID, "2024-06"))

	// The next read must come from the store and see the acceptance
	status, err = resolver.Status(ctx, consumerID)
	require.NoError(t, err)
	assert.True(t, status.AcceptedLatest)
	assert.Equal(t, 2, store.latestCalls)
}

func TestCachedTermsResolver_Accept_EmptyVersionRejected(t *testing.T) {
	ctx := context.Background()
	resolver := newTestTermsResolver(newFakeTermsStore(), NewMemoryCache(), "2024-06")

	err := resolver.Accept(ctx, valueobjects.NewConsumerID(), "")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCachedTermsResolver_Status_ReadsNeverRecordAcceptance(t *testing.T) {
	ctx := context.Background()
	store := newFakeTermsStore()
	resolver := newTestTermsResolver(store, NewMemoryCache(), "2024-06")
	consumerID := valueobjects.NewConsumerID()

	_, err := resolver.Status(ctx, consumerID)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.acceptances[consumerID.String()])
}
