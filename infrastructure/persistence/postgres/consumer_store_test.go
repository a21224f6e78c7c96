package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"profile-backend/application/ports"
	"profile-backend/domain/core/entities"
	"profile-backend/domain/core/valueobjects"
	pkgerrors "profile-backend/pkg/errors"
)

// openTestDB opens an isolated in-memory SQLite database with the same error
// translation the production connection uses.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, NewConsumerStore(db, zap.NewNop()).Migrate())
	return db
}

func newStoredConsumer(t *testing.T, userID string) *entities.Consumer {
	t.Helper()
	consumer, err := entities.NewConsumer("tenant-1", valueobjects.ExperiencePrimaryBrand, "US")
	require.NoError(t, err)
	if userID != "" {
		require.NoError(t, consumer.LinkExternalUser(userID))
	}
	consumer.MarkEventsAsCommitted()
	return consumer
}

func TestConsumerStore_UpsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	consumer := newStoredConsumer(t, "user-1")
	gold := valueobjects.VIPTierGold
	require.NoError(t, consumer.ChangeVIPTier(&gold))
	require.NoError(t, consumer.UpdateContact("Ada", "Lovelace", "ada@example.com", "+12065550100"))

	require.NoError(t, store.Upsert(ctx, consumer))

	got, err := store.GetByID(ctx, consumer.ID())
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID())
	assert.Equal(t, "Ada", got.FirstName())
	require.NotNil(t, got.VIPTier())
	assert.Equal(t, valueobjects.VIPTierGold, *got.VIPTier())
}

func TestConsumerStore_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	_, err := store.GetByID(ctx, valueobjects.NewConsumerID())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConsumerStore_Upsert_UpdateClearsNilFields(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	consumer := newStoredConsumer(t, "user-1")
	gold := valueobjects.VIPTierGold
	require.NoError(t, consumer.ChangeVIPTier(&gold))
	require.NoError(t, store.Upsert(ctx, consumer))

	// Clearing the tier must persist the NULL, not silently keep gold
	require.NoError(t, consumer.ChangeVIPTier(nil))
	require.NoError(t, store.Upsert(ctx, consumer))

	got, err := store.GetByID(ctx, consumer.ID())
	require.NoError(t, err)
	assert.Nil(t, got.VIPTier())
}

func TestConsumerStore_Upsert_DuplicateIdentityTupleConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	first := newStoredConsumer(t, "user-1")
	require.NoError(t, store.Upsert(ctx, first))

	second := newStoredConsumer(t, "user-1")

	err := store.Upsert(ctx, second)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestConsumerStore_Upsert_UnlinkedGuestsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	// Multiple unlinked guests share (NULL, tenant, experience); the unique
	// index must not treat them as duplicates.
	require.NoError(t, store.Upsert(ctx, newStoredConsumer(t, "")))
	require.NoError(t, store.Upsert(ctx, newStoredConsumer(t, "")))
}

func TestConsumerStore_SoftDelete(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	consumer := newStoredConsumer(t, "user-1")
	require.NoError(t, store.Upsert(ctx, consumer))

	require.NoError(t, store.SoftDelete(ctx, consumer.ID()))

	_, err := store.GetByID(ctx, consumer.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = store.GetByUserID(ctx, "user-1", "tenant-1", valueobjects.ExperiencePrimaryBrand)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConsumerStore_SoftDelete_TwiceIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	consumer := newStoredConsumer(t, "user-1")
	require.NoError(t, store.Upsert(ctx, consumer))
	require.NoError(t, store.SoftDelete(ctx, consumer.ID()))

	err := store.SoftDelete(ctx, consumer.ID())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConsumerStore_Upsert_RecycledIDIsTombstoned(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	consumer := newStoredConsumer(t, "user-1")
	require.NoError(t, store.Upsert(ctx, consumer))
	require.NoError(t, store.SoftDelete(ctx, consumer.ID()))

	err := store.Upsert(ctx, consumer)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestConsumerStore_GetByUserID(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	consumer := newStoredConsumer(t, "user-1")
	require.NoError(t, store.Upsert(ctx, consumer))

	got, err := store.GetByUserID(ctx, "user-1", "tenant-1", valueobjects.ExperiencePrimaryBrand)
	require.NoError(t, err)
	assert.True(t, got.ID().Equals(consumer.ID()))

	_, err = store.GetByUserID(ctx, "user-1", "tenant-1", valueobjects.ExperienceAlternateBrand)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConsumerStore_Transactionally_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewConsumerStore(openTestDB(t), zap.NewNop())

	consumer := newStoredConsumer(t, "user-1")
	boom := errors.New("boom")

	err := store.Transactionally(ctx, func(tx ports.ConsumerStore) error {
		if err := tx.Upsert(ctx, consumer); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.GetByID(ctx, consumer.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestTermsAcceptanceStore_LatestAcceptance(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewTermsAcceptanceStore(db, zap.NewNop())
	consumerID := valueobjects.NewConsumerID()

	_, err := store.LatestAcceptance(ctx, consumerID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	older, err := entities.NewTermsAcceptance(consumerID.String(), "2023-11", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	newer, err := entities.NewTermsAcceptance(consumerID.String(), "2024-06", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.RecordAcceptance(ctx, older))
	require.NoError(t, store.RecordAcceptance(ctx, newer))

	latest, err := store.LatestAcceptance(ctx, consumerID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06", latest.Version)
}

func TestAddressStore_Resolve(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewAddressStore(db, zap.NewNop())

	require.NoError(t, db.Create(&AddressModel{
		ID:           "addr-1",
		GeoAddressID: "geo-9",
		Line1:        "100 Main St",
		City:         "Seattle",
		CountryCode:  "US",
	}).Error)

	detail, err := store.Resolve(ctx, "addr-1")
	require.NoError(t, err)
	assert.Equal(t, "Seattle", detail.City)
	assert.Equal(t, "geo-9", detail.GeoAddressID)

	_, err = store.Resolve(ctx, "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDeliveryScheduleStore_NextScheduledDelivery(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewDeliveryScheduleStore(db, zap.NewNop())
	consumerID := valueobjects.NewConsumerID()

	_, err := store.NextScheduledDelivery(ctx, consumerID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	soon := time.Now().Add(2 * time.Hour)
	later := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-time.Hour)
	for _, at := range []time.Time{later, soon, past} {
		require.NoError(t, db.Create(&DeliveryScheduleModel{ConsumerID: consumerID.String(), ScheduledAt: at}).Error)
	}

	next, err := store.NextScheduledDelivery(ctx, consumerID)
	require.NoError(t, err)
	assert.WithinDuration(t, soon, *next, time.Second)
}

func TestBlockedItemsStore_BlockedItemTypes(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewBlockedItemsStore(db, zap.NewNop())
	consumerID := valueobjects.NewConsumerID()

	types, err := store.BlockedItemTypes(ctx, consumerID)
	require.NoError(t, err)
	assert.Empty(t, types)

	for _, itemType := range []string{"tobacco", "alcohol", "tobacco"} {
		require.NoError(t, db.Create(&BlockedItemModel{ConsumerID: consumerID.String(), ItemType: itemType}).Error)
	}

	types, err = store.BlockedItemTypes(ctx, consumerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alcohol", "tobacco"}, types)
}
