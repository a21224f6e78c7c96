package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"profile-backend/application/ports"
	"profile-backend/domain/core/entities"
	"profile-backend/domain/core/valueobjects"
	pkgerrors "profile-backend/pkg/errors"
)

// ConsumerStore is the GORM-backed source of truth for consumer records.
// Deletes are soft: a recycled row stays as a tombstone and its id can never
// be written again.
type ConsumerStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewConsumerStore creates a store over an open GORM connection
func NewConsumerStore(db *gorm.DB, logger *zap.Logger) *ConsumerStore {
	return &ConsumerStore{db: db, logger: logger}
}

// Migrate creates or updates the backing tables
func (s *ConsumerStore) Migrate() error {
	return s.db.AutoMigrate(
		&ConsumerModel{},
		&TermsAcceptanceModel{},
		&AddressModel{},
		&DeliveryScheduleModel{},
		&BlockedItemModel{},
	)
}

// GetByID retrieves a consumer by internal id. Recycled rows are invisible to
// reads and surface as NotFound.
func (s *ConsumerStore) GetByID(ctx context.Context, id valueobjects.ConsumerID) (*entities.Consumer, error) {
	var model ConsumerModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND recycled = ?", id.String(), false).
		First(&model).Error
	if err != nil {
		return nil, s.translateReadError(err, "consumer")
	}
	return entities.FromSnapshot(model.toSnapshot())
}

// GetByUserID retrieves a consumer by its external identity triple
func (s *ConsumerStore) GetByUserID(ctx context.Context, userID, tenantID string, experience valueobjects.ExperienceType) (*entities.Consumer, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	var model ConsumerModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ? AND experience = ? AND recycled = ?",
			userID, tenantID, experience.String(), false).
		First(&model).Error
	if err != nil {
		return nil, s.translateReadError(err, "consumer")
	}
	return entities.FromSnapshot(model.toSnapshot())
}

// Upsert creates or updates a consumer record. Writing to a recycled id is a
// conflict: ids are tombstoned forever.
func (s *ConsumerStore) Upsert(ctx context.Context, consumer *entities.Consumer) error {
	snap := consumer.Snapshot()
	model := modelFromSnapshot(snap)

	var existing ConsumerModel
	err := s.db.WithContext(ctx).Where("id = ?", snap.ID).First(&existing).Error
	switch {
	case err == nil:
		if existing.Recycled {
			return pkgerrors.NewConflictError("consumer id has been recycled and cannot be reused")
		}
		// Select("*") forces zero-valued and nil fields (e.g. a cleared VIP
		// tier) to be written out instead of skipped.
		if err := s.db.WithContext(ctx).Model(&ConsumerModel{}).
			Where("id = ?", snap.ID).
			Select("*").
			Updates(&model).Error; err != nil {
			return s.translateWriteError(err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
			return s.translateWriteError(err)
		}
		return nil
	default:
		return s.translateWriteError(err)
	}
}

// SoftDelete marks a record recycled without removing the row
func (s *ConsumerStore) SoftDelete(ctx context.Context, id valueobjects.ConsumerID) error {
	result := s.db.WithContext(ctx).Model(&ConsumerModel{}).
		Where("id = ? AND recycled = ?", id.String(), false).
		Update("recycled", true)
	if result.Error != nil {
		return s.translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("consumer")
	}
	return nil
}

// Transactionally runs fn against a transaction-scoped store. The transaction
// commits iff fn returns nil.
func (s *ConsumerStore) Transactionally(ctx context.Context, fn func(tx ports.ConsumerStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ConsumerStore{db: tx, logger: s.logger})
	})
}

func (s *ConsumerStore) translateReadError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NewNotFoundError(resource)
	}
	s.logger.Error("store read failed", zap.Error(err))
	return pkgerrors.NewUnavailableError("consumer store").WithCause(err)
}

func (s *ConsumerStore) translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.NewConflictError("consumer identity tuple already exists").WithCause(err)
	}
	s.logger.Error("store write failed", zap.Error(err))
	return pkgerrors.NewUnavailableError("consumer store").WithCause(err)
}

var _ ports.ConsumerStore = (*ConsumerStore)(nil)

// TermsAcceptanceStore persists terms-of-service acceptances
type TermsAcceptanceStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTermsAcceptanceStore creates a terms store over an open GORM connection
func NewTermsAcceptanceStore(db *gorm.DB, logger *zap.Logger) *TermsAcceptanceStore {
	return &TermsAcceptanceStore{db: db, logger: logger}
}

// LatestAcceptance returns the most recent acceptance for a consumer
func (s *TermsAcceptanceStore) LatestAcceptance(ctx context.Context, consumerID valueobjects.ConsumerID) (*entities.TermsAcceptance, error) {
	var model TermsAcceptanceModel
	err := s.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID.String()).
		Order("accepted_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("terms acceptance")
		}
		s.logger.Error("terms read failed", zap.Error(err))
		return nil, pkgerrors.NewUnavailableError("terms store").WithCause(err)
	}

	return &entities.TermsAcceptance{
		ConsumerID: model.ConsumerID,
		Version:    model.Version,
		AcceptedAt: model.AcceptedAt,
	}, nil
}

// RecordAcceptance persists an explicit acceptance
func (s *TermsAcceptanceStore) RecordAcceptance(ctx context.Context, acceptance entities.TermsAcceptance) error {
	model := TermsAcceptanceModel{
		ConsumerID: acceptance.ConsumerID,
		Version:    acceptance.Version,
		AcceptedAt: acceptance.AcceptedAt,
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		s.logger.Error("terms write failed", zap.Error(err))
		return pkgerrors.NewUnavailableError("terms store").WithCause(err)
	}
	return nil
}

var _ ports.TermsStore = (*TermsAcceptanceStore)(nil)
