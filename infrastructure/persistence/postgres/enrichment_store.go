package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"profile-backend/application/ports"
	"profile-backend/domain/core/valueobjects"
	pkgerrors "profile-backend/pkg/errors"
)

// AddressModel is the GORM row shape for saved addresses
type AddressModel struct {
	ID           string  `gorm:"column:id;type:varchar(255);primaryKey"`
	GeoAddressID string  `gorm:"column:geo_address_id;type:varchar(255);not null;index:idx_addresses_geo"`
	Line1        string  `gorm:"column:line1;type:varchar(255);not null"`
	Line2        string  `gorm:"column:line2;type:varchar(255)"`
	City         string  `gorm:"column:city;type:varchar(255)"`
	Subdivision  string  `gorm:"column:subdivision;type:varchar(100)"`
	PostalCode   string  `gorm:"column:postal_code;type:varchar(20)"`
	CountryCode  string  `gorm:"column:country_code;type:varchar(2)"`
	Latitude     float64 `gorm:"column:latitude"`
	Longitude    float64 `gorm:"column:longitude"`
}

// TableName specifies the table name for GORM
func (*AddressModel) TableName() string {
	return "addresses"
}

// DeliveryScheduleModel is the GORM row shape for scheduled deliveries
type DeliveryScheduleModel struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ConsumerID  string    `gorm:"column:consumer_id;type:uuid;not null;index:idx_delivery_consumer"`
	ScheduledAt time.Time `gorm:"column:scheduled_at;not null"`
	Fulfilled   bool      `gorm:"column:fulfilled;not null;default:false"`
}

// TableName specifies the table name for GORM
func (*DeliveryScheduleModel) TableName() string {
	return "delivery_schedules"
}

// BlockedItemModel is the GORM row shape for consumer item-type blocks
type BlockedItemModel struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement"`
	ConsumerID string `gorm:"column:consumer_id;type:uuid;not null;index:idx_blocked_consumer"`
	ItemType   string `gorm:"column:item_type;type:varchar(100);not null"`
}

// TableName specifies the table name for GORM
func (*BlockedItemModel) TableName() string {
	return "blocked_items"
}

// AddressStore resolves saved addresses
type AddressStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAddressStore creates an address store over an open GORM connection
func NewAddressStore(db *gorm.DB, logger *zap.Logger) *AddressStore {
	return &AddressStore{db: db, logger: logger}
}

// Resolve returns the detail for a saved address reference
func (s *AddressStore) Resolve(ctx context.Context, addressID string) (*ports.AddressDetail, error) {
	if addressID == "" {
		return nil, pkgerrors.NewValidationError("addressID cannot be empty")
	}

	var model AddressModel
	err := s.db.WithContext(ctx).Where("id = ?", addressID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("address")
		}
		s.logger.Error("address read failed", zap.Error(err))
		return nil, pkgerrors.NewUnavailableError("address store").WithCause(err)
	}

	return &ports.AddressDetail{
		ID:           model.ID,
		GeoAddressID: model.GeoAddressID,
		Line1:        model.Line1,
		Line2:        model.Line2,
		City:         model.City,
		Subdivision:  model.Subdivision,
		PostalCode:   model.PostalCode,
		CountryCode:  model.CountryCode,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
	}, nil
}

var _ ports.AddressResolver = (*AddressStore)(nil)

// DeliveryScheduleStore resolves upcoming scheduled deliveries
type DeliveryScheduleStore struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewDeliveryScheduleStore creates a delivery store over an open GORM connection
func NewDeliveryScheduleStore(db *gorm.DB, logger *zap.Logger) *DeliveryScheduleStore {
	return &DeliveryScheduleStore{db: db, logger: logger, now: time.Now}
}

// NextScheduledDelivery returns the earliest unfulfilled future delivery, or
// NotFound when none is scheduled
func (s *DeliveryScheduleStore) NextScheduledDelivery(ctx context.Context, consumerID valueobjects.ConsumerID) (*time.Time, error) {
	var model DeliveryScheduleModel
	err := s.db.WithContext(ctx).
		Where("consumer_id = ? AND fulfilled = ? AND scheduled_at > ?",
			consumerID.String(), false, s.now()).
		Order("scheduled_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("scheduled delivery")
		}
		s.logger.Error("delivery read failed", zap.Error(err))
		return nil, pkgerrors.NewUnavailableError("delivery store").WithCause(err)
	}
	return &model.ScheduledAt, nil
}

var _ ports.DeliveryScheduleResolver = (*DeliveryScheduleStore)(nil)

// BlockedItemsStore resolves the item-type tags a consumer is blocked from
type BlockedItemsStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBlockedItemsStore creates a blocked-items store over an open GORM connection
func NewBlockedItemsStore(db *gorm.DB, logger *zap.Logger) *BlockedItemsStore {
	return &BlockedItemsStore{db: db, logger: logger}
}

// BlockedItemTypes returns the distinct blocked item types for a consumer. No
// blocks is an empty slice, not an error.
func (s *BlockedItemsStore) BlockedItemTypes(ctx context.Context, consumerID valueobjects.ConsumerID) ([]string, error) {
	var types []string
	err := s.db.WithContext(ctx).Model(&BlockedItemModel{}).
		Where("consumer_id = ?", consumerID.String()).
		Order("item_type ASC").
		Distinct().
		Pluck("item_type", &types).Error
	if err != nil {
		s.logger.Error("blocked items read failed", zap.Error(err))
		return nil, pkgerrors.NewUnavailableError("blocked items store").WithCause(err)
	}
	return types, nil
}

var _ ports.BlockedItemsResolver = (*BlockedItemsStore)(nil)
