package postgres

import (
	"time"

	"profile-backend/domain/core/entities"
)

// ConsumerModel is the GORM row shape for consumer records. UserID is a
// pointer so unlinked guests store NULL and the composite unique index only
// binds fully-linked identities.
type ConsumerModel struct {
	ID                string    `gorm:"column:id;type:uuid;primaryKey"`
	UserID            *string   `gorm:"column:user_id;type:varchar(255);uniqueIndex:idx_consumer_identity_tuple"`
	TenantID          string    `gorm:"column:tenant_id;type:varchar(255);not null;uniqueIndex:idx_consumer_identity_tuple"`
	Experience        string    `gorm:"column:experience;type:varchar(50);not null;uniqueIndex:idx_consumer_identity_tuple"`
	DefaultAddressID  string    `gorm:"column:default_address_id;type:varchar(255)"`
	Country           string    `gorm:"column:country;type:varchar(2)"`
	VIPTier           *string   `gorm:"column:vip_tier;type:varchar(50)"`
	PaymentCustomerID string    `gorm:"column:payment_customer_id;type:varchar(255)"`
	FirstName         string    `gorm:"column:first_name;type:varchar(255)"`
	LastName          string    `gorm:"column:last_name;type:varchar(255)"`
	Email             string    `gorm:"column:email;type:varchar(255)"`
	Phone             string    `gorm:"column:phone;type:varchar(50)"`
	Recycled          bool      `gorm:"column:recycled;not null;default:false;index:idx_consumers_recycled"`
	CreatedAt         time.Time `gorm:"column:created_at;not null"`
	UpdatedAt         time.Time `gorm:"column:updated_at;not null"`
	Version           int       `gorm:"column:version;not null;default:1"`
}

// TableName specifies the table name for GORM
func (*ConsumerModel) TableName() string {
	return "consumers"
}

// TermsAcceptanceModel is the GORM row shape for terms-of-service acceptances
type TermsAcceptanceModel struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ConsumerID string    `gorm:"column:consumer_id;type:uuid;not null;index:idx_terms_consumer"`
	Version    string    `gorm:"column:version;type:varchar(50);not null"`
	AcceptedAt time.Time `gorm:"column:accepted_at;not null"`
}

// TableName specifies the table name for GORM
func (*TermsAcceptanceModel) TableName() string {
	return "terms_acceptances"
}

func modelFromSnapshot(s entities.ConsumerSnapshot) ConsumerModel {
	var userID *string
	if s.UserID != "" {
		u := s.UserID
		userID = &u
	}
	return ConsumerModel{
		ID:                s.ID,
		UserID:            userID,
		TenantID:          s.TenantID,
		Experience:        s.Experience,
		DefaultAddressID:  s.DefaultAddressID,
		Country:           s.Country,
		VIPTier:           s.VIPTier,
		PaymentCustomerID: s.PaymentCustomerID,
		FirstName:         s.FirstName,
		LastName:          s.LastName,
		Email:             s.Email,
		Phone:             s.Phone,
		Recycled:          s.Recycled,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

func (m ConsumerModel) toSnapshot() entities.ConsumerSnapshot {
	userID := ""
	if m.UserID != nil {
		userID = *m.UserID
	}
	return entities.ConsumerSnapshot{
		ID:                m.ID,
		UserID:            userID,
		TenantID:          m.TenantID,
		Experience:        m.Experience,
		DefaultAddressID:  m.DefaultAddressID,
		Country:           m.Country,
		VIPTier:           m.VIPTier,
		PaymentCustomerID: m.PaymentCustomerID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		Phone:             m.Phone,
		Recycled:          m.Recycled,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}
