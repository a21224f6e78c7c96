package ports

import (
	"context"
	"time"

	"profile-backend/domain/core/entities"
	"profile-backend/domain/core/valueobjects"
	"profile-backend/domain/events"
)

// ConsumerRepository is the read-through, write-invalidating access path for
// consumer records. This is a port in hexagonal architecture - callers never
// see whether a value came from cache or store.
type ConsumerRepository interface {
	// GetByID retrieves a consumer by internal id (cache-first)
	GetByID(ctx context.Context, id valueobjects.ConsumerID) (*entities.Consumer, error)

	// GetByUserID retrieves a consumer by its external identity triple
	GetByUserID(ctx context.Context, userID, tenantID string, experience valueobjects.ExperienceType) (*entities.Consumer, error)

	// Save persists a consumer (create or update) and invalidates every cache
	// key the record can be reached through
	Save(ctx context.Context, consumer *entities.Consumer) error

	// Delete soft-deletes the record; the id is never reused
	Delete(ctx context.Context, id valueobjects.ConsumerID) error
}

// ConsumerStore is the durable source of truth for consumer records.
// Implementations must provide at least read-committed isolation per id.
type ConsumerStore interface {
	// GetByID retrieves a consumer by internal id
	GetByID(ctx context.Context, id valueobjects.ConsumerID) (*entities.Consumer, error)

	// GetByUserID retrieves a consumer by its external identity triple
	GetByUserID(ctx context.Context, userID, tenantID string, experience valueobjects.ExperienceType) (*entities.Consumer, error)

	// Upsert creates or updates a consumer record
	Upsert(ctx context.Context, consumer *entities.Consumer) error

	// SoftDelete marks a record recycled without removing the row
	SoftDelete(ctx context.Context, id valueobjects.ConsumerID) error

	// Transactionally runs fn against a transaction-scoped store. The
	// transaction commits iff fn returns nil.
	Transactionally(ctx context.Context, fn func(tx ConsumerStore) error) error
}

// TermsStore owns the persisted terms-of-service acceptance state
type TermsStore interface {
	// LatestAcceptance returns the most recent acceptance for a consumer
	LatestAcceptance(ctx context.Context, consumerID valueobjects.ConsumerID) (*entities.TermsAcceptance, error)

	// RecordAcceptance persists an explicit acceptance
	RecordAcceptance(ctx context.Context, acceptance entities.TermsAcceptance) error
}

// Cache is the distributed key/value cache port. The cache is an accelerator,
// never the source of truth: every implementation failure must be recoverable
// by falling back to the store.
type Cache interface {
	// Get retrieves a raw value; the second return reports a hit
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys; deleting an absent key is not an error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher publishes domain events after a committed write.
// Fire-and-forget: a publish failure must never fail or roll back the write.
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// AddressDetail is the resolved form of a consumer's default address link
type AddressDetail struct {
	ID           string  `json:"id"`
	GeoAddressID string  `json:"geo_address_id"`
	Line1        string  `json:"line1"`
	Line2        string  `json:"line2,omitempty"`
	City         string  `json:"city"`
	Subdivision  string  `json:"subdivision"`
	PostalCode   string  `json:"postal_code"`
	CountryCode  string  `json:"country_code"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// AddressResolver resolves an address reference to its detail.
// Returns NotFound for unknown references and Unavailable when the backing
// service is down; the decorator treats both as an absent field.
type AddressResolver interface {
	Resolve(ctx context.Context, addressID string) (*AddressDetail, error)
}

// DeliveryScheduleResolver resolves the next scheduled delivery time for a
// consumer, if any
type DeliveryScheduleResolver interface {
	NextScheduledDelivery(ctx context.Context, consumerID valueobjects.ConsumerID) (*time.Time, error)
}

// TermsResolver resolves the terms-of-service status for a consumer
type TermsResolver interface {
	Status(ctx context.Context, consumerID valueobjects.ConsumerID) (entities.TermsOfServiceStatus, error)
}

// BlockedItemsResolver resolves the item-type tags a consumer is blocked from
type BlockedItemsResolver interface {
	BlockedItemTypes(ctx context.Context, consumerID valueobjects.ConsumerID) ([]string, error)
}

// TermsAccessor is the repository-like accessor for terms-of-service state:
// cached reads plus the single explicit mutation
type TermsAccessor interface {
	TermsResolver

	// Accept records an acceptance and invalidates the cached status
	Accept(ctx context.Context, consumerID valueobjects.ConsumerID, version string) error
}
