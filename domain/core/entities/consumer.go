package entities

import (
	"time"

	"profile-backend/domain/core/valueobjects"
	"profile-backend/domain/events"
	pkgerrors "profile-backend/pkg/errors"
)

// Consumer is the durable consumer profile record. It is a rich domain model
// with encapsulated business logic; the store and cache layers deal with it
// only through ConsumerSnapshot.
//
// Invariants:
//   - the internal id is immutable, globally unique and never reused
//   - (external user id, tenant id, experience) is unique when all are set
//   - a recycled record can never be written again under the same id
type Consumer struct {
	// Private fields ensure encapsulation
	id                valueobjects.ConsumerID
	userID            string // external user id, empty for unlinked guests
	experience        valueobjects.ExperienceType
	tenantID          string
	defaultAddressID  string
	country           string
	vipTier           *valueobjects.VIPTier
	paymentCustomerID string
	firstName         string
	lastName          string
	email             string
	phone             string
	recycled          bool
	createdAt         time.Time
	updatedAt         time.Time
	version           int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// ConsumerSnapshot is the flat, serializable form of a Consumer. It is what
// the store persists and the cache layer marshals; the decorated view is never
// serialized as a unit.
type ConsumerSnapshot struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Experience        string    `json:"experience"`
	TenantID          string    `json:"tenant_id"`
	DefaultAddressID  string    `json:"default_address_id"`
	Country           string    `json:"country"`
	VIPTier           *string   `json:"vip_tier,omitempty"`
	PaymentCustomerID string    `json:"payment_customer_id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Recycled          bool      `json:"recycled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int       `json:"version"`
}

// NewConsumer creates a new consumer record with business rule validation
func NewConsumer(tenantID string, experience valueobjects.ExperienceType, country string) (*Consumer, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewValidationError("tenantID cannot be empty")
	}
	if !experience.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown experience type")
	}

	now := time.Now()
	consumer := &Consumer{
		id:         valueobjects.NewConsumerID(),
		experience: experience,
		tenantID:   tenantID,
		country:    country,
		createdAt:  now,
		updatedAt:  now,
		version:    1,
		events:     []events.DomainEvent{},
	}

	consumer.addEvent(events.NewConsumerCreated(consumer.id, "", tenantID, experience, now))

	return consumer, nil
}

// FromSnapshot reconstructs a Consumer from persisted or cached data.
// Reconstruction raises no events.
func FromSnapshot(s ConsumerSnapshot) (*Consumer, error) {
	id, err := valueobjects.NewConsumerIDFromString(s.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	experience, err := valueobjects.ParseExperienceType(s.Experience)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	var tier *valueobjects.VIPTier
	if s.VIPTier != nil {
		t, err := valueobjects.ParseVIPTier(*s.VIPTier)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		tier = &t
	}

	return &Consumer{
		id:                id,
		userID:            s.UserID,
		experience:        experience,
		tenantID:          s.TenantID,
		defaultAddressID:  s.DefaultAddressID,
		country:           s.Country,
		vipTier:           tier,
		paymentCustomerID: s.PaymentCustomerID,
		firstName:         s.FirstName,
		lastName:          s.LastName,
		email:             s.Email,
		phone:             s.Phone,
		recycled:          s.Recycled,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		version:           s.Version,
		events:            []events.DomainEvent{},
	}, nil
}

// Snapshot returns the flat serializable form of the consumer
func (c *Consumer) Snapshot() ConsumerSnapshot {
	var tier *string
	if c.vipTier != nil {
		v := c.vipTier.String()
		tier = &v
	}
	return ConsumerSnapshot{
		ID:                c.id.String(),
		UserID:            c.userID,
		Experience:        c.experience.String(),
		TenantID:          c.tenantID,
		DefaultAddressID:  c.defaultAddressID,
		Country:           c.country,
		VIPTier:           tier,
		PaymentCustomerID: c.paymentCustomerID,
		FirstName:         c.firstName,
		LastName:          c.lastName,
		Email:             c.email,
		Phone:             c.phone,
		Recycled:          c.recycled,
		CreatedAt:         c.createdAt,
		UpdatedAt:         c.updatedAt,
		Version:           c.version,
	}
}

// Accessors

func (c *Consumer) ID() valueobjects.ConsumerID { return c.id }
func (c *Consumer) UserID() string { return c.userID }
func (c *Consumer) Experience() valueobjects.ExperienceType { return c.experience }
func (c *Consumer) TenantID() string { return c.tenantID }
func (c *Consumer) DefaultAddressID() string { return c.defaultAddressID }
func (c *Consumer) Country() string { return c.country }
func (c *Consumer) VIPTier() *valueobjects.VIPTier { return c.vipTier }
func (c *Consumer) PaymentCustomerID() string { return c.paymentCustomerID }
func (c *Consumer) FirstName() string { return c.firstName }
func (c *Consumer) LastName() string { return c.lastName }
func (c *Consumer) Email() string { return c.email }
func (c *Consumer) Phone() string { return c.phone }
func (c *Consumer) IsRecycled() bool { return c.recycled }
func (c *Consumer) CreatedAt() time.Time { return c.createdAt }
func (c *Consumer) UpdatedAt() time.Time { return c.updatedAt }
func (c *Consumer) Version() int { return c.version }

// IsLinked reports whether the record is linked to an external user identity
func (c *Consumer) IsLinked() bool {
	return c.userID != ""
}

// LinkExternalUser attaches a verified external user identity. Linking is a
// one-way operation; relinking to a different user id remaps the external key
// space and the caller must invalidate both pre- and post-image keys.
func (c *Consumer) LinkExternalUser(userID string) error {
	if c.recycled {
		return pkgerrors.NewConflictError("cannot modify a recycled consumer")
	}
	if userID == "" {
		return pkgerrors.NewValidationError("userID cannot be empty")
	}
	if c.userID == userID {
		return nil
	}

	c.userID = userID
	c.touch()
	c.addEvent(events.NewConsumerUpdated(c.id, []string{"user_id"}, c.updatedAt))
	return nil
}

// UpdateContact updates the consumer contact fields
func (c *Consumer) UpdateContact(firstName, lastName, email, phone string) error {
	if c.recycled {
		return pkgerrors.NewConflictError("cannot modify a recycled consumer")
	}

	c.firstName = firstName
	c.lastName = lastName
	c.email = email
	c.phone = phone
	c.touch()
	c.addEvent(events.NewConsumerUpdated(c.id, []string{"contact"}, c.updatedAt))
	return nil
}

// ChangeVIPTier sets or clears the consumer VIP tier. Identity cache values
// embed the tier, so callers must invalidate identity keys even though the key
// inputs themselves are unchanged.
func (c *Consumer) ChangeVIPTier(tier *valueobjects.VIPTier) error {
	if c.recycled {
		return pkgerrors.NewConflictError("cannot modify a recycled consumer")
	}

	c.vipTier = tier
	c.touch()
	c.addEvent(events.NewConsumerUpdated(c.id, []string{"vip_tier"}, c.updatedAt))
	return nil
}

// ChangeDefaultAddress updates the default address link
func (c *Consumer) ChangeDefaultAddress(addressID string) error {
	if c.recycled {
		return pkgerrors.NewConflictError("cannot modify a recycled consumer")
	}
	if addressID == "" {
		return pkgerrors.NewValidationError("addressID cannot be empty")
	}
	if c.defaultAddressID == addressID {
		return nil
	}

	old := c.defaultAddressID
	c.defaultAddressID = addressID
	c.touch()
	c.addEvent(events.NewDefaultAddressChanged(c.id, old, addressID, c.updatedAt))
	return nil
}

// SetPaymentCustomerID records the payment-provider customer reference
func (c *Consumer) SetPaymentCustomerID(customerID string) error {
	if c.recycled {
		return pkgerrors.NewConflictError("cannot modify a recycled consumer")
	}

	c.paymentCustomerID = customerID
	c.touch()
	c.addEvent(events.NewConsumerUpdated(c.id, []string{"payment_customer_id"}, c.updatedAt))
	return nil
}

// MarkRecycled soft-deletes the record. The id stays tombstoned forever.
func (c *Consumer) MarkRecycled() error {
	if c.recycled {
		return nil
	}

	c.recycled = true
	c.touch()
	c.addEvent(events.NewConsumerDeleted(c.id, c.updatedAt))
	return nil
}

// GetUncommittedEvents returns events raised since load
func (c *Consumer) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the uncommitted event list
func (c *Consumer) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

func (c *Consumer) touch() {
	c.updatedAt = time.Now()
	c.version++
}

func (c *Consumer) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}
