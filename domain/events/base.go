package events

import (
	"time"

	"profile-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Consumer events. Publishing is fire-and-forget and happens only after the
// owning store transaction has committed.

// ConsumerCreated is raised when a new consumer record is created
type ConsumerCreated struct {
	BaseEvent
	ConsumerID valueobjects.ConsumerID     `json:"consumer_id"`
	UserID     string                      `json:"user_id"`
	Experience valueobjects.ExperienceType `json:"experience"`
	TenantID   string                      `json:"tenant_id"`
}

// NewConsumerCreated creates a ConsumerCreated event
func NewConsumerCreated(id valueobjects.ConsumerID, userID, tenantID string, experience valueobjects.ExperienceType, timestamp time.Time) ConsumerCreated {
	return ConsumerCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "consumer.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConsumerID: id,
		UserID:     userID,
		Experience: experience,
		TenantID:   tenantID,
	}
}

// ConsumerUpdated is raised when an existing consumer record is saved
type ConsumerUpdated struct {
	BaseEvent
	ConsumerID    valueobjects.ConsumerID `json:"consumer_id"`
	ChangedFields []string                `json:"changed_fields"`
}

// NewConsumerUpdated creates a ConsumerUpdated event
func NewConsumerUpdated(id valueobjects.ConsumerID, changedFields []string, timestamp time.Time) ConsumerUpdated {
	return ConsumerUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "consumer.updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConsumerID:    id,
		ChangedFields: changedFields,
	}
}

// ConsumerDeleted is raised when a consumer record is soft-deleted
type ConsumerDeleted struct {
	BaseEvent
	ConsumerID valueobjects.ConsumerID `json:"consumer_id"`
}

// NewConsumerDeleted creates a ConsumerDeleted event
func NewConsumerDeleted(id valueobjects.ConsumerID, timestamp time.Time) ConsumerDeleted {
	return ConsumerDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "consumer.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConsumerID: id,
	}
}

// TermsAccepted is raised when a consumer accepts a terms-of-service version
type TermsAccepted struct {
	BaseEvent
	ConsumerID valueobjects.ConsumerID `json:"consumer_id"`
	TOSVersion string                  `json:"tos_version"`
}

// NewTermsAccepted creates a TermsAccepted event
func NewTermsAccepted(id valueobjects.ConsumerID, tosVersion string, timestamp time.Time) TermsAccepted {
	return TermsAccepted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "consumer.terms_accepted",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConsumerID: id,
		TOSVersion: tosVersion,
	}
}

// DefaultAddressChanged is raised when the default address link changes
type DefaultAddressChanged struct {
	BaseEvent
	ConsumerID   valueobjects.ConsumerID `json:"consumer_id"`
	OldAddressID string                  `json:"old_address_id"`
	NewAddressID string                  `json:"new_address_id"`
}

// NewDefaultAddressChanged creates a DefaultAddressChanged event
func NewDefaultAddressChanged(id valueobjects.ConsumerID, oldAddressID, newAddressID string, timestamp time.Time) DefaultAddressChanged {
	return DefaultAddressChanged{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "consumer.default_address_changed",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConsumerID:   id,
		OldAddressID: oldAddressID,
		NewAddressID: newAddressID,
	}
}
