package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// ConsumerID is a value object representing the internal consumer identifier.
// It is immutable, globally unique and never reused, even after a soft delete.
type ConsumerID struct {
	value string
}

// NewConsumerID creates a new random ConsumerID
func NewConsumerID() ConsumerID {
	return ConsumerID{value: uuid.New().String()}
}

// NewConsumerIDFromString creates a ConsumerID from an existing string
func NewConsumerIDFromString(id string) (ConsumerID, error) {
	if id == "" {
		return ConsumerID{}, errors.New("consumer ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ConsumerID{}, errors.New("consumer ID must be a valid UUID")
	}
	return ConsumerID{value: id}, nil
}

// String returns the string representation of the ConsumerID
func (id ConsumerID) String() string {
	return id.value
}

// Equals checks if two ConsumerIDs are equal
func (id ConsumerID) Equals(other ConsumerID) bool {
	return id.value == other.value
}

// IsZero checks if the ConsumerID is the zero value
func (id ConsumerID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ConsumerID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ConsumerID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ConsumerID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
