package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileType_CanTransitionTo(t *testing.T) {
	ordered := []ProfileType{ProfileUnauthenticated, ProfileLiteGuest, ProfileGuest, ProfileAuthenticated}

	for i, from := range ordered {
		for j, to := range ordered {
			expected := j > i
			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestProfileType_UnknownValuesNeverTransition(t *testing.T) {
	unknown := ProfileType("admin")

	assert.False(t, unknown.CanTransitionTo(ProfileAuthenticated))
	assert.False(t, ProfileGuest.CanTransitionTo(unknown))
}

func TestParseProfileType(t *testing.T) {
	parsed, err := ParseProfileType("lite-guest")
	require.NoError(t, err)
	assert.Equal(t, ProfileLiteGuest, parsed)

	_, err = ParseProfileType("superuser")
	assert.Error(t, err)
}

func TestParseExperienceType(t *testing.T) {
	parsed, err := ParseExperienceType("primary-brand")
	require.NoError(t, err)
	assert.Equal(t, ExperiencePrimaryBrand, parsed)
	assert.True(t, parsed.IsValid())

	_, err = ParseExperienceType("kiosk")
	assert.Error(t, err)
	assert.False(t, ExperienceType("kiosk").IsValid())
}

func TestParseVIPTier(t *testing.T) {
	for _, tier := range []string{"bronze", "silver", "gold", "platinum"} {
		parsed, err := ParseVIPTier(tier)
		require.NoError(t, err)
		assert.Equal(t, tier, parsed.String())
	}

	_, err := ParseVIPTier("diamond")
	assert.Error(t, err)
}

func TestConsumerID(t *testing.T) {
	id := NewConsumerID()
	assert.False(t, id.IsZero())

	parsed, err := NewConsumerIDFromString(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	_, err = NewConsumerIDFromString("")
	assert.Error(t, err)
	_, err = NewConsumerIDFromString("not-a-uuid")
	assert.Error(t, err)
}
