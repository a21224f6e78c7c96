package valueobjects

import "fmt"

// VIPTier is the loyalty tier attached to a consumer. Nullable on the record:
// most consumers have no tier at all.
type VIPTier string

const (
	VIPTierBronze   VIPTier = "bronze"
	VIPTierSilver   VIPTier = "silver"
	VIPTierGold     VIPTier = "gold"
	VIPTierPlatinum VIPTier = "platinum"
)

// ParseVIPTier validates and converts a raw string
func ParseVIPTier(s string) (VIPTier, error) {
	switch VIPTier(s) {
	case VIPTierBronze, VIPTierSilver, VIPTierGold, VIPTierPlatinum:
		return VIPTier(s), nil
	default:
		return "", fmt.Errorf("unknown VIP tier %q", s)
	}
}

// String returns the string representation
func (t VIPTier) String() string {
	return string(t)
}
