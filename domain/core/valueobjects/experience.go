package valueobjects

import "fmt"

// ExperienceType identifies which storefront experience a consumer record
// belongs to. A single external user may hold one record per experience and
// tenant.
type ExperienceType string

const (
	ExperiencePrimaryBrand   ExperienceType = "primary-brand"
	ExperienceAlternateBrand ExperienceType = "alternate-brand"
)

// ParseExperienceType validates and converts a raw string
func ParseExperienceType(s string) (ExperienceType, error) {
	switch ExperienceType(s) {
	case ExperiencePrimaryBrand, ExperienceAlternateBrand:
		return ExperienceType(s), nil
	default:
		return "", fmt.Errorf("unknown experience type %q", s)
	}
}

// String returns the string representation
func (e ExperienceType) String() string {
	return string(e)
}

// IsValid reports whether the experience type is a known value
func (e ExperienceType) IsValid() bool {
	_, err := ParseExperienceType(string(e))
	return err == nil
}
