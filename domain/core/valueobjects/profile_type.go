package valueobjects

import "fmt"

// ProfileType is the session-scoped classification of the caller. It drives
// which repository accessors and cache TTLs apply to a request.
//
// Transitions only move toward stronger identity:
//
//	Unauthenticated -> LiteGuest -> Guest -> Authenticated
//
// Authenticated is terminal for a session; identity is never removed once
// verified within the same session.
type ProfileType string

const (
	ProfileUnauthenticated ProfileType = "unauthenticated"
	ProfileLiteGuest       ProfileType = "lite-guest"
	ProfileGuest           ProfileType = "guest"
	ProfileAuthenticated   ProfileType = "authenticated"
)

// rank orders profile types by identity strength
var profileRank = map[ProfileType]int{
	ProfileUnauthenticated: 0,
	ProfileLiteGuest:       1,
	ProfileGuest:           2,
	ProfileAuthenticated:   3,
}

// ParseProfileType validates and converts a raw string
func ParseProfileType(s string) (ProfileType, error) {
	if _, ok := profileRank[ProfileType(s)]; !ok {
		return "", fmt.Errorf("unknown profile type %q", s)
	}
	return ProfileType(s), nil
}

// String returns the string representation
func (p ProfileType) String() string {
	return string(p)
}

// CanTransitionTo reports whether upgrading from p to next is a legal
// transition. Downgrades are never legal.
func (p ProfileType) CanTransitionTo(next ProfileType) bool {
	from, ok := profileRank[p]
	if !ok {
		return false
	}
	to, ok := profileRank[next]
	if !ok {
		return false
	}
	return to > from
}

// IsAuthenticated reports whether the profile holds verified identity
func (p ProfileType) IsAuthenticated() bool {
	return p == ProfileAuthenticated
}
