package entities

import (
	"time"

	pkgerrors "profile-backend/pkg/errors"
)

// TermsOfServiceStatus describes where a consumer stands against the latest
// terms-of-service version. Read paths never mutate it; only an explicit
// acceptance does.
type TermsOfServiceStatus struct {
	AcceptedLatest        bool    `json:"accepted_latest"`
	LatestAcceptedVersion *string `json:"latest_accepted_version,omitempty"`
}

// TermsAcceptance is the durable record of a single acceptance
type TermsAcceptance struct {
	ConsumerID string    `json:"consumer_id"`
	Version    string    `json:"version"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// NewTermsAcceptance validates and creates an acceptance record
func NewTermsAcceptance(consumerID, version string, acceptedAt time.Time) (TermsAcceptance, error) {
	if consumerID == "" {
		return TermsAcceptance{}, pkgerrors.NewValidationError("consumerID cannot be empty")
	}
	if version == "" {
		return TermsAcceptance{}, pkgerrors.NewValidationError("terms version cannot be empty")
	}
	return TermsAcceptance{
		ConsumerID: consumerID,
		Version:    version,
		AcceptedAt: acceptedAt,
	}, nil
}

// StatusAgainst derives the status relative to the current latest version
func (a TermsAcceptance) StatusAgainst(latestVersion string) TermsOfServiceStatus {
	v := a.Version
	return TermsOfServiceStatus{
		AcceptedLatest:        a.Version == latestVersion,
		LatestAcceptedVersion: &v,
	}
}
