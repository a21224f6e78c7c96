package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"profile-backend/application/ports"
	"profile-backend/domain/core/entities"
	"profile-backend/domain/core/valueobjects"
	"profile-backend/domain/events"
	pkgerrors "profile-backend/pkg/errors"
)

// ProfileService is the request-scoped orchestration layer for consumer
// profiles. It applies business rules - profile-type handling, address
// management, terms acceptance - on top of the repository and decorator, and
// never touches the cache or store directly.
type ProfileService struct {
	repo      ports.ConsumerRepository
	decorator *ProfileDecorator
	terms     ports.TermsAccessor
	publisher ports.EventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewProfileService creates the profile service
func NewProfileService(
	repo ports.ConsumerRepository,
	decorator *ProfileDecorator,
	terms ports.TermsAccessor,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		repo:      repo,
		decorator: decorator,
		terms:     terms,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Session tracks the profile type resolved for one inbound session. Upgrades
// only move toward stronger identity; Authenticated is terminal.
type Session struct {
	profileType valueobjects.ProfileType
}

// NewSession starts a session with no identity
func NewSession() *Session {
	return &Session{profileType: valueobjects.ProfileUnauthenticated}
}

// ProfileType returns the session's current profile type
func (s *Session) ProfileType() valueobjects.ProfileType {
	return s.profileType
}

// Upgrade transitions the session to a stronger profile type. Downgrades and
// transitions out of Authenticated are rejected.
func (s *Session) Upgrade(next valueobjects.ProfileType) error {
	if !s.profileType.CanTransitionTo(next) {
		return pkgerrors.NewValidationError("illegal profile type transition from " +
			s.profileType.String() + " to " + next.String())
	}
	s.profileType = next
	return nil
}

// ProfileTypeFor classifies a consumer record into the session profile type
func ProfileTypeFor(consumer *entities.Consumer) valueobjects.ProfileType {
	switch {
	case consumer == nil:
		return valueobjects.ProfileUnauthenticated
	case consumer.IsLinked():
		return valueobjects.ProfileAuthenticated
	case consumer.Email() == "" && consumer.Phone() == "":
		return valueobjects.ProfileLiteGuest
	default:
		return valueobjects.ProfileGuest
	}
}

// CreateConsumerInput carries the validated fields for consumer creation
type CreateConsumerInput struct {
	TenantID   string `validate:"required"`
	Experience string `validate:"required"`
	Country    string `validate:"omitempty,iso3166_1_alpha2"`
	FirstName  string `validate:"omitempty,max=255"`
	LastName   string `validate:"omitempty,max=255"`
	Email      string `validate:"omitempty,email"`
	Phone      string `validate:"omitempty,e164"`
}

// UpdateContactInput carries the validated contact fields
type UpdateContactInput struct {
	FirstName string `validate:"omitempty,max=255"`
	LastName  string `validate:"omitempty,max=255"`
	Email     string `validate:"omitempty,email"`
	Phone     string `validate:"omitempty,e164"`
}

// CreateConsumer creates a new consumer record
func (s *ProfileService) CreateConsumer(ctx context.Context, input CreateConsumerInput) (*entities.Consumer, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	experience, err := valueobjects.ParseExperienceType(input.Experience)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	consumer, err := entities.NewConsumer(input.TenantID, experience, input.Country)
	if err != nil {
		return nil, err
	}
	if input.FirstName != "" || input.LastName != "" || input.Email != "" || input.Phone != "" {
		if err := consumer.UpdateContact(input.FirstName, input.LastName, input.Email, input.Phone); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, consumer); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, consumer)
	return consumer, nil
}

// GetProfile returns the decorated view for an internal consumer id
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*DecoratedConsumer, error) {
	consumerID, err := valueobjects.NewConsumerIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	consumer, err := s.repo.GetByID(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	return s.decorator.Decorate(ctx, consumer)
}

// GetProfileByUser returns the decorated view for an external identity triple
func (s *ProfileService) GetProfileByUser(ctx context.Context, userID, tenantID, experience string) (*DecoratedConsumer, error) {
	if userID == "" || tenantID == "" {
		return nil, pkgerrors.NewValidationError("userID and tenantID are required")
	}
	exp, err := valueobjects.ParseExperienceType(experience)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	consumer, err := s.repo.GetByUserID(ctx, userID, tenantID, exp)
	if err != nil {
		return nil, err
	}
	return s.decorator.Decorate(ctx, consumer)
}

// LinkIdentity attaches a verified external user id to the consumer and
// upgrades the session to Authenticated
func (s *ProfileService) LinkIdentity(ctx context.Context, session *Session, id, userID string) error {
	consumerID, err := valueobjects.NewConsumerIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if userID == "" {
		return pkgerrors.NewValidationError("userID cannot be empty")
	}

	consumer, err := s.repo.GetByID(ctx, consumerID)
	if err != nil {
		return err
	}
	if err := consumer.LinkExternalUser(userID); err != nil {
		return err
	}
	// Save invalidates both the old and new external-user-id key spaces via
	// the repository's pre/post image enumeration.
	if err := s.repo.Save(ctx, consumer); err != nil {
		return err
	}
	s.publishEvents(ctx, consumer)

	if session != nil && !session.ProfileType().IsAuthenticated() {
		if err := session.Upgrade(valueobjects.ProfileAuthenticated); err != nil {
			return err
		}
	}
	return nil
}

// UpdateContact updates the consumer contact fields
func (s *ProfileService) UpdateContact(ctx context.Context, id string, input UpdateContactInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	consumerID, err := valueobjects.NewConsumerIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	consumer, err := s.repo.GetByID(ctx, consumerID)
	if err != nil {
		return err
	}
	if err := consumer.UpdateContact(input.FirstName, input.LastName, input.Email, input.Phone); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, consumer); err != nil {
		return err
	}
	s.publishEvents(ctx, consumer)
	return nil
}

// ChangeVIPTier sets or clears the consumer VIP tier. The repository
// invalidates the identity caches whose values embed the tier.
func (s *ProfileService) ChangeVIPTier(ctx context.Context, id string, tier *string) error {
	consumerID, err := valueobjects.NewConsumerIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	var parsed *valueobjects.VIPTier
	if tier != nil {
		t, err := valueobjects.ParseVIPTier(*tier)
		if err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
		parsed = &t
	}

	consumer, err := s.repo.GetByID(ctx, consumerID)
	if err != nil {
		return err
	}
	if err := consumer.ChangeVIPTier(parsed); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, consumer); err != nil {
		return err
	}
	s.publishEvents(ctx, consumer)
	return nil
}

// UpdateDefaultAddress updates the default address link. The decorated caches
// that embedded the old address are invalidated through the repository's
// pre-image key enumeration.
func (s *ProfileService) UpdateDefaultAddress(ctx context.Context, id, addressID string) error {
	consumerID, err := valueobjects.NewConsumerIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	consumer, err := s.repo.GetByID(ctx, consumerID)
	if err != nil {
		return err
	}
	if err := consumer.ChangeDefaultAddress(addressID); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, consumer); err != nil {
		return err
	}
	s.publishEvents(ctx, consumer)
	return nil
}

// AcceptTerms records an explicit terms-of-service acceptance for an existing
// consumer
func (s *ProfileService) AcceptTerms(ctx context.Context, id, version string) error {
	consumerID, err := valueobjects.NewConsumerIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if version == "" {
		return pkgerrors.NewValidationError("terms version cannot be empty")
	}

	// The acceptance must belong to a live record
	if _, err := s.repo.GetByID(ctx, consumerID); err != nil {
		return err
	}
	if err := s.terms.Accept(ctx, consumerID, version); err != nil {
		return err
	}

	event := events.NewTermsAccepted(consumerID, version, time.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish degraded",
			zap.String("consumer_id", consumerID.String()),
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
	return nil
}

// DeleteConsumer soft-deletes the record; the id stays tombstoned
func (s *ProfileService) DeleteConsumer(ctx context.Context, id string) error {
	consumerID, err := valueobjects.NewConsumerIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	consumer, err := s.repo.GetByID(ctx, consumerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, consumerID); err != nil {
		return err
	}

	if err := consumer.MarkRecycled(); err == nil {
		s.publishEvents(ctx, consumer)
	}
	return nil
}

// publishEvents flushes the aggregate's uncommitted events. Publishing is
// fire-and-forget: failures are logged by the publisher and never fail the
// write that produced them.
func (s *ProfileService) publishEvents(ctx context.Context, consumer *entities.Consumer) {
	events := consumer.GetUncommittedEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, events); err != nil {
		s.logger.Warn("event publish degraded",
			zap.String("consumer_id", consumer.ID().String()),
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
	consumer.MarkEventsAsCommitted()
}
