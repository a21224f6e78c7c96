package services

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"profile-backend/application/ports"
	"profile-backend/domain/core/entities"
	pkgerrors "profile-backend/pkg/errors"
	"profile-backend/pkg/observability"
)

// DecoratedConsumer is the composite read model: the base record plus
// best-effort enrichments. It is built fresh per request and never persisted
// or cached as a unit - each constituent is cached by its own accessor so it
// can be invalidated at its own granularity.
type DecoratedConsumer struct {
	Consumer          *entities.Consumer
	Address           *ports.AddressDetail
	ScheduledDelivery *time.Time
	Terms             entities.TermsOfServiceStatus
	BlockedItemTypes  []string
}

// ProfileDecorator assembles the decorated view with parallel, per-call-timeout
// lookups. Decoration is strict on the base record and best-effort on
// everything else: a failed enrichment degrades that field to absent, recorded
// only as a metric.
type ProfileDecorator struct {
	address  ports.AddressResolver
	delivery ports.DeliveryScheduleResolver
	terms    ports.TermsResolver
	blocked  ports.BlockedItemsResolver

	timeout  time.Duration
	breakers map[string]*gobreaker.CircuitBreaker
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewProfileDecorator creates a decorator over the enrichment ports. Each
// source gets its own circuit breaker so one flapping collaborator fails fast
// without dragging the others down.
func NewProfileDecorator(
	address ports.AddressResolver,
	delivery ports.DeliveryScheduleResolver,
	terms ports.TermsResolver,
	blocked ports.BlockedItemsResolver,
	timeout time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ProfileDecorator {
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, source := range []string{"address", "delivery", "terms", "blocked_items"} {
		breakers[source] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    source,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// NotFound is a valid answer, not a collaborator failure
			IsSuccessful: func(err error) bool {
				return err == nil || pkgerrors.IsNotFound(err)
			},
		})
	}

	return &ProfileDecorator{
		address:  address,
		delivery: delivery,
		terms:    terms,
		blocked:  blocked,
		timeout:  timeout,
		breakers: breakers,
		metrics:  metrics,
		logger:   logger,
	}
}

// Decorate builds the composite view for an already-loaded base record. It
// only returns an error if consumer is nil; enrichment failures never fail the
// call.
func (d *ProfileDecorator) Decorate(ctx context.Context, consumer *entities.Consumer) (*DecoratedConsumer, error) {
	if consumer == nil {
		return nil, pkgerrors.NewValidationError("consumer cannot be nil")
	}

	view := &DecoratedConsumer{Consumer: consumer}

	var wg sync.WaitGroup

	if consumer.DefaultAddressID() != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if detail := d.resolveAddress(ctx, consumer.DefaultAddressID()); detail != nil {
				view.Address = detail
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		view.ScheduledDelivery = d.resolveDelivery(ctx, consumer)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		view.Terms = d.resolveTerms(ctx, consumer)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		view.BlockedItemTypes = d.resolveBlockedItems(ctx, consumer)
	}()

	wg.Wait()
	return view, nil
}

func (d *ProfileDecorator) resolveAddress(ctx context.Context, addressID string) *ports.AddressDetail {
	result := d.guarded(ctx, "address", func(ctx context.Context) (interface{}, error) {
		return d.address.Resolve(ctx, addressID)
	})
	if result == nil {
		return nil
	}
	detail, _ := result.(*ports.AddressDetail)
	return detail
}

func (d *ProfileDecorator) resolveDelivery(ctx context.Context, consumer *entities.Consumer) *time.Time {
	result := d.guarded(ctx, "delivery", func(ctx context.Context) (interface{}, error) {
		return d.delivery.NextScheduledDelivery(ctx, consumer.ID())
	})
	if result == nil {
		return nil
	}
	at, _ := result.(*time.Time)
	return at
}

func (d *ProfileDecorator) resolveTerms(ctx context.Context, consumer *entities.Consumer) entities.TermsOfServiceStatus {
	result := d.guarded(ctx, "terms", func(ctx context.Context) (interface{}, error) {
		return d.terms.Status(ctx, consumer.ID())
	})
	if result == nil {
		return entities.TermsOfServiceStatus{}
	}
	status, _ := result.(entities.TermsOfServiceStatus)
	return status
}

func (d *ProfileDecorator) resolveBlockedItems(ctx context.Context, consumer *entities.Consumer) []string {
	result := d.guarded(ctx, "blocked_items", func(ctx context.Context) (interface{}, error) {
		return d.blocked.BlockedItemTypes(ctx, consumer.ID())
	})
	if result == nil {
		return nil
	}
	tags, _ := result.([]string)
	return tags
}

// guarded runs one enrichment lookup under its circuit breaker and per-call
// timeout. Any failure - NotFound, Unavailable, timeout, open breaker - is
// swallowed into a nil result and a metric.
func (d *ProfileDecorator) guarded(ctx context.Context, source string, fn func(ctx context.Context) (interface{}, error)) interface{} {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := d.breakers[source].Execute(func() (interface{}, error) {
		return fn(callCtx)
	})
	if err != nil {
		d.metrics.EnrichmentFailed(source)
		d.logger.Debug("enrichment degraded to absent",
			zap.String("source", source),
			zap.Error(err),
		)
		return nil
	}
	return result
}
