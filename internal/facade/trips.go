package facade

import (
	"context"
	"fmt"

	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/internal/merge"
)

// GetTrip loads and validates a canonical trip document.
// Returns domain.ErrNotFound when the trip does not exist, domain.ErrValidation
// when the stored document fails load validation (the one error category the
// UI presents as a blocking load error), and a wrapped read error otherwise.
func (f *Facade) GetTrip(ctx context.Context, tripID string) (domain.TripDocument, error) {
	trip, err := f.cloud.GetTrip(ctx, tripID)
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("facade.Facade.GetTrip: %w", err)
	}
	if err := trip.Validate(); err != nil {
		return domain.TripDocument{}, fmt.Errorf("facade.Facade.GetTrip: %w", err)
	}
	return trip, nil
}

// CreateTrip validates and persists a new trip document, assigning a
// generated id when id is empty.
func (f *Facade) CreateTrip(ctx context.Context, doc domain.TripDocument, id string) (domain.TripDocument, error) {
	if err := doc.Validate(); err != nil {
		return domain.TripDocument{}, err
	}
	created, err := f.cloud.CreateTrip(ctx, doc, id)
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("facade.Facade.CreateTrip: %w", err)
	}
	return created, nil
}

// UpdateTrip applies a partial-field update to a trip document (rare —
// e.g. a coordinate correction). Fields absent from partial are untouched.
func (f *Facade) UpdateTrip(ctx context.Context, tripID string, partial map[string]any) error {
	if len(partial) == 0 {
		return fmt.Errorf("%w: update requires at least one field", domain.ErrValidation)
	}
	if err := f.cloud.UpdateTrip(ctx, tripID, partial); err != nil {
		return fmt.Errorf("facade.Facade.UpdateTrip: %w", err)
	}
	return nil
}

// MaterializedTrip returns the user-facing view of a trip: the canonical
// document with the current modification record overlaid. degraded is true
// when the modifications came from the local fallback tier.
func (f *Facade) MaterializedTrip(ctx context.Context, tripID string) (domain.TripDocument, bool, error) {
	trip, err := f.GetTrip(ctx, tripID)
	if err != nil {
		return domain.TripDocument{}, false, err
	}
	mods, degraded := f.GetUserModifications(ctx, tripID)
	return merge.Materialize(trip, mods), degraded, nil
}
