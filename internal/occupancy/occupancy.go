// Package occupancy derives the occupied intervals of a specialist's day
// from placed bookings and blocked intervals. Nothing here is cached.
package occupancy

import (
	"context"
	"fmt"

	"slotkeeper/internal/bookings/lifecycle"
	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/model"
)

type BookingSource interface {
	FindOccupying(ctx context.Context, specialistID, date string) ([]*model.Booking, error)
}

type BlockSource interface {
	FindByDay(ctx context.Context, specialistID, date string) ([]*model.BlockedInterval, error)
}

type Aggregator struct {
	bookings BookingSource
	blocks   BlockSource
}

func NewAggregator(bookings BookingSource, blocks BlockSource) *Aggregator {
	return &Aggregator{
		bookings: bookings,
		blocks:   blocks,
	}
}

// OccupiedIntervals returns the day's occupied ranges ascending and
// pairwise disjoint. Touching or overlapping raw ranges come back merged.
//
// The two reads run one after the other so that both see the same Mongo
// session when ctx carries one.
func (a *Aggregator) OccupiedIntervals(ctx context.Context, specialistID, date string) ([]daytime.Range, error) {
	bookings, err := a.bookings.FindOccupying(ctx, specialistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	blocks, err := a.blocks.FindByDay(ctx, specialistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked intervals: %w", err)
	}

	raw := make([]daytime.Range, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		if b.SpecialistID != specialistID || b.Date != date || !lifecycle.Occupying(b.Status) {
			continue
		}
		raw = append(raw, b.Range())
	}
	for _, b := range blocks {
		if b.SpecialistID != specialistID || b.Date != date {
			continue
		}
		raw = append(raw, b.Range())
	}

	return daytime.Merge(raw), nil
}
