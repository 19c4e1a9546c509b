// Package lifecycle holds the booking state machine.
package lifecycle

import "slotkeeper/pkg/model"

var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
}

// CanTransition reports whether from -> to is a legal move. Terminal
// states have no outgoing transitions and X -> X is never legal.
func CanTransition(from, to model.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status has no outgoing transitions.
func IsTerminal(status model.BookingStatus) bool {
	return status == model.StatusCancelled || status == model.StatusCompleted
}

// Occupying reports whether a booking in status holds its time range.
func Occupying(status model.BookingStatus) bool {
	return status == model.StatusPending || status == model.StatusConfirmed
}

func OccupyingStatuses() []model.BookingStatus {
	return []model.BookingStatus{model.StatusPending, model.StatusConfirmed}
}

func InitialStatus(actor model.Actor) model.BookingStatus {
	if actor.IsAdmin() {
		return model.StatusConfirmed
	}
	return model.StatusPending
}

// ActorMayTransition applies the actor rules on top of CanTransition.
// Clients may only cancel bookings they own; admins may make any legal
// move.
func ActorMayTransition(actor model.Actor, booking *model.Booking, to model.BookingStatus) bool {
	if actor.IsAdmin() {
		return true
	}
	return to == model.StatusCancelled && actor.ClientID != "" && actor.ClientID == booking.ClientID
}

func Valid(status model.BookingStatus) bool {
	switch status {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
		return true
	}
	return false
}
