package model

import (
	"slotkeeper/pkg/daytime"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

type Booking struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty"`
	SpecialistID string         `json:"specialist_id" bson:"specialist_id"`
	ServiceID    string         `json:"service_id" bson:"service_id"`
	ClientID     string         `json:"client_id" bson:"client_id"`
	Date         string         `json:"date" bson:"date"`
	Start        daytime.Minute `json:"start_time" bson:"start_min"`
	End          daytime.Minute `json:"end_time" bson:"end_min"`
	Status       BookingStatus  `json:"status" bson:"status"`
	CreatedBy    ActorRole      `json:"created_by" bson:"created_by"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) Range() daytime.Range {
	return daytime.NewRange(b.Start, b.End)
}

// BookingRequest is the create-booking input. The end time is never
// accepted from the caller; it is derived from the service duration.
type BookingRequest struct {
	SpecialistID string `json:"specialist_id" validate:"required,max=64"`
	ServiceID    string `json:"service_id" validate:"required,max=64"`
	ClientID     string `json:"client_id" validate:"required,max=64"`
	Date         string `json:"date" validate:"required,civil_date"`
	StartTime    string `json:"start_time" validate:"required,hhmm"`
}

type BookingFilter struct {
	SpecialistID string        `validate:"omitempty,max=64"`
	ClientID     string        `validate:"omitempty,max=64"`
	From         string        `validate:"omitempty,civil_date"`
	To           string        `validate:"omitempty,civil_date"`
	Status       BookingStatus `validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	Scope        string        `validate:"omitempty,oneof=upcoming past"`
	Limit        int
	Offset       int64
}

const (
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
)
