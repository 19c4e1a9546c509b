package repository

import (
	"context"

	"slotkeeper/pkg/model"
)

type SpecialistRepository interface {
	FindByID(ctx context.Context, id string) (*model.Specialist, error)
	// Upsert creates the specialist or updates its name and time zone.
	// The weekly schedule is left untouched.
	Upsert(ctx context.Context, sp *model.Specialist) error
	SetWorkingDay(ctx context.Context, specialistID string, day model.WorkingDay) error
	RemoveWorkingDay(ctx context.Context, specialistID string, day int) error
}
