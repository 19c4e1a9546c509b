package service

import (
	"context"
	"testing"

	calendarerrors "slotkeeper/internal/calendar/errors"
	"slotkeeper/internal/calendar/validator"
	"slotkeeper/pkg/config"
	"slotkeeper/pkg/daytime"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSpecialistRepository struct {
	findByIDFunc         func(ctx context.Context, id string) (*model.Specialist, error)
	upsertFunc           func(ctx context.Context, sp *model.Specialist) error
	setWorkingDayFunc    func(ctx context.Context, specialistID string, day model.WorkingDay) error
	removeWorkingDayFunc func(ctx context.Context, specialistID string, day int) error
}

func (m *mockSpecialistRepository) FindByID(ctx context.Context, id string) (*model.Specialist, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, calendarerrors.ErrNotFound
}

func (m *mockSpecialistRepository) Upsert(ctx context.Context, sp *model.Specialist) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, sp)
	}
	return nil
}

func (m *mockSpecialistRepository) SetWorkingDay(ctx context.Context, specialistID string, day model.WorkingDay) error {
	if m.setWorkingDayFunc != nil {
		return m.setWorkingDayFunc(ctx, specialistID, day)
	}
	return nil
}

func (m *mockSpecialistRepository) RemoveWorkingDay(ctx context.Context, specialistID string, day int) error {
	if m.removeWorkingDayFunc != nil {
		return m.removeWorkingDayFunc(ctx, specialistID, day)
	}
	return nil
}

func newTestService(repo *mockSpecialistRepository) *calendarService {
	log := logger.NewNop()
	return &calendarService{
		repo:      repo,
		validator: validator.NewCalendarValidator(log),
		cfg:       &config.Config{Log: log, DefaultTimeZone: "UTC"},
	}
}

func mondaySpecialist() *model.Specialist {
	return &model.Specialist{
		ID:       "sp-1",
		Name:     "Dana",
		TimeZone: "Asia/Jerusalem",
		Schedule: []model.WorkingDay{
			{Day: 1, Start: daytime.MustParseMinute("09:00"), End: daytime.MustParseMinute("12:00")},
		},
	}
}

func TestGetWorkingWindow(t *testing.T) {
	svc := newTestService(&mockSpecialistRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Specialist, error) {
			return mondaySpecialist(), nil
		},
	})

	tests := []struct {
		name string
		date string
		want *daytime.Range
	}{
		{"working monday", "2026-10-12", &daytime.Range{Start: 540, End: 720}},
		{"day off tuesday", "2026-10-13", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := svc.GetWorkingWindow(context.Background(), "sp-1", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, window)
		})
	}
}

func TestGetWorkingWindow_Errors(t *testing.T) {
	svc := newTestService(&mockSpecialistRepository{})

	_, err := svc.GetWorkingWindow(context.Background(), "sp-1", "12/10/2026")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.GetWorkingWindow(context.Background(), "missing", "2026-10-12")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestGetDay_ResolvesLocation(t *testing.T) {
	sp := mondaySpecialist()
	sp.TimeZone = ""
	svc := newTestService(&mockSpecialistRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Specialist, error) { return sp, nil },
	})
	svc.cfg.DefaultTimeZone = "Europe/Berlin"

	day, err := svc.GetDay(context.Background(), "sp-1", "2026-10-12")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", day.Location.String())
}

func TestSetWorkingDay_Validation(t *testing.T) {
	called := false
	svc := newTestService(&mockSpecialistRepository{
		setWorkingDayFunc: func(ctx context.Context, specialistID string, day model.WorkingDay) error {
			called = true
			return nil
		},
	})

	tests := []struct {
		name string
		day  int
		req  model.WorkingDayRequest
	}{
		{"end before start", 1, model.WorkingDayRequest{StartTime: "12:00", EndTime: "09:00"}},
		{"empty window", 1, model.WorkingDayRequest{StartTime: "09:00", EndTime: "09:00"}},
		{"start at midnight end", 1, model.WorkingDayRequest{StartTime: "24:00", EndTime: "24:00"}},
		{"bad format", 1, model.WorkingDayRequest{StartTime: "9am", EndTime: "12:00"}},
		{"day out of range", 7, model.WorkingDayRequest{StartTime: "09:00", EndTime: "12:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetWorkingDay(context.Background(), "sp-1", tt.day, &tt.req)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
	assert.False(t, called)
}

func TestSetWorkingDay_UntilMidnight(t *testing.T) {
	var stored model.WorkingDay
	svc := newTestService(&mockSpecialistRepository{
		setWorkingDayFunc: func(ctx context.Context, specialistID string, day model.WorkingDay) error {
			stored = day
			return nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.Specialist, error) {
			return &model.Specialist{ID: id, Schedule: []model.WorkingDay{stored}}, nil
		},
	})

	sp, err := svc.SetWorkingDay(context.Background(), "sp-1", 5, &model.WorkingDayRequest{StartTime: "18:00", EndTime: "24:00"})
	require.NoError(t, err)
	assert.Equal(t, daytime.EndOfDay, stored.End)
	assert.Len(t, sp.Schedule, 1)
}

func TestUpsertSpecialist(t *testing.T) {
	var saved *model.Specialist
	svc := newTestService(&mockSpecialistRepository{
		upsertFunc: func(ctx context.Context, sp *model.Specialist) error {
			saved = sp
			return nil
		},
	})

	err := svc.UpsertSpecialist(context.Background(), &model.Specialist{ID: " sp-1 ", Name: "  Dana   Levi ", TimeZone: " Asia//Jerusalem "})
	require.NoError(t, err)
	assert.Equal(t, "sp-1", saved.ID)
	assert.Equal(t, "Dana Levi", saved.Name)
	assert.Equal(t, "Asia/Jerusalem", saved.TimeZone)

	err = svc.UpsertSpecialist(context.Background(), &model.Specialist{ID: "sp-2", Name: "Noa", TimeZone: "Mars/Olympus"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
