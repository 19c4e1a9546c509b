package repository

import (
	"context"
	"testing"
	"time"

	bookingserrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRowColumns = []string{"id", "specialist_id", "service_id", "client_id", "date", "start_min", "end_min", "status", "created_by", "created_at", "updated_at"}

func newBooking() *model.Booking {
	return &model.Booking{
		ID:           "b-1",
		SpecialistID: "sp-1",
		ServiceID:    "svc-1",
		ClientID:     "c-1",
		Date:         "2026-10-26",
		Start:        daytime.MustParseMinute("10:00"),
		End:          daytime.MustParseMinute("10:30"),
		Status:       model.StatusPending,
		CreatedBy:    model.RoleClient,
	}
}

func TestPostgresBookingRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	b := newBooking()
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs("b-1", "sp-1", "svc-1", "c-1", "2026-10-26", 600, 630, "PENDING", "client").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, NewPostgresBookingRepository(mock).Create(context.Background(), b))
	assert.Equal(t, now, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingRepository_CreateOverlap(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs("b-1", "sp-1", "svc-1", "c-1", "2026-10-26", 600, 630, "PENDING", "client").
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"})

	err = NewPostgresBookingRepository(mock).Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, bookingserrors.ErrTimeConflict)
}

func TestPostgresBookingRepository_FindOccupying(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM bookings\\s+WHERE specialist_id = \\$1 AND date = \\$2::date AND status = ANY").
		WithArgs("sp-1", "2026-10-26", []string{"PENDING", "CONFIRMED"}).
		WillReturnRows(pgxmock.NewRows(bookingRowColumns).
			AddRow("b-1", "sp-1", "svc-1", "c-1", "2026-10-26", 540, 570, "CONFIRMED", "admin", now, now).
			AddRow("b-2", "sp-1", "svc-1", "c-2", "2026-10-26", 600, 630, "PENDING", "client", now, now))

	bookings, err := NewPostgresBookingRepository(mock).FindOccupying(context.Background(), "sp-1", "2026-10-26")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, daytime.Minute(540), bookings[0].Start)
	assert.Equal(t, model.StatusPending, bookings[1].Status)
	assert.Equal(t, model.RoleAdmin, bookings[0].CreatedBy)
}

func TestPostgresBookingRepository_UpdateStatus(t *testing.T) {
	now := time.Now().UTC()

	t.Run("applied", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("UPDATE bookings SET status").
			WithArgs("b-1", "PENDING", "CANCELLED").
			WillReturnRows(pgxmock.NewRows(bookingRowColumns).
				AddRow("b-1", "sp-1", "svc-1", "c-1", "2026-10-26", 600, 630, "CANCELLED", "client", now, now))

		b, err := NewPostgresBookingRepository(mock).UpdateStatus(context.Background(), "b-1", model.StatusPending, model.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, b.Status)
	})

	t.Run("status moved underneath", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("UPDATE bookings SET status").
			WithArgs("b-1", "PENDING", "CONFIRMED").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("b-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		_, err = NewPostgresBookingRepository(mock).UpdateStatus(context.Background(), "b-1", model.StatusPending, model.StatusConfirmed)
		assert.ErrorIs(t, err, bookingserrors.ErrStatusChanged)
	})

	t.Run("missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("UPDATE bookings SET status").
			WithArgs("nope", "PENDING", "CONFIRMED").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("nope").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		_, err = NewPostgresBookingRepository(mock).UpdateStatus(context.Background(), "nope", model.StatusPending, model.StatusConfirmed)
		assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
	})
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(&model.BookingFilter{
		ClientID: "c-1",
		Status:   model.StatusConfirmed,
		From:     "2026-10-19",
	})
	assert.Equal(t, " WHERE client_id = $1 AND status = $2 AND date >= $3::date", where)
	assert.Equal(t, []any{"c-1", "CONFIRMED", "2026-10-19"}, args)

	where, args = buildWhere(&model.BookingFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestPostgresBookingRepository_SearchAndCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	filter := &model.BookingFilter{SpecialistID: "sp-1", To: "2026-10-18", Scope: model.ScopePast, Limit: 10}

	mock.ExpectQuery("ORDER BY date DESC, start_min DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs("sp-1", "2026-10-18", 10, int64(0)).
		WillReturnRows(pgxmock.NewRows(bookingRowColumns).
			AddRow("b-9", "sp-1", "svc-1", "c-1", "2026-10-12", 540, 570, "COMPLETED", "client", now, now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings WHERE specialist_id = \\$1 AND date <= \\$2::date").
		WithArgs("sp-1", "2026-10-18").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	repo := NewPostgresBookingRepository(mock)
	bookings, err := repo.Search(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, model.StatusCompleted, bookings[0].Status)

	count, err := repo.Count(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
