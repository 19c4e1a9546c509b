package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingserrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/bookings/lifecycle"
	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/db/postgres"
	"slotkeeper/pkg/model"

	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, specialist_id, service_id, client_id, date::text, start_min, end_min, status, created_by, created_at, updated_at`

type postgresBookingRepository struct {
	db postgres.Querier
}

func NewPostgresBookingRepository(db postgres.Querier) BookingRepository {
	return &postgresBookingRepository{db: db}
}

func (r *postgresBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO bookings (id, specialist_id, service_id, client_id, date, start_min, end_min, status, created_by)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.SpecialistID, booking.ServiceID, booking.ClientID, booking.Date,
		int(booking.Start), int(booking.End), string(booking.Status), string(booking.CreatedBy),
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if postgres.IsExclusionViolation(err) {
			return fmt.Errorf("%w: %s %s", bookingserrors.ErrTimeConflict, booking.SpecialistID, booking.Date)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	row := postgres.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return booking, nil
}

func (r *postgresBookingRepository) FindOccupying(ctx context.Context, specialistID, date string) ([]*model.Booking, error) {
	statuses := make([]string, 0, 2)
	for _, s := range lifecycle.OccupyingStatuses() {
		statuses = append(statuses, string(s))
	}

	rows, err := postgres.Conn(ctx, r.db).Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE specialist_id = $1 AND date = $2::date AND status = ANY($3)
		ORDER BY start_min`,
		specialistID, date, statuses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find occupying bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r *postgresBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	conn := postgres.Conn(ctx, r.db)

	row := conn.QueryRow(ctx,
		`UPDATE bookings SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+bookingColumns,
		id, string(from), string(to),
	)
	booking, err := scanBooking(row)
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if postgres.IsExclusionViolation(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrTimeConflict, id)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check booking existence: %w", err)
	}
	if !exists {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrStatusChanged
}

func (r *postgresBookingRepository) Search(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, error) {
	where, args := buildWhere(filter)

	order := "ASC"
	if filter.Scope == model.ScopePast {
		order = "DESC"
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY date %s, start_min %s LIMIT $%d OFFSET $%d`,
		bookingColumns, where, order, order, len(args)-1, len(args))

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r *postgresBookingRepository) Count(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	if err := postgres.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func buildWhere(filter *model.BookingFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.SpecialistID != "" {
		add("specialist_id = $%d", filter.SpecialistID)
	}
	if filter.ClientID != "" {
		add("client_id = $%d", filter.ClientID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.From != "" {
		add("date >= $%d::date", filter.From)
	}
	if filter.To != "" {
		add("date <= $%d::date", filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	var start, end int
	var status, createdBy string
	err := row.Scan(&b.ID, &b.SpecialistID, &b.ServiceID, &b.ClientID, &b.Date,
		&start, &end, &status, &createdBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Start, b.End = daytime.Minute(start), daytime.Minute(end)
	b.Status = model.BookingStatus(status)
	b.CreatedBy = model.ActorRole(createdBy)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()

	bookings := []*model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
