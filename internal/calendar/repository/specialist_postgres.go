package repository

import (
	"context"
	"errors"
	"fmt"

	calendarerrors "slotkeeper/internal/calendar/errors"
	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/db/postgres"
	"slotkeeper/pkg/model"

	"github.com/jackc/pgx/v5"
)

type postgresSpecialistRepository struct {
	db postgres.Querier
}

func NewPostgresSpecialistRepository(db postgres.Querier) SpecialistRepository {
	return &postgresSpecialistRepository{db: db}
}

func (r *postgresSpecialistRepository) FindByID(ctx context.Context, id string) (*model.Specialist, error) {
	conn := postgres.Conn(ctx, r.db)

	var sp model.Specialist
	err := conn.QueryRow(ctx,
		`SELECT id, name, time_zone, created_at, updated_at FROM specialists WHERE id = $1`, id,
	).Scan(&sp.ID, &sp.Name, &sp.TimeZone, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, calendarerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find specialist: %w", err)
	}

	rows, err := conn.Query(ctx,
		`SELECT day, start_min, end_min FROM specialist_hours WHERE specialist_id = $1 ORDER BY day`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load working hours: %w", err)
	}
	defer rows.Close()

	sp.Schedule = []model.WorkingDay{}
	for rows.Next() {
		var day, start, end int
		if err := rows.Scan(&day, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan working hours: %w", err)
		}
		sp.Schedule = append(sp.Schedule, model.WorkingDay{
			Day:   day,
			Start: daytime.Minute(start),
			End:   daytime.Minute(end),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate working hours: %w", err)
	}

	return &sp, nil
}

func (r *postgresSpecialistRepository) Upsert(ctx context.Context, sp *model.Specialist) error {
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO specialists (id, name, time_zone)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, time_zone = EXCLUDED.time_zone, updated_at = NOW()
		RETURNING created_at, updated_at`,
		sp.ID, sp.Name, sp.TimeZone,
	).Scan(&sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert specialist: %w", err)
	}
	return nil
}

func (r *postgresSpecialistRepository) SetWorkingDay(ctx context.Context, specialistID string, day model.WorkingDay) error {
	_, err := postgres.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO specialist_hours (specialist_id, day, start_min, end_min)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (specialist_id, day) DO UPDATE
		SET start_min = EXCLUDED.start_min, end_min = EXCLUDED.end_min`,
		specialistID, day.Day, int(day.Start), int(day.End),
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return calendarerrors.ErrNotFound
		}
		return fmt.Errorf("failed to set working day: %w", err)
	}
	return nil
}

func (r *postgresSpecialistRepository) RemoveWorkingDay(ctx context.Context, specialistID string, day int) error {
	conn := postgres.Conn(ctx, r.db)

	tag, err := conn.Exec(ctx,
		`DELETE FROM specialist_hours WHERE specialist_id = $1 AND day = $2`, specialistID, day,
	)
	if err != nil {
		return fmt.Errorf("failed to remove working day: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM specialists WHERE id = $1)`, specialistID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check specialist: %w", err)
	}
	if !exists {
		return calendarerrors.ErrNotFound
	}
	return nil
}
