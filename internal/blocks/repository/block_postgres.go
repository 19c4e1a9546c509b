package repository

import (
	"context"
	"errors"
	"fmt"

	blockserrors "slotkeeper/internal/blocks/errors"
	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/db/postgres"
	"slotkeeper/pkg/model"

	"github.com/jackc/pgx/v5"
)

const blockColumns = `id, specialist_id, date::text, start_min, end_min, reason, origin, created_at`

type postgresBlockRepository struct {
	db postgres.Querier
}

func NewPostgresBlockRepository(db postgres.Querier) BlockRepository {
	return &postgresBlockRepository{db: db}
}

func (r *postgresBlockRepository) Create(ctx context.Context, block *model.BlockedInterval) error {
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO blocked_intervals (id, specialist_id, date, start_min, end_min, reason, origin)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		RETURNING created_at`,
		block.ID, block.SpecialistID, block.Date, int(block.Start), int(block.End), block.Reason, string(block.Origin),
	).Scan(&block.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return blockserrors.ErrSpecialistNotFound
		}
		return fmt.Errorf("failed to create blocked interval: %w", err)
	}
	return nil
}

func (r *postgresBlockRepository) FindByID(ctx context.Context, id string) (*model.BlockedInterval, error) {
	row := postgres.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+blockColumns+` FROM blocked_intervals WHERE id = $1`, id)

	block, err := scanBlock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blockserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find blocked interval: %w", err)
	}
	return block, nil
}

func (r *postgresBlockRepository) FindByDay(ctx context.Context, specialistID, date string) ([]*model.BlockedInterval, error) {
	rows, err := postgres.Conn(ctx, r.db).Query(ctx,
		`SELECT `+blockColumns+` FROM blocked_intervals
		WHERE specialist_id = $1 AND date = $2::date
		ORDER BY start_min`,
		specialistID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked intervals: %w", err)
	}
	defer rows.Close()

	blocks := []*model.BlockedInterval{}
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blocked interval: %w", err)
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blocked intervals: %w", err)
	}
	return blocks, nil
}

func (r *postgresBlockRepository) Delete(ctx context.Context, id string) error {
	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, `DELETE FROM blocked_intervals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blocked interval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return blockserrors.ErrNotFound
	}
	return nil
}

func scanBlock(row pgx.Row) (*model.BlockedInterval, error) {
	var b model.BlockedInterval
	var start, end int
	var origin string
	if err := row.Scan(&b.ID, &b.SpecialistID, &b.Date, &start, &end, &b.Reason, &origin, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Start, b.End = daytime.Minute(start), daytime.Minute(end)
	b.Origin = model.BlockOrigin(origin)
	return &b, nil
}
