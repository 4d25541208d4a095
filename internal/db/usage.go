package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetUsage returns a user's usage row, or nil if the user has never rewritten anything
func (db *DB) GetUsage(ctx context.Context, userID uuid.UUID) (*Usage, error) {
	var u Usage
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, rewrite_count, updated_at FROM usage WHERE user_id = $1`,
		userID,
	).Scan(&u.UserID, &u.RewriteCount, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return &u, nil
}

// IncrementUsage adds one rewrite to a user's counter and returns the new count
func (db *DB) IncrementUsage(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO usage (user_id, rewrite_count, updated_at)
		 VALUES ($1, 1, NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET rewrite_count = usage.rewrite_count + 1, updated_at = NOW()
		 RETURNING rewrite_count`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return count, nil
}

// ReserveUsage adds one rewrite to a user's counter only while it is below
// limit. The check and the increment are a single statement, so concurrent
// reservations cannot overshoot. ok is false, and nothing changes, once the
// limit is reached.
func (db *DB) ReserveUsage(ctx context.Context, userID uuid.UUID, limit int) (count int, ok bool, err error) {
	err = db.pool.QueryRow(ctx,
		`INSERT INTO usage (user_id, rewrite_count, updated_at)
		 SELECT $1, 1, NOW() WHERE $2::int > 0
		 ON CONFLICT (user_id) DO UPDATE
		 SET rewrite_count = usage.rewrite_count + 1, updated_at = NOW()
		 WHERE usage.rewrite_count < $2::int
		 RETURNING rewrite_count`,
		userID, limit,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to reserve usage: %w", err)
	}
	return count, true, nil
}

// ReleaseUsage gives back one reserved rewrite. The counter never goes below zero.
func (db *DB) ReleaseUsage(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE usage SET rewrite_count = GREATEST(rewrite_count - 1, 0), updated_at = NOW()
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to release usage: %w", err)
	}
	return nil
}

// ResetUsage zeroes every user's counter and returns how many rows changed
func (db *DB) ResetUsage(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE usage SET rewrite_count = 0, updated_at = NOW() WHERE rewrite_count <> 0`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset usage: %w", err)
	}
	return tag.RowsAffected(), nil
}
