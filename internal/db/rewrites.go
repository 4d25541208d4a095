package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

const rewriteColumns = `id, user_id, original_post, rewritten_post, tone, cringe_score, created_at`

func scanRewrite(row pgx.Row) (*Rewrite, error) {
	var r Rewrite
	err := row.Scan(&r.ID, &r.UserID, &r.OriginalPost, &r.RewrittenPost, &r.Tone, &r.CringeScore, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveRewrite stores a rewrite and fills in its generated ID and timestamp
func (db *DB) SaveRewrite(ctx context.Context, r *Rewrite) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO rewrites (user_id, original_post, rewritten_post, tone, cringe_score)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		r.UserID, r.OriginalPost, r.RewrittenPost, r.Tone, r.CringeScore,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save rewrite: %w", err)
	}
	return nil
}

// ListRewrites returns a user's rewrites, newest first
func (db *DB) ListRewrites(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Rewrite, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+rewriteColumns+`
		 FROM rewrites WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 OFFSET $2 LIMIT $3`,
		userID, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewrites: %w", err)
	}
	defer rows.Close()

	rewrites := make([]Rewrite, 0, limit)
	for rows.Next() {
		r, err := scanRewrite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rewrite: %w", err)
		}
		rewrites = append(rewrites, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewrites: %w", err)
	}
	return rewrites, nil
}

// CountRewrites returns the number of rewrites a user has saved
func (db *DB) CountRewrites(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM rewrites WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rewrites: %w", err)
	}
	return count, nil
}

// ListRewritesPage fetches one page of history and the total count concurrently.
func (db *DB) ListRewritesPage(ctx context.Context, userID uuid.UUID, page, limit int) (*RewritePage, error) {
	page, limit, offset := NormalizePage(page, limit)

	var rewrites []Rewrite
	var total int

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rewrites, err = db.ListRewrites(gCtx, userID, offset, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = db.CountRewrites(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RewritePage{
		Rewrites: rewrites,
		Total:    total,
		Page:     page,
		Limit:    limit,
		HasMore:  offset+len(rewrites) < total,
	}, nil
}

// GetRewrite retrieves one of a user's rewrites. Returns nil, nil when the
// rewrite does not exist or belongs to someone else.
func (db *DB) GetRewrite(ctx context.Context, userID, id uuid.UUID) (*Rewrite, error) {
	r, err := scanRewrite(db.pool.QueryRow(ctx,
		`SELECT `+rewriteColumns+` FROM rewrites WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rewrite: %w", err)
	}
	return r, nil
}

// DeleteRewrite removes one of a user's rewrites and reports whether a row was deleted
func (db *DB) DeleteRewrite(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM rewrites WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete rewrite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
