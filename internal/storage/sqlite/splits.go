package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

const splitColumns = `id, creator_id, title, description, emoji, image_url, total_amount, split_mode, status,
	expires_at, total_participants, active_participant_count, paid_count, total_collected,
	created_at, updated_at, completed_at, closed_at, cancelled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSplit(row rowScanner) (*models.SplitBill, error) {
	split := &models.SplitBill{}
	err := row.Scan(&split.ID, &split.CreatorID, &split.Title, &split.Description, &split.Emoji, &split.ImageURL,
		&split.TotalAmount, &split.SplitMode, &split.Status,
		&split.ExpiresAt, &split.TotalParticipants, &split.ActiveParticipantCount, &split.PaidCount, &split.TotalCollected,
		&split.CreatedAt, &split.UpdatedAt, &split.CompletedAt, &split.ClosedAt, &split.CancelledAt)
	if err != nil {
		return nil, err
	}
	return split, nil
}

// InsertSplit persists a new split.
func (q *queries) InsertSplit(ctx context.Context, split *models.SplitBill) error {
	if split.ID == "" {
		return fmt.Errorf("failed to insert split: missing id")
	}

	_, err := q.q.ExecContext(ctx,
		`INSERT INTO split_bills (`+splitColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		split.ID, split.CreatorID, split.Title, split.Description, split.Emoji, split.ImageURL,
		split.TotalAmount, string(split.SplitMode), string(split.Status),
		split.ExpiresAt, split.TotalParticipants, split.ActiveParticipantCount, split.PaidCount, split.TotalCollected,
		split.CreatedAt, split.UpdatedAt, split.CompletedAt, split.ClosedAt, split.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}
	return nil
}

// GetSplit retrieves a split by ID.
func (q *queries) GetSplit(ctx context.Context, splitID string) (*models.SplitBill, error) {
	split, err := scanSplit(q.q.QueryRowContext(ctx,
		`SELECT `+splitColumns+` FROM split_bills WHERE id = ?`, splitID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return split, nil
}

// ListSplitsByUser retrieves splits created by or owed by the user.
func (q *queries) ListSplitsByUser(ctx context.Context, userID string) ([]*models.SplitBill, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+splitColumns+` FROM split_bills
		 WHERE creator_id = ?
		    OR id IN (SELECT split_bill_id FROM split_participants WHERE user_id = ?)
		 ORDER BY created_at DESC, rowid DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by user: %w", err)
	}
	defer rows.Close()

	var splits []*models.SplitBill
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// UpdateSplit writes status, expiry, aggregates and lifecycle timestamps.
// Identity, title and amounts are immutable after creation.
func (q *queries) UpdateSplit(ctx context.Context, split *models.SplitBill) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE split_bills SET
			status = ?, expires_at = ?,
			total_participants = ?, active_participant_count = ?, paid_count = ?, total_collected = ?,
			updated_at = ?, completed_at = ?, closed_at = ?, cancelled_at = ?
		 WHERE id = ?`,
		string(split.Status), split.ExpiresAt,
		split.TotalParticipants, split.ActiveParticipantCount, split.PaidCount, split.TotalCollected,
		split.UpdatedAt, split.CompletedAt, split.ClosedAt, split.CancelledAt,
		split.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update split: %w", err)
	}
	return expectOneRow(res, "split", split.ID)
}

func expectOneRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}
