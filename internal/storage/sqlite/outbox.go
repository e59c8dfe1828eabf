package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusDelivered = "delivered"
	outboxStatusFailed    = "failed"
)

// EnqueueNotifications writes notifications to the outbox within the current transaction.
func (q *queries) EnqueueNotifications(ctx context.Context, notifications []models.Notification) error {
	now := time.Now().Unix()
	for i := range notifications {
		n := &notifications[i]
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt == 0 {
			n.CreatedAt = now
		}

		payload, err := models.EncodePayload(n.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode notification: %w", err)
		}

		_, err = q.q.ExecContext(ctx,
			`INSERT INTO notification_outbox (id, target_user_id, split_bill_id, kind, payload, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.TargetUserID, n.SplitBillID, string(n.Kind()), string(payload), outboxStatusPending, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to enqueue notification: %w", err)
		}
	}
	return nil
}

// PendingNotifications returns up to limit undelivered notifications in enqueue order.
// Rows whose payload cannot be decoded are marked failed and left out of the
// batch so they never block later deliveries.
func (s *SQLiteStore) PendingNotifications(ctx context.Context, limit int) ([]storage.OutboxEntry, error) {
	type outboxRow struct {
		entry   storage.OutboxEntry
		kind    string
		payload string
	}

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, target_user_id, split_bill_id, kind, payload, attempts, last_error, created_at
		 FROM notification_outbox WHERE status = ? ORDER BY rowid LIMIT ?`,
		outboxStatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	var scanned []outboxRow
	for rows.Next() {
		var r outboxRow
		if err := rows.Scan(&r.entry.Notification.ID, &r.entry.Notification.TargetUserID, &r.entry.Notification.SplitBillID,
			&r.kind, &r.payload, &r.entry.Attempts, &r.entry.LastError, &r.entry.Notification.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	rows.Close()

	entries := make([]storage.OutboxEntry, 0, len(scanned))
	for _, r := range scanned {
		payload, err := models.DecodePayload(models.NotificationKind(r.kind), []byte(r.payload))
		if err != nil {
			slog.Error("Dropping undecodable notification",
				"notification_id", r.entry.Notification.ID,
				"kind", r.kind,
				"error", err,
			)
			if err := s.markUndecodable(ctx, r.entry.Notification.ID, err.Error()); err != nil {
				return nil, err
			}
			continue
		}
		r.entry.Notification.Payload = payload
		entries = append(entries, r.entry)
	}
	return entries, nil
}

// markUndecodable moves a row straight to failed; retrying cannot fix its payload.
func (s *SQLiteStore) markUndecodable(ctx context.Context, id string, cause string) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE notification_outbox SET attempts = attempts + 1, last_error = ?, status = ? WHERE id = ?`,
		cause, outboxStatusFailed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return expectOneRow(res, "notification", id)
}

// MarkDelivered records a successful delivery.
func (s *SQLiteStore) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE notification_outbox SET status = ?, delivered_at = ? WHERE id = ?`,
		outboxStatusDelivered, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return expectOneRow(res, "notification", id)
}

// MarkFailed records a failed delivery attempt. The row stays pending until
// maxAttempts is reached.
func (s *SQLiteStore) MarkFailed(ctx context.Context, id string, cause string, maxAttempts int) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE notification_outbox SET
			attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END
		 WHERE id = ?`,
		cause, maxAttempts, outboxStatusFailed, outboxStatusPending, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return expectOneRow(res, "notification", id)
}
