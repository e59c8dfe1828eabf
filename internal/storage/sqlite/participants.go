package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitsettle/internal/models"
)

// InsertParticipants persists the participants of a new split.
func (q *queries) InsertParticipants(ctx context.Context, participants []*models.Participant) error {
	for _, p := range participants {
		_, err := q.q.ExecContext(ctx,
			`INSERT INTO split_participants (split_bill_id, user_id, amount, status, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			p.SplitBillID, p.UserID, p.Amount, string(p.Status), p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// ListParticipants retrieves every participant of a split.
func (q *queries) ListParticipants(ctx context.Context, splitID string) ([]*models.Participant, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT split_bill_id, user_id, amount, status, payment_id, tx_hash, marked_paid_note, marked_paid_by,
			last_reminder_sent_at, total_reminder_count, created_at, paid_at, declined_at
		 FROM split_participants WHERE split_bill_id = ? ORDER BY user_id`,
		splitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.SplitBillID, &p.UserID, &p.Amount, &p.Status, &p.PaymentID, &p.TxHash,
			&p.MarkedPaidNote, &p.MarkedPaidBy, &p.LastReminderSentAt, &p.TotalReminderCount,
			&p.CreatedAt, &p.PaidAt, &p.DeclinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// UpdateParticipant writes the participant's settlement and reminder fields.
func (q *queries) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE split_participants SET
			status = ?, payment_id = ?, tx_hash = ?, marked_paid_note = ?, marked_paid_by = ?,
			last_reminder_sent_at = ?, total_reminder_count = ?, paid_at = ?, declined_at = ?
		 WHERE split_bill_id = ? AND user_id = ?`,
		string(p.Status), p.PaymentID, p.TxHash, p.MarkedPaidNote, p.MarkedPaidBy,
		p.LastReminderSentAt, p.TotalReminderCount, p.PaidAt, p.DeclinedAt,
		p.SplitBillID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return expectOneRow(res, "participant", p.SplitBillID+"/"+p.UserID)
}
