package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitsettle/internal/models"
)

// RecordPayment persists a pending payment and returns its ID.
// When called inside Update it joins the running transaction.
// Recording the same (split, payer, tx hash) twice returns the existing ID.
func (s *SQLiteStore) RecordPayment(ctx context.Context, payment *models.Payment) (string, error) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}

	conn := s.conn(ctx)
	var existing string
	err := conn.QueryRowContext(ctx,
		`SELECT id FROM payments WHERE split_bill_id = ? AND payer_id = ? AND tx_hash = ?`,
		payment.SplitBillID, payment.PayerID, payment.TxHash,
	).Scan(&existing)
	if err == nil {
		payment.ID = existing
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to check existing payment: %w", err)
	}

	_, err = conn.ExecContext(ctx,
		`INSERT INTO payments (id, split_bill_id, payer_id, payee_id, amount, tx_hash, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.SplitBillID, payment.PayerID, payment.PayeeID,
		payment.Amount, payment.TxHash, payment.Status, payment.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}
	return payment.ID, nil
}
