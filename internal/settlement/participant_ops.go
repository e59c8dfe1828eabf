package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

// PayInput identifies a payment submission.
type PayInput struct {
	SplitID string
	// TxHash is the on-chain transaction reference. Retrying with the same
	// TxHash is safe.
	TxHash string
}

// PayResult adds the payment reference to Result.
type PayResult struct {
	Result
	PaymentID string
	// Repeat is true when the call was a retry of an already applied payment.
	Repeat bool
}

// Pay marks the caller's share as paid. The split must be active and within
// its grace period. A retry with the same TxHash returns the original
// payment ID without changing anything.
func (e *Engine) Pay(ctx context.Context, callerID string, in PayInput) (*PayResult, error) {
	txHash := strings.TrimSpace(in.TxHash)
	if txHash == "" {
		return nil, fmt.Errorf("%w: transaction reference is required", ErrInvalidInput)
	}

	var (
		paymentID string
		repeat    bool
	)
	res, err := e.mutate(ctx, in.SplitID, func(ctx context.Context, st *splitState) error {
		p, err := st.requireParticipant(callerID)
		if err != nil {
			return err
		}

		if p.Status == models.ParticipantStatusPaid && p.TxHash == txHash {
			paymentID, repeat = p.PaymentID, true
			return nil
		}
		if p.Status != models.ParticipantStatusPending {
			return fmt.Errorf("%w: participant is %s", ErrInvalidTransition, p.Status)
		}
		if err := checkPayable(st.split, st.now); err != nil {
			return err
		}

		id, err := e.payments.RecordPayment(ctx, &models.Payment{
			SplitBillID: st.split.ID,
			PayerID:     p.UserID,
			PayeeID:     st.split.CreatorID,
			Amount:      p.Amount,
			TxHash:      txHash,
			Status:      models.PaymentStatusPending,
			CreatedAt:   st.now.Unix(),
		})
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		p.Status = models.ParticipantStatusPaid
		p.PaymentID = id
		p.TxHash = txHash
		p.PaidAt = st.now.Unix()
		st.touch(p)
		st.notify(st.split.CreatorID, models.PaymentReceived{
			PayerID:   p.UserID,
			Amount:    p.Amount,
			TxHash:    txHash,
			PaymentID: id,
		})
		paymentID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	if repeat {
		slog.Debug("Repeated payment ignored", "split_id", in.SplitID, "user_id", callerID, "payment_id", paymentID)
	} else {
		slog.Info("Payment recorded", "split_id", in.SplitID, "user_id", callerID, "payment_id", paymentID)
	}
	return &PayResult{Result: *res, PaymentID: paymentID, Repeat: repeat}, nil
}

// checkPayable enforces split status and expiry for a fresh payment.
func checkPayable(split *models.SplitBill, now time.Time) error {
	switch split.Status {
	case models.SplitStatusActive:
	case models.SplitStatusExpired:
		return fmt.Errorf("%w: split %s is marked expired", ErrExpired, split.ID)
	default:
		return fmt.Errorf("%w: split is %s", ErrInvalidTransition, split.Status)
	}

	if split.HasExpiry() {
		deadline := time.Unix(split.ExpiresAt, 0).Add(GracePeriod)
		if now.After(deadline) {
			return fmt.Errorf("%w: payment window closed at %s", ErrExpired, deadline.UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// Decline marks the caller's share as declined. Declined participants stop
// counting as active, which can complete the split.
func (e *Engine) Decline(ctx context.Context, callerID, splitID string) (*Result, error) {
	return e.mutate(ctx, splitID, func(ctx context.Context, st *splitState) error {
		p, err := st.requireParticipant(callerID)
		if err != nil {
			return err
		}
		if p.Status != models.ParticipantStatusPending {
			return fmt.Errorf("%w: participant is %s", ErrInvalidTransition, p.Status)
		}
		if err := st.requireActive(); err != nil {
			return err
		}

		p.Status = models.ParticipantStatusDeclined
		p.DeclinedAt = st.now.Unix()
		st.touch(p)
		st.notify(st.split.CreatorID, models.PaymentDeclined{ParticipantID: p.UserID, Amount: p.Amount})
		return nil
	})
}

// MarkPaidInput identifies a participant the creator settled outside the app.
type MarkPaidInput struct {
	SplitID       string
	ParticipantID string
	Note          string
}

// MarkAsPaidOutsideApp lets the creator record a pending participant's share
// as paid without an in-app payment. Only pending participants qualify; a
// declined participant cannot be revived this way.
func (e *Engine) MarkAsPaidOutsideApp(ctx context.Context, callerID string, in MarkPaidInput) (*Result, error) {
	note := strings.TrimSpace(in.Note)
	if len(note) > maxNoteLength {
		return nil, fmt.Errorf("%w: note exceeds %d characters", ErrInvalidInput, maxNoteLength)
	}

	return e.mutate(ctx, in.SplitID, func(ctx context.Context, st *splitState) error {
		if err := st.requireCreator(callerID); err != nil {
			return err
		}
		p := st.participant(in.ParticipantID)
		if p == nil {
			return fmt.Errorf("%w: participant %q", ErrNotFound, in.ParticipantID)
		}
		if p.Status != models.ParticipantStatusPending {
			return fmt.Errorf("%w: participant is %s", ErrInvalidTransition, p.Status)
		}
		if err := st.requireActive(); err != nil {
			return err
		}

		p.Status = models.ParticipantStatusMarkedPaid
		p.MarkedPaidNote = note
		p.MarkedPaidBy = callerID
		p.PaidAt = st.now.Unix()
		st.touch(p)
		st.notify(p.UserID, models.MarkedPaid{Amount: p.Amount, Note: note})
		return nil
	})
}
