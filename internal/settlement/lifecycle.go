package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

// Close ends an active split that has collected at least one payment.
// Participants still pending are told they no longer need to pay.
func (e *Engine) Close(ctx context.Context, callerID, splitID string) (*Result, error) {
	res, err := e.mutate(ctx, splitID, func(ctx context.Context, st *splitState) error {
		if err := st.requireCreator(callerID); err != nil {
			return err
		}
		if err := st.requireActive(); err != nil {
			return err
		}
		agg, err := st.aggregate()
		if err != nil {
			return err
		}
		if agg.PaidCount == 0 {
			return fmt.Errorf("%w: a split without payments must be cancelled instead", ErrPreconditionFailed)
		}

		st.split.Status = models.SplitStatusClosed
		st.split.ClosedAt = st.now.Unix()
		st.splitChanged = true
		st.notifyParticipants(isPending, models.SplitClosed{
			Title:          st.split.Title,
			TotalCollected: agg.TotalCollected,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Split closed", "split_id", splitID, "total_collected", res.Split.TotalCollected.String())
	return res, nil
}

// Cancel ends an active split before any money has moved. Every participant
// is notified.
func (e *Engine) Cancel(ctx context.Context, callerID, splitID string) (*Result, error) {
	res, err := e.mutate(ctx, splitID, func(ctx context.Context, st *splitState) error {
		if err := st.requireCreator(callerID); err != nil {
			return err
		}
		if err := st.requireActive(); err != nil {
			return err
		}
		agg, err := st.aggregate()
		if err != nil {
			return err
		}
		if agg.PaidCount > 0 {
			return fmt.Errorf("%w: %d participants have already paid", ErrPreconditionFailed, agg.PaidCount)
		}

		st.split.Status = models.SplitStatusCancelled
		st.split.CancelledAt = st.now.Unix()
		st.splitChanged = true
		st.notifyParticipants(nil, models.SplitCancelled{Title: st.split.Title})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Split cancelled", "split_id", splitID)
	return res, nil
}

// ExtendInput carries the new expiry as a Unix timestamp.
type ExtendInput struct {
	SplitID   string
	ExpiresAt int64
}

// ExtendExpiration moves the deadline later and forces the split back to
// active. It is the only way out of the expired status.
func (e *Engine) ExtendExpiration(ctx context.Context, callerID string, in ExtendInput) (*Result, error) {
	res, err := e.mutate(ctx, in.SplitID, func(ctx context.Context, st *splitState) error {
		if err := st.requireCreator(callerID); err != nil {
			return err
		}
		if st.split.Status.Terminal() {
			return fmt.Errorf("%w: split is %s", ErrInvalidTransition, st.split.Status)
		}

		if st.split.HasExpiry() && in.ExpiresAt <= st.split.ExpiresAt {
			return fmt.Errorf("%w: new expiry must be later than %s",
				ErrPreconditionFailed, time.Unix(st.split.ExpiresAt, 0).UTC().Format(time.RFC3339))
		}
		if in.ExpiresAt <= st.now.Unix() {
			return fmt.Errorf("%w: new expiry must be in the future", ErrPreconditionFailed)
		}

		st.split.ExpiresAt = in.ExpiresAt
		st.split.Status = models.SplitStatusActive
		st.splitChanged = true
		st.notifyParticipants(isPending, models.ExpirationExtended{
			Title:     st.split.Title,
			ExpiresAt: in.ExpiresAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Split expiry extended", "split_id", in.SplitID, "expires_at", in.ExpiresAt)
	return res, nil
}

func isPending(p *models.Participant) bool {
	return p.Status == models.ParticipantStatusPending
}
