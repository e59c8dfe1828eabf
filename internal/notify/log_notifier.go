package notify

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitsettle/internal/models"
)

// LogNotifier writes notifications to the structured log. It stands in for
// a push or messaging transport.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs n with its kind-specific fields.
func (l *LogNotifier) Notify(ctx context.Context, n models.Notification) error {
	attrs := []any{
		"notification_id", n.ID,
		"kind", string(n.Kind()),
		"target_user_id", n.TargetUserID,
		"split_id", n.SplitBillID,
	}
	if amount, ok := n.Amount(); ok {
		attrs = append(attrs, "amount", amount.String())
	}

	switch p := n.Payload.(type) {
	case models.PaymentReceived:
		attrs = append(attrs, "payer_id", p.PayerID, "tx_hash", p.TxHash)
	case models.PaymentDeclined:
		attrs = append(attrs, "participant_id", p.ParticipantID)
	case models.PaymentReminder:
		attrs = append(attrs, "reminder_number", p.ReminderNumber)
	case models.ExpirationExtended:
		attrs = append(attrs, "expires_at", p.ExpiresAt)
	}

	l.logger.InfoContext(ctx, "Notification", attrs...)
	return nil
}
