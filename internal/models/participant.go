package models

import "github.com/mmynk/splitsettle/internal/money"

// ParticipantStatus is the settlement state of one participant.
type ParticipantStatus string

const (
	ParticipantStatusPending  ParticipantStatus = "pending"
	ParticipantStatusPaid     ParticipantStatus = "paid"
	ParticipantStatusDeclined ParticipantStatus = "declined"
	// ParticipantStatusMarkedPaid means the creator confirmed a payment made
	// outside the app.
	ParticipantStatusMarkedPaid ParticipantStatus = "marked_paid"
)

// Settled reports whether the participant's share counts towards the collected total.
func (s ParticipantStatus) Settled() bool {
	return s == ParticipantStatusPaid || s == ParticipantStatusMarkedPaid
}

// Participant is one user's obligation within a split.
// (SplitBillID, UserID) is unique.
type Participant struct {
	SplitBillID string
	UserID      string

	// Amount is this participant's share, fixed at creation.
	Amount money.Money

	Status ParticipantStatus

	// PaymentID references the payment record created on pay.
	PaymentID string

	// TxHash is the caller-supplied payment reference. A repeated pay with
	// the same TxHash is treated as a retry.
	TxHash string

	// MarkedPaidNote and MarkedPaidBy are set only for marked_paid.
	MarkedPaidNote string
	MarkedPaidBy   string

	LastReminderSentAt int64
	TotalReminderCount int

	CreatedAt  int64
	PaidAt     int64
	DeclinedAt int64
}
