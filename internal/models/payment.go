package models

import "github.com/mmynk/splitsettle/internal/money"

// PaymentStatusPending is the only status the settlement engine creates.
// Confirmation happens out of band.
const PaymentStatusPending = "pending"

// Payment represents a participant's payment towards a split.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// SplitBillID is the split this payment settles.
	SplitBillID string

	// PayerID is the participant who paid.
	PayerID string

	// PayeeID is the split creator receiving the funds.
	PayeeID string

	Amount money.Money

	// TxHash is the on-chain transaction reference reported by the client.
	TxHash string

	Status string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
