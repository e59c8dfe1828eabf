package models

import (
	"encoding/json"
	"fmt"

	"github.com/mmynk/splitsettle/internal/money"
)

// NotificationKind identifies the payload type of a notification.
type NotificationKind string

const (
	KindSplitRequested     NotificationKind = "split_requested"
	KindPaymentReceived    NotificationKind = "payment_received"
	KindPaymentDeclined    NotificationKind = "payment_declined"
	KindMarkedPaid         NotificationKind = "marked_paid"
	KindPaymentReminder    NotificationKind = "payment_reminder"
	KindSplitCompleted     NotificationKind = "split_completed"
	KindSplitClosed        NotificationKind = "split_closed"
	KindSplitCancelled     NotificationKind = "split_cancelled"
	KindExpirationExtended NotificationKind = "expiration_extended"
)

// NotificationPayload is implemented only by the payload types in this file.
type NotificationPayload interface {
	Kind() NotificationKind
	notificationPayload()
}

// SplitRequested tells a participant they owe a share of a new split.
type SplitRequested struct {
	Title     string      `json:"title"`
	CreatorID string      `json:"creator_id"`
	Amount    money.Money `json:"amount"`
}

// PaymentReceived tells the creator that a participant paid.
type PaymentReceived struct {
	PayerID   string      `json:"payer_id"`
	Amount    money.Money `json:"amount"`
	TxHash    string      `json:"tx_hash"`
	PaymentID string      `json:"payment_id"`
}

// PaymentDeclined tells the creator that a participant declined.
type PaymentDeclined struct {
	ParticipantID string      `json:"participant_id"`
	Amount        money.Money `json:"amount"`
}

// MarkedPaid tells a participant the creator recorded their share as paid
// outside the app.
type MarkedPaid struct {
	Amount money.Money `json:"amount"`
	Note   string      `json:"note,omitempty"`
}

// PaymentReminder nudges a pending participant.
type PaymentReminder struct {
	Title          string      `json:"title"`
	Amount         money.Money `json:"amount"`
	ReminderNumber int         `json:"reminder_number"`
}

// SplitCompleted is sent once to the creator and every participant.
type SplitCompleted struct {
	Title          string      `json:"title"`
	TotalCollected money.Money `json:"total_collected"`
}

// SplitClosed tells pending participants they no longer need to pay.
type SplitClosed struct {
	Title          string      `json:"title"`
	TotalCollected money.Money `json:"total_collected"`
}

// SplitCancelled tells every participant the split was cancelled.
type SplitCancelled struct {
	Title string `json:"title"`
}

// ExpirationExtended tells pending participants about the new deadline.
type ExpirationExtended struct {
	Title     string `json:"title"`
	ExpiresAt int64  `json:"expires_at"`
}

func (SplitRequested) Kind() NotificationKind     { return KindSplitRequested }
func (PaymentReceived) Kind() NotificationKind    { return KindPaymentReceived }
func (PaymentDeclined) Kind() NotificationKind    { return KindPaymentDeclined }
func (MarkedPaid) Kind() NotificationKind         { return KindMarkedPaid }
func (PaymentReminder) Kind() NotificationKind    { return KindPaymentReminder }
func (SplitCompleted) Kind() NotificationKind     { return KindSplitCompleted }
func (SplitClosed) Kind() NotificationKind        { return KindSplitClosed }
func (SplitCancelled) Kind() NotificationKind     { return KindSplitCancelled }
func (ExpirationExtended) Kind() NotificationKind { return KindExpirationExtended }

func (SplitRequested) notificationPayload()     {}
func (PaymentReceived) notificationPayload()    {}
func (PaymentDeclined) notificationPayload()    {}
func (MarkedPaid) notificationPayload()         {}
func (PaymentReminder) notificationPayload()    {}
func (SplitCompleted) notificationPayload()     {}
func (SplitClosed) notificationPayload()        {}
func (SplitCancelled) notificationPayload()     {}
func (ExpirationExtended) notificationPayload() {}

// Notification is one event addressed to one user.
type Notification struct {
	// ID is assigned when the notification is enqueued (UUID format).
	ID string

	TargetUserID string
	SplitBillID  string
	Payload      NotificationPayload

	CreatedAt int64
}

// Kind returns the payload kind.
func (n Notification) Kind() NotificationKind {
	if n.Payload == nil {
		return ""
	}
	return n.Payload.Kind()
}

// Amount returns the amount carried by the payload, if any.
func (n Notification) Amount() (money.Money, bool) {
	switch p := n.Payload.(type) {
	case SplitRequested:
		return p.Amount, true
	case PaymentReceived:
		return p.Amount, true
	case PaymentDeclined:
		return p.Amount, true
	case MarkedPaid:
		return p.Amount, true
	case PaymentReminder:
		return p.Amount, true
	case SplitCompleted:
		return p.TotalCollected, true
	case SplitClosed:
		return p.TotalCollected, true
	default:
		return money.Money{}, false
	}
}

// EncodePayload serializes the payload for the outbox.
func EncodePayload(p NotificationPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil notification payload")
	}
	return json.Marshal(p)
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(kind NotificationKind, data []byte) (NotificationPayload, error) {
	var (
		p   NotificationPayload
		err error
	)
	switch kind {
	case KindSplitRequested:
		p, err = decodeAs[SplitRequested](data)
	case KindPaymentReceived:
		p, err = decodeAs[PaymentReceived](data)
	case KindPaymentDeclined:
		p, err = decodeAs[PaymentDeclined](data)
	case KindMarkedPaid:
		p, err = decodeAs[MarkedPaid](data)
	case KindPaymentReminder:
		p, err = decodeAs[PaymentReminder](data)
	case KindSplitCompleted:
		p, err = decodeAs[SplitCompleted](data)
	case KindSplitClosed:
		p, err = decodeAs[SplitClosed](data)
	case KindSplitCancelled:
		p, err = decodeAs[SplitCancelled](data)
	case KindExpirationExtended:
		p, err = decodeAs[ExpirationExtended](data)
	default:
		return nil, fmt.Errorf("unknown notification kind: %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return p, nil
}

func decodeAs[T NotificationPayload](data []byte) (NotificationPayload, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
