package models

import "github.com/mmynk/splitsettle/internal/money"

// SplitMode controls how the total is divided among participants.
type SplitMode string

const (
	// SplitModeEqual divides the total into equal integer shares.
	SplitModeEqual SplitMode = "equal"
	// SplitModeCustom uses caller-supplied shares that must sum to the total.
	SplitModeCustom SplitMode = "custom"
)

// Valid reports whether the mode is one of the supported values.
func (m SplitMode) Valid() bool {
	return m == SplitModeEqual || m == SplitModeCustom
}

// SplitStatus is the lifecycle state of a split.
type SplitStatus string

const (
	SplitStatusActive    SplitStatus = "active"
	SplitStatusCompleted SplitStatus = "completed"
	SplitStatusClosed    SplitStatus = "closed"
	SplitStatusCancelled SplitStatus = "cancelled"
	// SplitStatusExpired is never written by the engine. An external sweeper
	// may set it; ExtendExpiration moves the split back to active.
	SplitStatusExpired SplitStatus = "expired"
)

// Terminal reports whether no engine operation can leave this status.
func (s SplitStatus) Terminal() bool {
	switch s {
	case SplitStatusCompleted, SplitStatusClosed, SplitStatusCancelled:
		return true
	default:
		return false
	}
}

// SplitBill represents one shared expense.
type SplitBill struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// CreatorID is the user who created the split and receives the payments.
	// The creator is never a participant.
	CreatorID string

	Title       string
	Description string

	// Emoji and ImageURL are the optional visual shown next to the title.
	Emoji    string
	ImageURL string

	// TotalAmount is fixed at creation.
	TotalAmount money.Money

	SplitMode SplitMode
	Status    SplitStatus

	// ExpiresAt is the Unix timestamp after which (plus the grace period)
	// payments are rejected. Zero means the split never expires.
	ExpiresAt int64

	// Aggregate fields derived from the participants.
	TotalParticipants      int
	ActiveParticipantCount int
	PaidCount              int
	TotalCollected         money.Money

	CreatedAt   int64
	UpdatedAt   int64
	CompletedAt int64
	ClosedAt    int64
	CancelledAt int64
}

// HasExpiry reports whether an expiration time is set.
func (s *SplitBill) HasExpiry() bool {
	return s.ExpiresAt != 0
}
