// Package api defines the request and response messages of the
// splitsettle.v1.SettlementService RPC. Messages are encoded as JSON.
//
// Amounts are decimal strings in the token's base unit so they survive
// clients whose number type cannot hold 256-bit values. Timestamps are Unix
// seconds; zero means unset.
package api

// Split is a split bill with its aggregates. Participants is empty in list
// responses.
type Split struct {
	ID                     string        `json:"id"`
	CreatorID              string        `json:"creator_id"`
	Title                  string        `json:"title"`
	Description            string        `json:"description,omitempty"`
	Emoji                  string        `json:"emoji,omitempty"`
	ImageURL               string        `json:"image_url,omitempty"`
	TotalAmount            string        `json:"total_amount"`
	SplitMode              string        `json:"split_mode"`
	Status                 string        `json:"status"`
	ExpiresAt              int64         `json:"expires_at,omitempty"`
	TotalParticipants      int           `json:"total_participants"`
	ActiveParticipantCount int           `json:"active_participant_count"`
	PaidCount              int           `json:"paid_count"`
	TotalCollected         string        `json:"total_collected"`
	CreatedAt              int64         `json:"created_at"`
	UpdatedAt              int64         `json:"updated_at"`
	CompletedAt            int64         `json:"completed_at,omitempty"`
	ClosedAt               int64         `json:"closed_at,omitempty"`
	CancelledAt            int64         `json:"cancelled_at,omitempty"`
	Participants           []Participant `json:"participants,omitempty"`
}

// Participant is one participant's share and settlement state.
type Participant struct {
	UserID             string `json:"user_id"`
	Amount             string `json:"amount"`
	Status             string `json:"status"`
	PaymentID          string `json:"payment_id,omitempty"`
	TxHash             string `json:"tx_hash,omitempty"`
	MarkedPaidNote     string `json:"marked_paid_note,omitempty"`
	MarkedPaidBy       string `json:"marked_paid_by,omitempty"`
	LastReminderSentAt int64  `json:"last_reminder_sent_at,omitempty"`
	TotalReminderCount int    `json:"total_reminder_count"`
	PaidAt             int64  `json:"paid_at,omitempty"`
	DeclinedAt         int64  `json:"declined_at,omitempty"`
}

// ParticipantShare names a participant of a new split. Amount is required in
// custom mode and ignored in equal mode.
type ParticipantShare struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount,omitempty"`
}

type CreateSplitRequest struct {
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Emoji        string             `json:"emoji,omitempty"`
	ImageURL     string             `json:"image_url,omitempty"`
	TotalAmount  string             `json:"total_amount"`
	SplitMode    string             `json:"split_mode,omitempty"`
	Participants []ParticipantShare `json:"participants"`
	ExpiresAt    int64              `json:"expires_at,omitempty"`
}

type CreateSplitResponse struct {
	Split *Split `json:"split"`
}

type GetSplitRequest struct {
	SplitID string `json:"split_id"`
}

type GetSplitResponse struct {
	Split *Split `json:"split"`
}

type ListSplitsRequest struct{}

type ListSplitsResponse struct {
	Splits []*Split `json:"splits"`
}

type PayRequest struct {
	SplitID string `json:"split_id"`
	TxHash  string `json:"tx_hash"`
}

type PayResponse struct {
	Split     *Split `json:"split"`
	PaymentID string `json:"payment_id"`
	// Repeat is true when the same transaction had already been applied.
	Repeat bool `json:"repeat"`
}

type DeclineRequest struct {
	SplitID string `json:"split_id"`
}

type DeclineResponse struct {
	Split *Split `json:"split"`
}

type MarkAsPaidRequest struct {
	SplitID       string `json:"split_id"`
	ParticipantID string `json:"participant_id"`
	Note          string `json:"note,omitempty"`
}

type MarkAsPaidResponse struct {
	Split *Split `json:"split"`
}

// SendReminderRequest reminds the listed participants, or every pending
// participant when ParticipantIDs is empty.
type SendReminderRequest struct {
	SplitID        string   `json:"split_id"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

// ReminderResult is the outcome for one reminder target.
type ReminderResult struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Sent        bool   `json:"sent"`
	// Reason is one of cooldown, limit_reached, not_pending, not_participant.
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	RetryAt int64  `json:"retry_at,omitempty"`
}

type SendReminderResponse struct {
	Split     *Split           `json:"split"`
	Results   []ReminderResult `json:"results"`
	SentCount int              `json:"sent_count"`
}

type CloseSplitRequest struct {
	SplitID string `json:"split_id"`
}

type CloseSplitResponse struct {
	Split *Split `json:"split"`
}

type CancelSplitRequest struct {
	SplitID string `json:"split_id"`
}

type CancelSplitResponse struct {
	Split *Split `json:"split"`
}

type ExtendExpirationRequest struct {
	SplitID   string `json:"split_id"`
	ExpiresAt int64  `json:"expires_at"`
}

type ExtendExpirationResponse struct {
	Split *Split `json:"split"`
}

// Profile is a user's display identity in the directory.
type Profile struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	WalletAddress string `json:"wallet_address,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

// UpdateProfileRequest sets the caller's own profile. An empty wallet
// address clears it.
type UpdateProfileRequest struct {
	DisplayName   string `json:"display_name"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type UpdateProfileResponse struct {
	Profile *Profile `json:"profile"`
}
