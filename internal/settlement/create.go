package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitsettle/internal/calculator"
	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/money"
	"github.com/mmynk/splitsettle/internal/storage"
)

// ParticipantShare names a participant and, in custom mode, their share.
type ParticipantShare struct {
	UserID string
	Amount money.Money // ignored in equal mode
}

// CreateInput describes a new split.
type CreateInput struct {
	Title        string
	Description  string
	Emoji        string
	ImageURL     string
	TotalAmount  money.Money
	SplitMode    models.SplitMode
	Participants []ParticipantShare
	// ExpiresAt is a Unix timestamp; zero means no expiry.
	ExpiresAt int64
}

// Create validates the request, allocates shares and persists the split with
// all participants pending. Every participant receives a split_requested
// notification.
func (e *Engine) Create(ctx context.Context, callerID string, in CreateInput) (*Result, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, fmt.Errorf("%w: caller identity is required", ErrNotAuthorized)
	}

	now := e.now()
	in.Participants = append([]ParticipantShare(nil), in.Participants...)
	shares, err := allocate(callerID, &in)
	if err != nil {
		return nil, err
	}
	if in.ExpiresAt != 0 && in.ExpiresAt <= now.Unix() {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidSplit)
	}

	split := &models.SplitBill{
		ID:          uuid.New().String(),
		CreatorID:   callerID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Emoji:       strings.TrimSpace(in.Emoji),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		TotalAmount: in.TotalAmount,
		SplitMode:   in.SplitMode,
		Status:      models.SplitStatusActive,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now.Unix(),
		UpdatedAt:   now.Unix(),
	}

	participants := make([]*models.Participant, 0, len(in.Participants))
	for _, ps := range in.Participants {
		participants = append(participants, &models.Participant{
			SplitBillID: split.ID,
			UserID:      ps.UserID,
			Amount:      shares[ps.UserID],
			Status:      models.ParticipantStatusPending,
			CreatedAt:   now.Unix(),
		})
	}

	agg, err := calculator.Recompute(participants)
	if err != nil {
		return nil, err
	}
	agg.Apply(split)

	st := &splitState{split: split, participants: participants, now: now}
	for _, p := range participants {
		st.notify(p.UserID, models.SplitRequested{
			Title:     split.Title,
			CreatorID: split.CreatorID,
			Amount:    p.Amount,
		})
	}

	err = e.store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := tx.InsertSplit(ctx, split); err != nil {
			return err
		}
		if err := tx.InsertParticipants(ctx, participants); err != nil {
			return err
		}
		return tx.EnqueueNotifications(ctx, st.notifications)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Split created",
		"split_id", split.ID,
		"creator_id", split.CreatorID,
		"mode", split.SplitMode,
		"participants", len(participants),
		"total", split.TotalAmount.String(),
	)
	return st.result(), nil
}

// allocate validates the participant list and returns each participant's share.
// It normalizes in.Title and in.SplitMode.
func allocate(creatorID string, in *CreateInput) (map[string]money.Money, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidSplit)
	}
	if len(in.Title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidSplit, maxTitleLength)
	}
	if in.SplitMode == "" {
		in.SplitMode = models.SplitModeEqual
	}
	if !in.SplitMode.Valid() {
		return nil, fmt.Errorf("%w: unknown split mode %q", ErrInvalidSplit, in.SplitMode)
	}

	n := len(in.Participants)
	if n < MinParticipants || n > MaxParticipants {
		return nil, fmt.Errorf("%w: need between %d and %d participants, got %d",
			ErrInvalidSplit, MinParticipants, MaxParticipants, n)
	}

	ids := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for i := range in.Participants {
		id := strings.TrimSpace(in.Participants[i].UserID)
		in.Participants[i].UserID = id
		switch {
		case id == "":
			return nil, fmt.Errorf("%w: participant %d has no user id", ErrInvalidSplit, i)
		case id == creatorID:
			return nil, fmt.Errorf("%w: creator cannot be a participant", ErrInvalidSplit)
		case seen[id]:
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrInvalidSplit, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if in.TotalAmount.IsZero() {
		return nil, fmt.Errorf("%w: total must be greater than zero", ErrInvalidSplit)
	}

	if in.SplitMode == models.SplitModeEqual {
		if in.TotalAmount.Cmp(money.New(uint64(n))) < 0 {
			return nil, fmt.Errorf("%w: total %s cannot give %d participants a positive share",
				ErrInvalidSplit, in.TotalAmount, n)
		}
		shares, err := calculator.AllocateEqually(in.TotalAmount, ids)
		return shares, translate(err)
	}

	shares := make(map[string]money.Money, n)
	for _, ps := range in.Participants {
		shares[ps.UserID] = ps.Amount
	}
	if err := calculator.ValidateCustomSplit(in.TotalAmount, shares); err != nil {
		return nil, translate(err)
	}
	return shares, nil
}
