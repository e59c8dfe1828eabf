package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

const (
	maxDisplayNameLength   = 64
	maxWalletAddressLength = 128
)

// ProfileInput is the caller's display identity.
type ProfileInput struct {
	DisplayName   string
	WalletAddress string
}

// UpdateProfile writes the caller's entry in the user directory and returns
// the stored record. Reminder results show the display name set here.
func (e *Engine) UpdateProfile(ctx context.Context, callerID string, in ProfileInput) (*models.User, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, fmt.Errorf("%w: caller identity is required", ErrNotAuthorized)
	}
	if e.users == nil {
		return nil, errors.New("no user directory configured")
	}

	name := strings.TrimSpace(in.DisplayName)
	wallet := strings.TrimSpace(in.WalletAddress)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	case utf8.RuneCountInString(name) > maxDisplayNameLength:
		return nil, fmt.Errorf("%w: display name exceeds %d characters", ErrInvalidInput, maxDisplayNameLength)
	case len(wallet) > maxWalletAddressLength:
		return nil, fmt.Errorf("%w: wallet address exceeds %d characters", ErrInvalidInput, maxWalletAddressLength)
	}

	var stored *models.User
	err := e.store.Update(ctx, func(ctx context.Context, _ storage.Tx) error {
		err := e.users.UpsertUser(ctx, &models.User{
			ID:            callerID,
			DisplayName:   name,
			WalletAddress: wallet,
			CreatedAt:     e.now().Unix(),
		})
		if err != nil {
			return err
		}

		users, err := e.users.GetUsersByIDs(ctx, []string{callerID})
		if err != nil {
			return err
		}
		stored = users[callerID]
		if stored == nil {
			return fmt.Errorf("profile %s missing after upsert", callerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Profile updated", "user_id", callerID)
	return stored, nil
}
