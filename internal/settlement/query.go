package settlement

import (
	"context"
	"fmt"

	"github.com/mmynk/splitsettle/internal/storage"
)

// GetSplit returns a split and its participants. Only the creator and
// participants may read it.
func (e *Engine) GetSplit(ctx context.Context, callerID, splitID string) (*Result, error) {
	var result *Result
	err := e.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		st, err := loadSplit(ctx, tx, splitID, e.now())
		if err != nil {
			return err
		}
		if callerID == "" || (callerID != st.split.CreatorID && st.participant(callerID) == nil) {
			return fmt.Errorf("%w: caller is not part of this split", ErrNotAuthorized)
		}
		result = st.result()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListSplits returns the splits the caller created or participates in,
// newest first. Participants are not loaded.
func (e *Engine) ListSplits(ctx context.Context, callerID string) ([]*Result, error) {
	if callerID == "" {
		return nil, fmt.Errorf("%w: caller identity is required", ErrNotAuthorized)
	}

	var results []*Result
	err := e.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		splits, err := tx.ListSplitsByUser(ctx, callerID)
		if err != nil {
			return err
		}
		results = make([]*Result, 0, len(splits))
		for _, s := range splits {
			results = append(results, &Result{Split: s})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
