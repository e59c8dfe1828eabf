package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mmynk/splitsettle/internal/money"
)

var (
	ErrInvalidSplit   = errors.New("invalid split")
	ErrAmountMismatch = errors.New("amounts do not sum to total")
)

// AllocateEqually divides total into len(participants) integer shares.
// The remainder is handed out one base unit at a time to the participants
// whose IDs sort first, so the shares always sum to total and the result
// does not depend on the input order.
func AllocateEqually(total money.Money, participants []string) (map[string]money.Money, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidSplit)
	}
	if total.IsZero() {
		return nil, fmt.Errorf("%w: total must be greater than zero", ErrInvalidSplit)
	}

	sorted := make([]string, len(participants))
	copy(sorted, participants)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrInvalidSplit, sorted[i])
		}
	}

	share, remainder := total.DivMod(uint64(len(sorted)))

	shares := make(map[string]money.Money, len(sorted))
	for i, p := range sorted {
		shares[p] = share
		if uint64(i) < remainder {
			// share < total here, so adding one unit cannot overflow.
			shares[p], _ = share.Add(money.New(1))
		}
	}
	return shares, nil
}

// ValidateCustomSplit checks caller-supplied shares against the total.
// Every share must be positive and the shares must sum to total exactly.
func ValidateCustomSplit(total money.Money, shares map[string]money.Money) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: must have at least one participant", ErrInvalidSplit)
	}

	sum := money.Zero()
	for participant, amount := range shares {
		if amount.IsZero() {
			return fmt.Errorf("%w: share for %q must be greater than zero", ErrInvalidSplit, participant)
		}
		var err error
		if sum, err = sum.Add(amount); err != nil {
			return fmt.Errorf("%w: %v", ErrAmountMismatch, err)
		}
	}

	if !sum.Equal(total) {
		return fmt.Errorf("%w: shares sum to %s, total is %s", ErrAmountMismatch, sum, total)
	}
	return nil
}
