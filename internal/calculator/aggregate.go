package calculator

import (
	"fmt"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/money"
)

// Aggregate holds the split-level counters derived from its participants.
type Aggregate struct {
	TotalParticipants      int
	ActiveParticipantCount int // excludes declined
	PaidCount              int // paid + marked_paid
	TotalCollected         money.Money
}

// Recompute derives the aggregate from the full participant set.
// Callers always pass every participant of the split; counters are never
// updated incrementally.
func Recompute(participants []*models.Participant) (Aggregate, error) {
	agg := Aggregate{TotalParticipants: len(participants)}
	for _, p := range participants {
		if p.Status != models.ParticipantStatusDeclined {
			agg.ActiveParticipantCount++
		}
		if !p.Status.Settled() {
			continue
		}
		agg.PaidCount++
		collected, err := agg.TotalCollected.Add(p.Amount)
		if err != nil {
			return Aggregate{}, fmt.Errorf("failed to sum collected amount: %w", err)
		}
		agg.TotalCollected = collected
	}
	return agg, nil
}

// Complete reports whether every active participant has settled.
func (a Aggregate) Complete() bool {
	return a.ActiveParticipantCount > 0 && a.PaidCount == a.ActiveParticipantCount
}

// Apply copies the aggregate onto the split's cached fields.
func (a Aggregate) Apply(split *models.SplitBill) {
	split.TotalParticipants = a.TotalParticipants
	split.ActiveParticipantCount = a.ActiveParticipantCount
	split.PaidCount = a.PaidCount
	split.TotalCollected = a.TotalCollected
}
