// Package reminder implements the per-participant reminder rate limit.
package reminder

import (
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

const (
	// Cooldown is the minimum time between two reminders to the same participant.
	Cooldown = 24 * time.Hour
	// MaxReminders is the lifetime cap per participant.
	MaxReminders = 5
)

// Reason explains why a reminder was not sent.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNotPending     Reason = "not_pending"
	ReasonLimitReached   Reason = "limit_reached"
	ReasonCooldown       Reason = "cooldown"
	ReasonNotParticipant Reason = "not_participant"
)

// Decision is the outcome of evaluating one participant.
type Decision struct {
	Allowed bool
	Reason  Reason
	// RetryAt is set for cooldown refusals.
	RetryAt time.Time
}

// Evaluate applies the policy to p at now. The lifetime cap is checked
// before the cooldown so an exhausted participant always reports limit_reached.
func Evaluate(p *models.Participant, now time.Time) Decision {
	if p.Status != models.ParticipantStatusPending {
		return Decision{Reason: ReasonNotPending}
	}
	if p.TotalReminderCount >= MaxReminders {
		return Decision{Reason: ReasonLimitReached}
	}
	if p.LastReminderSentAt != 0 {
		next := time.Unix(p.LastReminderSentAt, 0).Add(Cooldown)
		if now.Before(next) {
			return Decision{Reason: ReasonCooldown, RetryAt: next}
		}
	}
	return Decision{Allowed: true}
}

// CanRemind reports whether a reminder may be sent to p at now.
func CanRemind(p *models.Participant, now time.Time) bool {
	return Evaluate(p, now).Allowed
}

// Stamp records a sent reminder on p.
func Stamp(p *models.Participant, now time.Time) {
	p.LastReminderSentAt = now.Unix()
	p.TotalReminderCount++
}
