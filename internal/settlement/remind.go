package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/reminder"
)

// ReminderInput selects participants to remind. An empty ParticipantIDs
// targets every pending participant.
type ReminderInput struct {
	SplitID        string
	ParticipantIDs []string
}

// ReminderOutcome reports what happened for one target.
type ReminderOutcome struct {
	UserID      string
	DisplayName string
	Sent        bool
	Reason      reminder.Reason
	Message     string
	RetryAt     time.Time
}

// ReminderResult adds the per-target breakdown to Result.
type ReminderResult struct {
	Result
	Outcomes []ReminderOutcome
}

// SentCount returns how many reminders went out.
func (r *ReminderResult) SentCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Sent {
			n++
		}
	}
	return n
}

// SendReminder applies the reminder policy to each target. Refused targets
// are reported in the breakdown rather than failing the call.
func (e *Engine) SendReminder(ctx context.Context, callerID string, in ReminderInput) (*ReminderResult, error) {
	var outcomes []ReminderOutcome
	res, err := e.mutate(ctx, in.SplitID, func(ctx context.Context, st *splitState) error {
		if err := st.requireCreator(callerID); err != nil {
			return err
		}
		if err := st.requireActive(); err != nil {
			return err
		}

		targets := reminderTargets(st, in.ParticipantIDs)
		outcomes = make([]ReminderOutcome, 0, len(targets))
		for _, id := range targets {
			p := st.participant(id)
			if p == nil {
				outcomes = append(outcomes, ReminderOutcome{UserID: id, Reason: reminder.ReasonNotParticipant})
				continue
			}
			d := reminder.Evaluate(p, st.now)
			if !d.Allowed {
				outcomes = append(outcomes, ReminderOutcome{UserID: id, Reason: d.Reason, RetryAt: d.RetryAt})
				continue
			}
			reminder.Stamp(p, st.now)
			st.touch(p)
			st.notify(p.UserID, models.PaymentReminder{
				Title:          st.split.Title,
				Amount:         p.Amount,
				ReminderNumber: p.TotalReminderCount,
			})
			outcomes = append(outcomes, ReminderOutcome{UserID: id, Sent: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.describeOutcomes(ctx, outcomes)

	result := &ReminderResult{Result: *res, Outcomes: outcomes}
	slog.Info("Reminders processed",
		"split_id", in.SplitID,
		"requested", len(outcomes),
		"sent", result.SentCount(),
	)
	return result, nil
}

// reminderTargets returns the deduplicated target list in request order.
func reminderTargets(st *splitState, requested []string) []string {
	if len(requested) == 0 {
		var ids []string
		for _, p := range st.participants {
			if p.Status == models.ParticipantStatusPending {
				ids = append(ids, p.UserID)
			}
		}
		return ids
	}

	ids := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// describeOutcomes fills display names and messages. Directory failures
// only degrade the messages to raw user IDs.
func (e *Engine) describeOutcomes(ctx context.Context, outcomes []ReminderOutcome) {
	if len(outcomes) == 0 {
		return
	}

	var users map[string]*models.User
	if e.users != nil {
		ids := make([]string, len(outcomes))
		for i, o := range outcomes {
			ids[i] = o.UserID
		}
		var err error
		users, err = e.users.GetUsersByIDs(ctx, ids)
		if err != nil {
			slog.Warn("Failed to resolve reminder targets", "error", err)
		}
	}

	for i := range outcomes {
		o := &outcomes[i]
		o.DisplayName = o.UserID
		if u, ok := users[o.UserID]; ok && u != nil {
			o.DisplayName = u.Name()
		}
		o.Message = reminderMessage(o)
	}
}

func reminderMessage(o *ReminderOutcome) string {
	if o.Sent {
		return fmt.Sprintf("Reminder sent to %s", o.DisplayName)
	}
	switch o.Reason {
	case reminder.ReasonCooldown:
		return fmt.Sprintf("%s was reminded recently; try again after %s",
			o.DisplayName, o.RetryAt.UTC().Format(time.RFC1123))
	case reminder.ReasonLimitReached:
		return fmt.Sprintf("%s has already received the maximum of %d reminders",
			o.DisplayName, reminder.MaxReminders)
	case reminder.ReasonNotPending:
		return fmt.Sprintf("%s has no pending payment", o.DisplayName)
	case reminder.ReasonNotParticipant:
		return fmt.Sprintf("%s is not part of this split", o.DisplayName)
	default:
		return fmt.Sprintf("Reminder to %s was not sent", o.DisplayName)
	}
}
