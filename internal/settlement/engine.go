// Package settlement implements the split-bill settlement engine: the
// operations that move participants through their payment states and keep
// the split's aggregates, lifecycle and notifications consistent.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitsettle/internal/calculator"
	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

const (
	// GracePeriod is how long after ExpiresAt a payment is still accepted.
	GracePeriod = 5 * time.Minute

	MinParticipants = 2
	MaxParticipants = 50

	maxTitleLength = 120
	maxNoteLength  = 500
)

// UserDirectory resolves user IDs to display identities and stores them.
// UpsertUser joins the transaction carried by ctx, if any.
type UserDirectory interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
}

// PaymentRecorder creates a pending payment record and returns its ID.
// It is called inside the engine's transaction; ctx carries that transaction.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, payment *models.Payment) (string, error)
}

// Engine executes settlement operations against a store. It holds no
// per-split state; every operation is a single store transaction.
type Engine struct {
	store    storage.Store
	payments PaymentRecorder
	users    UserDirectory
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine.
func New(store storage.Store, payments PaymentRecorder, users UserDirectory, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		payments: payments,
		users:    users,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the state of a split after an operation, together with the
// notifications the operation enqueued.
type Result struct {
	Split         *models.SplitBill
	Participants  []*models.Participant
	Notifications []models.Notification
}

// Participant returns the participant with the given user ID, or nil.
func (r *Result) Participant(userID string) *models.Participant {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// splitState is the working copy of one split inside a transaction.
type splitState struct {
	split         *models.SplitBill
	participants  []*models.Participant
	touched       map[string]bool
	splitChanged  bool
	notifications []models.Notification
	now           time.Time
}

func (st *splitState) participant(userID string) *models.Participant {
	for _, p := range st.participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (st *splitState) touch(p *models.Participant) {
	st.touched[p.UserID] = true
}

func (st *splitState) notify(target string, payload models.NotificationPayload) {
	st.notifications = append(st.notifications, models.Notification{
		TargetUserID: target,
		SplitBillID:  st.split.ID,
		Payload:      payload,
		CreatedAt:    st.now.Unix(),
	})
}

func (st *splitState) notifyParticipants(filter func(*models.Participant) bool, payload models.NotificationPayload) {
	for _, p := range st.participants {
		if filter == nil || filter(p) {
			st.notify(p.UserID, payload)
		}
	}
}

func (st *splitState) result() *Result {
	return &Result{
		Split:         st.split,
		Participants:  st.participants,
		Notifications: st.notifications,
	}
}

func (st *splitState) requireCreator(callerID string) error {
	if callerID == "" || callerID != st.split.CreatorID {
		return fmt.Errorf("%w: only the creator can do this", ErrNotAuthorized)
	}
	return nil
}

func (st *splitState) requireParticipant(callerID string) (*models.Participant, error) {
	p := st.participant(callerID)
	if callerID == "" || p == nil {
		return nil, fmt.Errorf("%w: caller is not a participant", ErrNotAuthorized)
	}
	return p, nil
}

func (st *splitState) requireActive() error {
	if st.split.Status != models.SplitStatusActive {
		return fmt.Errorf("%w: split is %s", ErrInvalidTransition, st.split.Status)
	}
	return nil
}

func (st *splitState) aggregate() (calculator.Aggregate, error) {
	return calculator.Recompute(st.participants)
}

func loadSplit(ctx context.Context, tx storage.Tx, splitID string, now time.Time) (*splitState, error) {
	if splitID == "" {
		return nil, fmt.Errorf("%w: split id is required", ErrInvalidInput)
	}
	split, err := tx.GetSplit(ctx, splitID)
	if err != nil {
		return nil, translate(err)
	}
	participants, err := tx.ListParticipants(ctx, splitID)
	if err != nil {
		return nil, translate(err)
	}
	return &splitState{
		split:        split,
		participants: participants,
		touched:      make(map[string]bool),
		now:          now,
	}, nil
}

// mutate loads the split, applies fn and persists the outcome in one
// transaction. Nothing is written when fn fails or changes nothing.
func (e *Engine) mutate(ctx context.Context, splitID string, fn func(ctx context.Context, st *splitState) error) (*Result, error) {
	var result *Result
	err := e.store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		st, err := loadSplit(ctx, tx, splitID, e.now())
		if err != nil {
			return err
		}
		if err := fn(ctx, st); err != nil {
			return err
		}
		if err := e.commit(ctx, tx, st); err != nil {
			return err
		}
		result = st.result()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// commit writes touched participants, recomputes the aggregate from the
// full participant set, applies auto-completion and enqueues notifications.
func (e *Engine) commit(ctx context.Context, tx storage.Tx, st *splitState) error {
	if len(st.touched) == 0 && !st.splitChanged {
		return nil
	}

	for _, p := range st.participants {
		if !st.touched[p.UserID] {
			continue
		}
		if err := tx.UpdateParticipant(ctx, p); err != nil {
			return translate(err)
		}
	}

	agg, err := st.aggregate()
	if err != nil {
		return err
	}
	agg.Apply(st.split)

	if st.split.Status == models.SplitStatusActive && agg.Complete() {
		st.split.Status = models.SplitStatusCompleted
		st.split.CompletedAt = st.now.Unix()
		completed := models.SplitCompleted{Title: st.split.Title, TotalCollected: agg.TotalCollected}
		st.notify(st.split.CreatorID, completed)
		st.notifyParticipants(nil, completed)
		slog.Info("Split completed",
			"split_id", st.split.ID,
			"paid_count", agg.PaidCount,
			"total_collected", agg.TotalCollected.String(),
		)
	}

	st.split.UpdatedAt = st.now.Unix()
	if err := tx.UpdateSplit(ctx, st.split); err != nil {
		return translate(err)
	}

	if len(st.notifications) > 0 {
		if err := tx.EnqueueNotifications(ctx, st.notifications); err != nil {
			return err
		}
	}
	return nil
}
