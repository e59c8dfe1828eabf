package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/money"
	"github.com/mmynk/splitsettle/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testSplit(id string) (*models.SplitBill, []*models.Participant) {
	split := &models.SplitBill{
		ID:                     id,
		CreatorID:              "creator",
		Title:                  "Dinner",
		TotalAmount:            money.New(100),
		SplitMode:              models.SplitModeEqual,
		Status:                 models.SplitStatusActive,
		TotalParticipants:      2,
		ActiveParticipantCount: 2,
		CreatedAt:              1700000000,
		UpdatedAt:              1700000000,
	}
	participants := []*models.Participant{
		{SplitBillID: id, UserID: "bob", Amount: money.New(50), Status: models.ParticipantStatusPending, CreatedAt: 1700000000},
		{SplitBillID: id, UserID: "alice", Amount: money.New(50), Status: models.ParticipantStatusPending, CreatedAt: 1700000000},
	}
	return split, participants
}

func insertSplit(t *testing.T, store *SQLiteStore, id string) {
	t.Helper()
	split, participants := testSplit(id)
	err := store.Update(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		if err := tx.InsertSplit(ctx, split); err != nil {
			return err
		}
		return tx.InsertParticipants(ctx, participants)
	})
	require.NoError(t, err)
}

func TestSQLiteStore_Splits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertSplit(t, store, "split-1")

	t.Run("GetSplit round trips every field", func(t *testing.T) {
		err := store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
			got, err := tx.GetSplit(ctx, "split-1")
			require.NoError(t, err)
			want, _ := testSplit("split-1")
			assert.Equal(t, want, got)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("GetSplit missing returns ErrNotFound", func(t *testing.T) {
		err := store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
			_, err := tx.GetSplit(ctx, "nope")
			return err
		})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("ListParticipants is ordered by user ID", func(t *testing.T) {
		err := store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
			ps, err := tx.ListParticipants(ctx, "split-1")
			require.NoError(t, err)
			require.Len(t, ps, 2)
			assert.Equal(t, "alice", ps[0].UserID)
			assert.Equal(t, "bob", ps[1].UserID)
			assert.Equal(t, money.New(50), ps[0].Amount)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("UpdateSplit and UpdateParticipant persist", func(t *testing.T) {
		err := store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
			split, err := tx.GetSplit(ctx, "split-1")
			if err != nil {
				return err
			}
			split.PaidCount = 1
			split.TotalCollected = money.New(50)
			if err := tx.UpdateSplit(ctx, split); err != nil {
				return err
			}
			return tx.UpdateParticipant(ctx, &models.Participant{
				SplitBillID: "split-1",
				UserID:      "alice",
				Amount:      money.New(50),
				Status:      models.ParticipantStatusPaid,
				PaymentID:   "pay-1",
				TxHash:      "0xabc",
				PaidAt:      1700000100,
			})
		})
		require.NoError(t, err)

		err = store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
			split, err := tx.GetSplit(ctx, "split-1")
			require.NoError(t, err)
			assert.Equal(t, 1, split.PaidCount)
			assert.Equal(t, "50", split.TotalCollected.String())

			ps, err := tx.ListParticipants(ctx, "split-1")
			require.NoError(t, err)
			assert.Equal(t, models.ParticipantStatusPaid, ps[0].Status)
			assert.Equal(t, "0xabc", ps[0].TxHash)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("UpdateParticipant missing returns ErrNotFound", func(t *testing.T) {
		err := store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
			return tx.UpdateParticipant(ctx, &models.Participant{SplitBillID: "split-1", UserID: "zed"})
		})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func TestSQLiteStore_UpdateRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		split, participants := testSplit("split-rb")
		if err := tx.InsertSplit(ctx, split); err != nil {
			return err
		}
		if err := tx.InsertParticipants(ctx, participants); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.GetSplit(ctx, "split-rb")
		return err
	})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSQLiteStore_ViewReadsOneSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertSplit(t, store, "split-1")

	err := store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		before, err := tx.GetSplit(ctx, "split-1")
		require.NoError(t, err)

		// A write committed while the view is open stays invisible to it.
		err = store.Update(context.Background(), func(ctx context.Context, wtx storage.Tx) error {
			split, err := wtx.GetSplit(ctx, "split-1")
			if err != nil {
				return err
			}
			split.Status = models.SplitStatusCancelled
			return wtx.UpdateSplit(ctx, split)
		})
		require.NoError(t, err)

		after, err := tx.GetSplit(ctx, "split-1")
		require.NoError(t, err)
		assert.Equal(t, before.Status, after.Status)
		return nil
	})
	require.NoError(t, err)

	err = store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		split, err := tx.GetSplit(ctx, "split-1")
		require.NoError(t, err)
		assert.Equal(t, models.SplitStatusCancelled, split.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestSQLiteStore_NestedUpdateRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		return store.Update(ctx, func(ctx context.Context, tx storage.Tx) error { return nil })
	})
	assert.Error(t, err)
}

func TestSQLiteStore_ListSplitsByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertSplit(t, store, "split-a")
	insertSplit(t, store, "split-b")

	tests := []struct {
		user string
		want int
	}{
		{"creator", 2},
		{"alice", 2},
		{"stranger", 0},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			err := store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
				splits, err := tx.ListSplitsByUser(ctx, tt.user)
				require.NoError(t, err)
				assert.Len(t, splits, tt.want)
				if tt.want == 2 {
					// Same created_at, so insertion order breaks the tie.
					assert.Equal(t, "split-b", splits[0].ID)
				}
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestSQLiteStore_RecordPaymentIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertSplit(t, store, "split-1")

	payment := func() *models.Payment {
		return &models.Payment{
			SplitBillID: "split-1",
			PayerID:     "alice",
			PayeeID:     "creator",
			Amount:      money.New(50),
			TxHash:      "0xabc",
		}
	}

	first, err := store.RecordPayment(ctx, payment())
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := store.RecordPayment(ctx, payment())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var (
		count   int
		payerID string
		amount  string
		status  string
	)
	err = store.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(payer_id), MAX(amount), MAX(status) FROM payments WHERE split_bill_id = ?`, "split-1",
	).Scan(&count, &payerID, &amount, &status)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "alice", payerID)
	assert.Equal(t, "50", amount)
	assert.Equal(t, string(models.PaymentStatusPending), status)
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "alice", DisplayName: "Alice"}))
	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "bob"}))
	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "alice", DisplayName: "Alice L."}))

	users, err := store.GetUsersByIDs(ctx, []string{"alice", "bob", "nobody"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Alice L.", users["alice"].DisplayName)
	assert.Equal(t, "bob", users["bob"].Name())
	assert.Nil(t, users["nobody"])
}

func TestSQLiteStore_Outbox(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertSplit(t, store, "split-1")

	notifications := []models.Notification{
		{TargetUserID: "alice", SplitBillID: "split-1", Payload: models.SplitRequested{Title: "Dinner", CreatorID: "creator", Amount: money.New(50)}},
		{TargetUserID: "bob", SplitBillID: "split-1", Payload: models.SplitCancelled{Title: "Dinner"}},
	}
	err := store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.EnqueueNotifications(ctx, notifications)
	})
	require.NoError(t, err)
	require.NotEmpty(t, notifications[0].ID)

	pending, err := store.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.KindSplitRequested, pending[0].Notification.Kind())
	amount, ok := pending[0].Notification.Amount()
	assert.True(t, ok)
	assert.Equal(t, "50", amount.String())

	require.NoError(t, store.MarkDelivered(ctx, pending[0].Notification.ID))

	// Two attempts allowed: the first failure keeps the row pending.
	id := pending[1].Notification.ID
	require.NoError(t, store.MarkFailed(ctx, id, "smtp down", 2))
	pending, err = store.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "smtp down", pending[0].LastError)

	require.NoError(t, store.MarkFailed(ctx, id, "smtp down", 2))
	pending, err = store.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.True(t, errors.Is(store.MarkDelivered(ctx, "missing"), storage.ErrNotFound))
}

func TestSQLiteStore_OutboxSkipsUndecodableRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertSplit(t, store, "split-1")

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO notification_outbox (id, target_user_id, split_bill_id, kind, payload, status, created_at)
		 VALUES ('corrupt', 'alice', 'split-1', 'split_completed', '{not json', 'pending', 1),
		        ('unknown', 'alice', 'split-1', 'split_archived', '{}', 'pending', 2)`)
	require.NoError(t, err)

	err = store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.EnqueueNotifications(ctx, []models.Notification{
			{TargetUserID: "bob", SplitBillID: "split-1", Payload: models.PaymentReminder{Title: "Dinner", Amount: money.New(10), ReminderNumber: 1}},
		})
	})
	require.NoError(t, err)

	pending, err := store.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].Notification.TargetUserID)

	for _, id := range []string{"corrupt", "unknown"} {
		var (
			status    string
			lastError string
		)
		err := store.db.QueryRowContext(ctx,
			`SELECT status, last_error FROM notification_outbox WHERE id = ?`, id,
		).Scan(&status, &lastError)
		require.NoError(t, err)
		assert.Equal(t, outboxStatusFailed, status, id)
		assert.NotEmpty(t, lastError, id)
	}

	// The bad rows stay out of later batches.
	require.NoError(t, store.MarkDelivered(ctx, pending[0].Notification.ID))
	pending, err = store.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
