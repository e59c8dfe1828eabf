// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitsettle/internal/models"
)

// ErrNotFound is returned when a split or participant does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the transactional boundary used by the settlement engine.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine.
type Store interface {
	// Update runs fn inside a single read-write transaction. The transaction
	// commits when fn returns nil and rolls back otherwise. Concurrent Update
	// calls are serialized by the backend. The context passed to fn carries
	// the transaction so collaborators backed by the same store join it.
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// View runs fn against a read-only view of the store.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the set of operations available inside a transaction.
type Tx interface {
	// InsertSplit persists a new split. The split.ID field must be set.
	InsertSplit(ctx context.Context, split *models.SplitBill) error

	// InsertParticipants persists the participants of a new split.
	InsertParticipants(ctx context.Context, participants []*models.Participant) error

	// GetSplit retrieves a split by its ID.
	// Returns ErrNotFound if the split does not exist.
	GetSplit(ctx context.Context, splitID string) (*models.SplitBill, error)

	// ListParticipants returns every participant of a split ordered by user ID.
	ListParticipants(ctx context.Context, splitID string) ([]*models.Participant, error)

	// ListSplitsByUser returns splits the user created or participates in,
	// newest first.
	ListSplitsByUser(ctx context.Context, userID string) ([]*models.SplitBill, error)

	// UpdateSplit writes the mutable split fields (status, expiry, aggregates).
	// Returns ErrNotFound if the split does not exist.
	UpdateSplit(ctx context.Context, split *models.SplitBill) error

	// UpdateParticipant writes the mutable participant fields.
	// Returns ErrNotFound if the participant does not exist.
	UpdateParticipant(ctx context.Context, participant *models.Participant) error

	// EnqueueNotifications durably stores notifications for later delivery.
	// IDs and CreatedAt are assigned when unset.
	EnqueueNotifications(ctx context.Context, notifications []models.Notification) error
}

// OutboxEntry is a notification waiting in the outbox.
type OutboxEntry struct {
	Notification models.Notification
	Attempts     int
	LastError    string
}
