// Package notify delivers notifications from the outbox. The settlement
// engine only enqueues; delivery, retries and give-up happen here.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitsettle/internal/metrics"
	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

// Outbox is the durable queue the dispatcher drains.
type Outbox interface {
	PendingNotifications(ctx context.Context, limit int) ([]storage.OutboxEntry, error)
	MarkDelivered(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, cause string, maxAttempts int) error
}

// Notifier delivers one notification to its target user.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n models.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// Config controls polling and retry behavior.
type Config struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Interval:    5 * time.Second,
		BatchSize:   50,
		MaxAttempts: 5,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
}

// Result summarizes one dispatch cycle.
type Result struct {
	Processed int
	Delivered int
	Failed    int
}

// Dispatcher polls the outbox and hands notifications to a Notifier.
type Dispatcher struct {
	outbox   Outbox
	notifier Notifier
	metrics  *metrics.Metrics
	cfg      Config
}

// NewDispatcher creates a Dispatcher. m may be nil.
func NewDispatcher(outbox Outbox, notifier Notifier, m *metrics.Metrics, cfg Config) *Dispatcher {
	cfg.normalize()
	return &Dispatcher{
		outbox:   outbox,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
	}
}

// Run dispatches every Interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	slog.Info("Notification dispatcher started", "interval", d.cfg.Interval, "batch_size", d.cfg.BatchSize)
	for {
		if _, err := d.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Notification dispatch failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("Notification dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce processes a single batch of pending notifications.
func (d *Dispatcher) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	entries, err := d.outbox.PendingNotifications(ctx, d.cfg.BatchSize)
	if err != nil {
		return res, fmt.Errorf("failed to load pending notifications: %w", err)
	}
	if d.metrics != nil {
		d.metrics.OutboxBatch(len(entries))
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Processed++

		n := entry.Notification
		kind := string(n.Kind())
		if err := d.notifier.Notify(ctx, n); err != nil {
			res.Failed++
			if d.metrics != nil {
				d.metrics.NotificationFailed(kind)
			}
			attempt := entry.Attempts + 1
			log := slog.Warn
			if attempt >= d.cfg.MaxAttempts {
				log = slog.Error
			}
			log("Notification delivery failed",
				"notification_id", n.ID,
				"kind", kind,
				"target_user_id", n.TargetUserID,
				"attempt", attempt,
				"max_attempts", d.cfg.MaxAttempts,
				"error", err,
			)
			if err := d.outbox.MarkFailed(ctx, n.ID, err.Error(), d.cfg.MaxAttempts); err != nil {
				return res, err
			}
			continue
		}

		if err := d.outbox.MarkDelivered(ctx, n.ID); err != nil {
			return res, err
		}
		res.Delivered++
		if d.metrics != nil {
			d.metrics.NotificationDelivered(kind)
		}
	}
	return res, nil
}
