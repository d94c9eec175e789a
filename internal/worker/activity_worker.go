// Package worker drains the usage event stream into the activity log and
// keeps that log bounded.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/events"
	"subtrack/internal/storage"
)

// ActivityStore is the slice of the storage layer the worker needs.
type ActivityStore interface {
	AppendActivity(ctx context.Context, e storage.ActivityEntry) error
	PruneActivity(ctx context.Context, before time.Time) (int64, error)
}

// ActivityWorker appends consumed usage events to the activity log and
// prunes entries older than the retention window.
type ActivityWorker struct {
	store     ActivityStore
	retention time.Duration
}

func NewActivityWorker(store ActivityStore, retention time.Duration) *ActivityWorker {
	return &ActivityWorker{
		store:     store,
		retention: retention,
	}
}

// HandleUsageEvent processes a single usage event from the broker. Check-out
// events are recorded too: an audit trail that drops retractions would
// overcount usage.
func (w *ActivityWorker) HandleUsageEvent(ctx context.Context, msg *events.UsageEvent) error {
	occurredOn, err := core.ParseDate(msg.OccurredOn)
	if err != nil {
		return fmt.Errorf("parse occurred_on %q: %w", msg.OccurredOn, err)
	}

	entry := storage.ActivityEntry{
		UserID:     msg.UserID,
		Kind:       msg.Kind,
		EntityID:   msg.EntityID,
		OccurredOn: occurredOn,
		RecordedAt: msg.Timestamp,
	}
	if err := w.store.AppendActivity(ctx, entry); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	slog.InfoContext(ctx, "activity recorded",
		"user_id", msg.UserID,
		"kind", msg.Kind,
		"entity_id", msg.EntityID,
		"occurred_on", msg.OccurredOn)
	return nil
}

// PruneOnce removes activity entries older than the retention window.
func (w *ActivityWorker) PruneOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-w.retention)
	removed, err := w.store.PruneActivity(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune activity: %w", err)
	}
	if removed > 0 {
		slog.InfoContext(ctx, "activity pruned",
			"removed", removed,
			"cutoff", cutoff.Format(time.RFC3339))
	}
	return nil
}

// RunPruner prunes on the given interval until the context is cancelled.
// A failed prune is logged and retried on the next tick.
func (w *ActivityWorker) RunPruner(ctx context.Context, interval time.Duration) error {
	if err := w.PruneOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "startup prune failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.PruneOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "prune failed", "error", err)
			}
		}
	}
}
