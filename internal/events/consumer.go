package events

import (
	"context"
	"log/slog"
	"time"
)

// RunConsumer keeps a consumer alive across broker restarts. It redials with
// exponential backoff on connection errors and returns once ctx is done.
func RunConsumer(ctx context.Context, url, exchangeName, queueName string, handler func(*UsageEvent) error) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		client, err := NewClient(url, exchangeName, queueName)
		if err != nil {
			wait := exponentialBackoff(attempt)
			attempt++
			slog.ErrorContext(ctx, "AMQP connect failed, retrying",
				"error", err, "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		attempt = 0

		err = client.ConsumeUsageEvents(ctx, handler)
		client.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isConnectionError(err) {
			slog.WarnContext(ctx, "AMQP connection lost, reconnecting", "error", err)
			continue
		}
		if err != nil {
			return err
		}
	}
}
