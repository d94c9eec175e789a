package services

import (
	"context"
	"fmt"
	"log/slog"

	"subtrack/internal/core"
	"subtrack/internal/events"
	"subtrack/internal/labels"
)

// SubscriptionCard is a subscription with its derived display values.
type SubscriptionCard struct {
	core.Subscription
	Emoji string
	Stats core.SubscriptionStats
}

// SubscriptionDetail extends a card with lifetime projection and recent
// check-ins for the detail page.
type SubscriptionDetail struct {
	SubscriptionCard
	Progress   core.LifetimeProgress
	RecentLogs []core.UsageLog
}

const recentLogLimit = 10

type SubscriptionService struct {
	store     Store
	publisher Publisher
}

func NewSubscriptionService(store Store, publisher Publisher) *SubscriptionService {
	return &SubscriptionService{store: store, publisher: publisher}
}

// Create validates and persists a new subscription. Names are unique per
// user among active subscriptions.
func (s *SubscriptionService) Create(ctx context.Context, sub core.Subscription) (int64, error) {
	if err := sub.Validate(); err != nil {
		return 0, err
	}

	exists, err := s.store.SubscriptionNameExists(ctx, sub.UserID, sub.Name, 0)
	if err != nil {
		return 0, fmt.Errorf("check name: %w", err)
	}
	if exists {
		return 0, core.ErrDuplicateName
	}

	return s.store.CreateSubscription(ctx, sub)
}

func (s *SubscriptionService) Update(ctx context.Context, sub core.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	exists, err := s.store.SubscriptionNameExists(ctx, sub.UserID, sub.Name, sub.ID)
	if err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if exists {
		return core.ErrDuplicateName
	}

	return s.store.UpdateSubscription(ctx, sub)
}

func (s *SubscriptionService) Delete(ctx context.Context, id int64, userID string) error {
	return s.store.SoftDeleteSubscription(ctx, id, userID)
}

// Get returns one subscription with stats for the month containing today.
func (s *SubscriptionService) Get(ctx context.Context, id int64, userID string, today core.Date) (SubscriptionCard, error) {
	sub, err := s.store.GetSubscription(ctx, id, userID)
	if err != nil {
		return SubscriptionCard{}, err
	}
	return s.card(ctx, sub, today)
}

// Detail returns a subscription with stats, lifetime projection and its
// most recent check-ins.
func (s *SubscriptionService) Detail(ctx context.Context, id int64, userID string, today core.Date) (SubscriptionDetail, error) {
	card, err := s.Get(ctx, id, userID, today)
	if err != nil {
		return SubscriptionDetail{}, err
	}

	recent, err := s.store.ListSubscriptionUsageLogs(ctx, id, recentLogLimit)
	if err != nil {
		return SubscriptionDetail{}, fmt.Errorf("list recent logs: %w", err)
	}

	return SubscriptionDetail{
		SubscriptionCard: card,
		Progress:         core.ProjectLifetime(card.Subscription, card.Stats.TotalUsageCount, today),
		RecentLogs:       recent,
	}, nil
}

// List returns cards for every subscription current as of today.
func (s *SubscriptionService) List(ctx context.Context, userID string, today core.Date) ([]SubscriptionCard, error) {
	subs, err := s.store.ListCurrentSubscriptions(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	cards := make([]SubscriptionCard, 0, len(subs))
	for _, sub := range subs {
		card, err := s.card(ctx, sub, today)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ListAll includes subscriptions past their end date (management view).
func (s *SubscriptionService) ListAll(ctx context.Context, userID string, today core.Date) ([]SubscriptionCard, error) {
	subs, err := s.store.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	cards := make([]SubscriptionCard, 0, len(subs))
	for _, sub := range subs {
		card, err := s.card(ctx, sub, today)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ToggleCheckIn flips today's check-in for the subscription and returns the
// refreshed card. A usage event is published on a best-effort basis.
func (s *SubscriptionService) ToggleCheckIn(ctx context.Context, id int64, userID string, today core.Date) (SubscriptionCard, error) {
	sub, err := s.store.GetSubscription(ctx, id, userID)
	if err != nil {
		return SubscriptionCard{}, err
	}

	checkedIn, err := s.store.ToggleCheckIn(ctx, id, today)
	if err != nil {
		return SubscriptionCard{}, fmt.Errorf("toggle check-in: %w", err)
	}

	kind := events.KindCheckOut
	if checkedIn {
		kind = events.KindCheckIn
	}
	s.publish(ctx, events.NewUsageEvent(userID, kind, id, today.String()))

	return s.card(ctx, sub, today)
}

// CheckIn records a check-in for an explicit date without toggling. A
// duplicate date yields core.ErrDuplicateCheckIn.
func (s *SubscriptionService) CheckIn(ctx context.Context, id int64, userID string, date core.Date) error {
	if _, err := s.store.GetSubscription(ctx, id, userID); err != nil {
		return err
	}
	if _, err := s.store.InsertCheckIn(ctx, id, date); err != nil {
		return err
	}
	s.publish(ctx, events.NewUsageEvent(userID, events.KindCheckIn, id, date.String()))
	return nil
}

func (s *SubscriptionService) card(ctx context.Context, sub core.Subscription, today core.Date) (SubscriptionCard, error) {
	logs, err := s.store.ListSubscriptionUsageLogs(ctx, sub.ID, 0)
	if err != nil {
		return SubscriptionCard{}, fmt.Errorf("list usage logs: %w", err)
	}
	return SubscriptionCard{
		Subscription: sub,
		Emoji:        labels.Emoji(sub.EmojiCode),
		Stats:        core.ComputeSubscriptionStats(sub, logs, today),
	}, nil
}

func (s *SubscriptionService) publish(ctx context.Context, msg *events.UsageEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUsageEvent(ctx, msg); err != nil {
		// The local write already succeeded, so the request goes on.
		slog.ErrorContext(ctx, "Failed to publish usage event",
			"kind", msg.Kind, "entity_id", msg.EntityID, "error", err)
	}
}
