package services

import (
	"context"
	"errors"
	"testing"

	"subtrack/internal/core"
	"subtrack/internal/events"
	"subtrack/internal/storage"
)

type recordingPublisher struct {
	published []*events.UsageEvent
	err       error
}

func (p *recordingPublisher) PublishUsageEvent(_ context.Context, msg *events.UsageEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func newGymSubscription(userID string) core.Subscription {
	return core.Subscription{
		UserID:        userID,
		Name:          "헬스장",
		EmojiCode:     "gym",
		PeriodLabel:   "월간",
		MonthlyAmount: core.Won(60000),
		StartDate:     core.NewDate(2025, 1, 1),
	}
}

func TestSubscriptionServiceCreateRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(storage.NewMemoryStore(), nil)

	if _, err := svc.Create(ctx, newGymSubscription("u1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, newGymSubscription("u1")); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	// Same name is fine for a different user.
	if _, err := svc.Create(ctx, newGymSubscription("u2")); err != nil {
		t.Fatalf("create for other user: %v", err)
	}
}

func TestSubscriptionServiceCreateValidates(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(storage.NewMemoryStore(), nil)

	sub := newGymSubscription("u1")
	sub.Name = "   "
	if _, err := svc.Create(ctx, sub); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	sub = newGymSubscription("u1")
	sub.EndDate = core.NewDate(2024, 12, 31)
	if _, err := svc.Create(ctx, sub); !errors.Is(err, core.ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
}

func TestSubscriptionServiceUpdateAllowsOwnName(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(storage.NewMemoryStore(), nil)

	id, _ := svc.Create(ctx, newGymSubscription("u1"))
	sub := newGymSubscription("u1")
	sub.ID = id
	sub.MonthlyAmount = core.Won(70000)
	if err := svc.Update(ctx, sub); err != nil {
		t.Fatalf("update keeping own name: %v", err)
	}

	got, err := svc.Get(ctx, id, "u1", core.NewDate(2025, 4, 1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MonthlyAmount.Amount != 70000 {
		t.Fatalf("update not applied: %+v", got.Subscription)
	}
}

func TestSubscriptionServiceToggleCheckInPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewSubscriptionService(storage.NewMemoryStore(), pub)
	id, _ := svc.Create(ctx, newGymSubscription("u1"))
	today := core.NewDate(2025, 4, 10)

	card, err := svc.ToggleCheckIn(ctx, id, "u1", today)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !card.Stats.CheckedInToday || card.Stats.MonthlyUsageCount != 1 {
		t.Fatalf("unexpected card after toggle on: %+v", card.Stats)
	}

	card, err = svc.ToggleCheckIn(ctx, id, "u1", today)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if card.Stats.CheckedInToday || card.Stats.MonthlyUsageCount != 0 {
		t.Fatalf("unexpected card after toggle off: %+v", card.Stats)
	}

	if len(pub.published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.published))
	}
	if pub.published[0].Kind != events.KindCheckIn || pub.published[1].Kind != events.KindCheckOut {
		t.Fatalf("unexpected event kinds: %s, %s", pub.published[0].Kind, pub.published[1].Kind)
	}
}

func TestSubscriptionServiceToggleSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewSubscriptionService(storage.NewMemoryStore(), pub)
	id, _ := svc.Create(ctx, newGymSubscription("u1"))

	card, err := svc.ToggleCheckIn(ctx, id, "u1", core.NewDate(2025, 4, 10))
	if err != nil {
		t.Fatalf("toggle must not fail on publish error: %v", err)
	}
	if !card.Stats.CheckedInToday {
		t.Fatalf("check-in lost: %+v", card.Stats)
	}
}

func TestSubscriptionServiceCheckInRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(storage.NewMemoryStore(), nil)
	id, _ := svc.Create(ctx, newGymSubscription("u1"))
	day := core.NewDate(2025, 4, 10)

	if err := svc.CheckIn(ctx, id, "u1", day); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if err := svc.CheckIn(ctx, id, "u1", day); !errors.Is(err, core.ErrDuplicateCheckIn) {
		t.Fatalf("expected ErrDuplicateCheckIn, got %v", err)
	}
}

func TestSubscriptionServiceToggleScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(storage.NewMemoryStore(), nil)
	id, _ := svc.Create(ctx, newGymSubscription("u1"))

	if _, err := svc.ToggleCheckIn(ctx, id, "u2", core.NewDate(2025, 4, 10)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
}

func TestSubscriptionServiceDetail(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(storage.NewMemoryStore(), nil)
	id, _ := svc.Create(ctx, newGymSubscription("u1"))
	today := core.NewDate(2025, 4, 10)

	for d := 1; d <= 5; d++ {
		if err := svc.CheckIn(ctx, id, "u1", core.NewDate(2025, 4, d)); err != nil {
			t.Fatalf("check-in day %d: %v", d, err)
		}
	}

	detail, err := svc.Detail(ctx, id, "u1", today)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Stats.TotalUsageCount != 5 || detail.Stats.MonthlyUsageCount != 5 {
		t.Fatalf("unexpected stats: %+v", detail.Stats)
	}
	// 60000 won over 5 uses.
	if detail.Stats.CostPerUse.Amount != 12000 {
		t.Fatalf("cost per use = %d, want 12000", detail.Stats.CostPerUse.Amount)
	}
	if len(detail.RecentLogs) != 5 {
		t.Fatalf("expected 5 recent logs, got %d", len(detail.RecentLogs))
	}
	if detail.Progress.MonthlyTarget != 20 {
		t.Fatalf("monthly target = %d, want 20", detail.Progress.MonthlyTarget)
	}
}

func TestSubscriptionServiceListExcludesExpired(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(storage.NewMemoryStore(), nil)

	svc.Create(ctx, newGymSubscription("u1"))
	ended := newGymSubscription("u1")
	ended.Name = "끝난 구독"
	ended.EndDate = core.NewDate(2025, 2, 28)
	svc.Create(ctx, ended)

	today := core.NewDate(2025, 4, 1)
	cards, err := svc.List(ctx, "u1", today)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 1 || cards[0].Name != "헬스장" {
		t.Fatalf("expected 1 current card, got %v", cards)
	}

	all, err := svc.ListAll(ctx, "u1", today)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 cards in management view, got %d", len(all))
	}
}
