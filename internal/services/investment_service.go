package services

import (
	"context"
	"fmt"
	"log/slog"

	"subtrack/internal/core"
	"subtrack/internal/events"
	"subtrack/internal/labels"
)

// InvestmentCard is an investment with its derived break-even values.
type InvestmentCard struct {
	core.Investment
	Emoji        string
	CategoryName string
	Stats        core.InvestmentStats
}

// InvestmentDetail extends a card with the usage records behind it.
type InvestmentDetail struct {
	InvestmentCard
	Usages []core.InvestmentUsage
}

type InvestmentService struct {
	store     Store
	publisher Publisher
}

func NewInvestmentService(store Store, publisher Publisher) *InvestmentService {
	return &InvestmentService{store: store, publisher: publisher}
}

func (s *InvestmentService) Create(ctx context.Context, inv core.Investment) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}
	return s.store.CreateInvestment(ctx, inv)
}

func (s *InvestmentService) Update(ctx context.Context, inv core.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	return s.store.UpdateInvestment(ctx, inv)
}

func (s *InvestmentService) Delete(ctx context.Context, id int64, userID string) error {
	return s.store.SoftDeleteInvestment(ctx, id, userID)
}

func (s *InvestmentService) Get(ctx context.Context, id int64, userID string) (InvestmentCard, error) {
	inv, err := s.store.GetInvestment(ctx, id, userID)
	if err != nil {
		return InvestmentCard{}, err
	}
	return s.card(ctx, inv)
}

// Detail returns an investment with all its usage records, newest first.
func (s *InvestmentService) Detail(ctx context.Context, id int64, userID string) (InvestmentDetail, error) {
	card, err := s.Get(ctx, id, userID)
	if err != nil {
		return InvestmentDetail{}, err
	}

	usages, err := s.store.ListInvestmentUsages(ctx, id, 0)
	if err != nil {
		return InvestmentDetail{}, fmt.Errorf("list usages: %w", err)
	}

	return InvestmentDetail{InvestmentCard: card, Usages: usages}, nil
}

func (s *InvestmentService) List(ctx context.Context, userID string) ([]InvestmentCard, error) {
	invs, err := s.store.ListActiveInvestments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	cards := make([]InvestmentCard, 0, len(invs))
	for _, inv := range invs {
		card, err := s.card(ctx, inv)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// AddUsage validates and records one usage of an owned investment and
// returns the refreshed card.
func (s *InvestmentService) AddUsage(ctx context.Context, userID string, u core.InvestmentUsage) (InvestmentCard, error) {
	if err := u.Validate(); err != nil {
		return InvestmentCard{}, err
	}

	inv, err := s.store.GetInvestment(ctx, u.InvestmentID, userID)
	if err != nil {
		return InvestmentCard{}, err
	}

	id, err := s.store.AddInvestmentUsage(ctx, u)
	if err != nil {
		return InvestmentCard{}, fmt.Errorf("add usage: %w", err)
	}
	s.publish(ctx, events.NewUsageEvent(userID, events.KindInvestmentUsage, id, u.UsedAt.String()))

	return s.card(ctx, inv)
}

// DeleteUsage removes a usage record after checking the parent investment
// belongs to the user.
func (s *InvestmentService) DeleteUsage(ctx context.Context, usageID int64, userID string) error {
	u, err := s.store.GetInvestmentUsage(ctx, usageID)
	if err != nil {
		return err
	}
	if _, err := s.store.GetInvestment(ctx, u.InvestmentID, userID); err != nil {
		return err
	}
	return s.store.DeleteInvestmentUsage(ctx, usageID)
}

func (s *InvestmentService) card(ctx context.Context, inv core.Investment) (InvestmentCard, error) {
	usages, err := s.store.ListInvestmentUsages(ctx, inv.ID, 0)
	if err != nil {
		return InvestmentCard{}, fmt.Errorf("list usages: %w", err)
	}
	return InvestmentCard{
		Investment:   inv,
		Emoji:        labels.InvestmentEmoji(inv.EmojiCode),
		CategoryName: labels.CategoryName(inv.Category),
		Stats:        core.ComputeInvestmentStats(inv, usages),
	}, nil
}

func (s *InvestmentService) publish(ctx context.Context, msg *events.UsageEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUsageEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish usage event",
			"kind", msg.Kind, "entity_id", msg.EntityID, "error", err)
	}
}
