package services

import (
	"context"
	"errors"
	"testing"

	"subtrack/internal/core"
	"subtrack/internal/events"
	"subtrack/internal/storage"
)

func newEReader(userID string) core.Investment {
	return core.Investment{
		UserID:        userID,
		Name:          "이북 리더기",
		EmojiCode:     "ereader",
		Category:      "E_READER",
		PurchasePrice: core.Won(250000),
		PurchaseDate:  core.NewDate(2025, 1, 15),
	}
}

func TestInvestmentServiceAddUsage(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewInvestmentService(storage.NewMemoryStore(), pub)

	id, err := svc.Create(ctx, newEReader("u1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	card, err := svc.AddUsage(ctx, "u1", core.InvestmentUsage{
		InvestmentID:  id,
		UsedAt:        core.NewDate(2025, 2, 1),
		ItemName:      "전자책",
		OriginalPrice: core.Won(15000),
		ActualPrice:   core.Won(9000),
	})
	if err != nil {
		t.Fatalf("add usage: %v", err)
	}
	if card.Stats.UsageCount != 1 || card.Stats.TotalSavings.Amount != 6000 {
		t.Fatalf("unexpected stats: %+v", card.Stats)
	}
	if card.Stats.NetProfit.Amount != 6000-250000 {
		t.Fatalf("net profit = %d", card.Stats.NetProfit.Amount)
	}

	if len(pub.published) != 1 || pub.published[0].Kind != events.KindInvestmentUsage {
		t.Fatalf("expected one investment usage event, got %+v", pub.published)
	}
}

func TestInvestmentServiceAddUsageChecksOwnership(t *testing.T) {
	ctx := context.Background()
	svc := NewInvestmentService(storage.NewMemoryStore(), nil)
	id, _ := svc.Create(ctx, newEReader("u1"))

	_, err := svc.AddUsage(ctx, "u2", core.InvestmentUsage{
		InvestmentID:  id,
		UsedAt:        core.NewDate(2025, 2, 1),
		ItemName:      "전자책",
		OriginalPrice: core.Won(15000),
		ActualPrice:   core.Won(9000),
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvestmentServiceDeleteUsageChecksOwnership(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewInvestmentService(store, nil)
	id, _ := svc.Create(ctx, newEReader("u1"))

	uID, err := store.AddInvestmentUsage(ctx, core.InvestmentUsage{
		InvestmentID:  id,
		UsedAt:        core.NewDate(2025, 2, 1),
		ItemName:      "전자책",
		OriginalPrice: core.Won(15000),
		ActualPrice:   core.Won(9000),
	})
	if err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	if err := svc.DeleteUsage(ctx, uID, "u2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if err := svc.DeleteUsage(ctx, uID, "u1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestInvestmentServiceDetailLabels(t *testing.T) {
	ctx := context.Background()
	svc := NewInvestmentService(storage.NewMemoryStore(), nil)
	id, _ := svc.Create(ctx, newEReader("u1"))

	detail, err := svc.Detail(ctx, id, "u1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.CategoryName != "이북 리더기" {
		t.Fatalf("category name = %q", detail.CategoryName)
	}
	if detail.Emoji == "" {
		t.Fatalf("emoji missing")
	}
	if len(detail.Usages) != 0 {
		t.Fatalf("expected no usages, got %d", len(detail.Usages))
	}
}
