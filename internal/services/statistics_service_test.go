package services

import (
	"context"
	"testing"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/storage"
)

func TestStatisticsServiceReport(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	subSvc := NewSubscriptionService(store, nil)
	invSvc := NewInvestmentService(store, nil)
	svc := NewStatisticsService(store)
	today := core.NewDate(2025, 4, 15)

	subID, _ := subSvc.Create(ctx, newGymSubscription("u1"))
	for d := 1; d <= 3; d++ {
		subSvc.CheckIn(ctx, subID, "u1", core.NewDate(2025, 4, d))
	}
	// One check-in outside the six-month window must not appear.
	store.InsertCheckIn(ctx, subID, core.NewDate(2024, 9, 1))

	invID, _ := invSvc.Create(ctx, newEReader("u1"))
	invSvc.AddUsage(ctx, "u1", core.InvestmentUsage{
		InvestmentID:  invID,
		UsedAt:        core.NewDate(2025, 3, 5),
		ItemName:      "전자책",
		OriginalPrice: core.Won(15000),
		ActualPrice:   core.Won(9000),
	})

	report, err := svc.Report(ctx, "u1", today)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if len(report.MonthlyUsage) != 6 {
		t.Fatalf("expected 6 usage points, got %d", len(report.MonthlyUsage))
	}
	last := report.MonthlyUsage[5]
	if last.Label != "4월" || last.Count != 3 {
		t.Fatalf("april point = %+v", last)
	}
	for _, p := range report.MonthlyUsage[:5] {
		if p.Label == "3월" {
			continue
		}
		if p.Count != 0 {
			t.Fatalf("expected zero-filled month, got %+v", p)
		}
	}

	if report.Summary.SubscriptionCount != 1 || report.Summary.InvestmentCount != 1 {
		t.Fatalf("summary counts = %+v", report.Summary)
	}
	if report.Summary.TotalMonthlyFee.Amount != 60000 {
		t.Fatalf("monthly fee = %d", report.Summary.TotalMonthlyFee.Amount)
	}
	if report.Summary.TotalUsageCount != 3 {
		t.Fatalf("this month usage = %d", report.Summary.TotalUsageCount)
	}
	// 60000 / 3 uses, half-up.
	if report.Summary.AvgCostPerUse.Amount != 20000 {
		t.Fatalf("avg cost per use = %d", report.Summary.AvgCostPerUse.Amount)
	}

	if len(report.InvestmentSavings) != 6 {
		t.Fatalf("expected 6 savings points, got %d", len(report.InvestmentSavings))
	}
	if report.InvestmentSavings[4].Amount.Amount != 6000 {
		t.Fatalf("march savings = %+v", report.InvestmentSavings[4])
	}
}

func TestStatisticsServiceCalendar(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	subSvc := NewSubscriptionService(store, nil)
	svc := NewStatisticsService(store)
	today := core.NewDate(2025, 1, 15)

	subID, _ := subSvc.Create(ctx, newGymSubscription("u1"))
	// 2024-12-31 sits on the January grid's leading padding.
	subSvc.CheckIn(ctx, subID, "u1", core.NewDate(2024, 12, 31))
	subSvc.CheckIn(ctx, subID, "u1", core.NewDate(2025, 1, 10))

	grid, err := svc.Calendar(ctx, "u1", 2025, time.January, today)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(grid) != 35 {
		t.Fatalf("expected 35 cells for January 2025, got %d", len(grid))
	}

	var inMonth, todayCells int
	for _, cell := range grid {
		if cell.InCurrentMonth {
			inMonth++
		}
		if cell.IsToday {
			todayCells++
		}
		if cell.Date.Equal(core.NewDate(2025, 1, 10)) && !cell.HasUsages() {
			t.Fatalf("check-in missing on Jan 10")
		}
		// Padding days carry no entries even when a log exists there.
		if cell.Date.Equal(core.NewDate(2024, 12, 31)) && cell.HasUsages() {
			t.Fatalf("padding day must not carry entries")
		}
	}
	if inMonth != 31 || todayCells != 1 {
		t.Fatalf("inMonth=%d today=%d", inMonth, todayCells)
	}
}
