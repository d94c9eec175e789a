package core

import (
	"testing"
	"time"
)

func TestComputeSubscriptionStats(t *testing.T) {
	sub := Subscription{ID: 1, MonthlyAmount: Won(20000), Active: true}
	today := NewDate(2025, time.June, 15)

	logs := []UsageLog{
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 1)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 10)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 15)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.May, 20)}, // previous month
		{SubscriptionID: 2, UsedAt: NewDate(2025, time.June, 3)}, // other subscription
	}

	got := ComputeSubscriptionStats(sub, logs, today)
	if got.MonthlyUsageCount != 3 {
		t.Fatalf("MonthlyUsageCount = %d, want 3", got.MonthlyUsageCount)
	}
	if got.TotalUsageCount != 4 {
		t.Fatalf("TotalUsageCount = %d, want 4", got.TotalUsageCount)
	}
	if got.CostPerUse.Amount != 6667 {
		t.Fatalf("CostPerUse = %d, want 6667", got.CostPerUse.Amount)
	}
	if got.Tier != TierWarning {
		t.Fatalf("Tier = %s, want warning", got.Tier)
	}
	if !got.CheckedInToday {
		t.Fatal("expected CheckedInToday")
	}
}

func TestComputeSubscriptionStatsNoUsage(t *testing.T) {
	sub := Subscription{ID: 7, MonthlyAmount: Won(20000)}
	got := ComputeSubscriptionStats(sub, nil, NewDate(2025, time.June, 15))
	if got.CostPerUse.Amount != 20000 {
		t.Fatalf("CostPerUse = %d, want full monthly amount", got.CostPerUse.Amount)
	}
	if got.Tier != TierWarning {
		t.Fatalf("Tier = %s, want warning", got.Tier)
	}
	if got.CheckedInToday {
		t.Fatal("unexpected CheckedInToday")
	}
}

func TestComputeInvestmentStats(t *testing.T) {
	inv := Investment{ID: 3, PurchasePrice: Won(189000)}
	usages := []InvestmentUsage{
		{InvestmentID: 3, OriginalPrice: Won(150000), ActualPrice: Won(0)},
		{InvestmentID: 3, OriginalPrice: Won(120000), ActualPrice: Won(20000)},
		{InvestmentID: 99, OriginalPrice: Won(50000), ActualPrice: Won(0)}, // other investment
	}

	got := ComputeInvestmentStats(inv, usages)
	if got.UsageCount != 2 {
		t.Fatalf("UsageCount = %d, want 2", got.UsageCount)
	}
	if got.TotalSavings.Amount != 250000 {
		t.Fatalf("TotalSavings = %d, want 250000", got.TotalSavings.Amount)
	}
	if got.NetProfit.Amount != 61000 {
		t.Fatalf("NetProfit = %d, want 61000", got.NetProfit.Amount)
	}
	if !got.BreakEvenReached {
		t.Fatal("expected break-even reached")
	}
	if got.BreakEvenRemaining.Amount != 0 {
		t.Fatalf("BreakEvenRemaining = %d, want 0", got.BreakEvenRemaining.Amount)
	}
	if got.BreakEvenProgress != 100 {
		t.Fatalf("BreakEvenProgress = %d, want 100", got.BreakEvenProgress)
	}
	if got.AvgSavingsPerUse.Amount != 125000 {
		t.Fatalf("AvgSavingsPerUse = %d, want 125000", got.AvgSavingsPerUse.Amount)
	}
}

func TestBreakEvenProgress(t *testing.T) {
	cases := []struct {
		price, savings int64
		want           int
	}{
		{200000, 100000, 50},
		{200000, 0, 0},
		{200000, 300000, 100}, // clamped
		{189000, 250000, 100}, // clamped
		{0, 0, 100},           // zero price defined as reached
		{30000, 10000, 33},    // 33.33 half-up
		{30000, 20000, 67},    // 66.67 half-up
	}
	for _, tc := range cases {
		inv := Investment{ID: 1, PurchasePrice: Won(tc.price)}
		var usages []InvestmentUsage
		if tc.savings > 0 {
			usages = []InvestmentUsage{{InvestmentID: 1, OriginalPrice: Won(tc.savings)}}
		}
		got := ComputeInvestmentStats(inv, usages)
		if got.BreakEvenProgress != tc.want {
			t.Errorf("price=%d savings=%d: progress = %d, want %d",
				tc.price, tc.savings, got.BreakEvenProgress, tc.want)
		}
	}
}

func TestInvestmentStatsNoUsage(t *testing.T) {
	inv := Investment{ID: 1, PurchasePrice: Won(100000)}
	got := ComputeInvestmentStats(inv, nil)
	if got.TotalSavings.Amount != 0 || got.AvgSavingsPerUse.Amount != 0 {
		t.Fatalf("expected zero savings, got %+v", got)
	}
	if got.NetProfit.Amount != -100000 {
		t.Fatalf("NetProfit = %d, want -100000", got.NetProfit.Amount)
	}
	if got.BreakEvenRemaining.Amount != 100000 {
		t.Fatalf("BreakEvenRemaining = %d, want 100000", got.BreakEvenRemaining.Amount)
	}
}

// Progress is always within [0, 100] and pegged to 100 whenever net profit
// is non-negative.
func TestBreakEvenProgressBounds(t *testing.T) {
	for savings := int64(0); savings <= 400000; savings += 25000 {
		inv := Investment{ID: 1, PurchasePrice: Won(189000)}
		usages := []InvestmentUsage{{InvestmentID: 1, OriginalPrice: Won(savings)}}
		got := ComputeInvestmentStats(inv, usages)
		if got.BreakEvenProgress < 0 || got.BreakEvenProgress > 100 {
			t.Fatalf("savings=%d: progress %d out of range", savings, got.BreakEvenProgress)
		}
		if !got.NetProfit.IsNegative() && got.BreakEvenProgress != 100 {
			t.Fatalf("savings=%d: reached but progress %d", savings, got.BreakEvenProgress)
		}
	}
}
