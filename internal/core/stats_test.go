package core

import (
	"testing"
	"time"
)

func TestBuildReportSeriesShape(t *testing.T) {
	today := NewDate(2025, time.June, 15)
	report := BuildReport(nil, nil, nil, nil, today)

	if len(report.MonthlyUsage) != 6 {
		t.Fatalf("usage series length = %d, want 6", len(report.MonthlyUsage))
	}
	if len(report.InvestmentSavings) != 6 {
		t.Fatalf("savings series length = %d, want 6", len(report.InvestmentSavings))
	}

	// Oldest first: January through June 2025.
	want := []YearMonth{
		{2025, time.January}, {2025, time.February}, {2025, time.March},
		{2025, time.April}, {2025, time.May}, {2025, time.June},
	}
	for i, p := range report.MonthlyUsage {
		if p.Month != want[i] {
			t.Fatalf("point %d month = %v, want %v", i, p.Month, want[i])
		}
		if p.Count != 0 {
			t.Fatalf("empty snapshot produced count %d", p.Count)
		}
	}
	if report.MonthlyUsage[0].Label != "1월" || report.MonthlyUsage[5].Label != "6월" {
		t.Fatalf("labels = %q..%q", report.MonthlyUsage[0].Label, report.MonthlyUsage[5].Label)
	}
}

func TestBuildReportSeriesCrossYear(t *testing.T) {
	report := BuildReport(nil, nil, nil, nil, NewDate(2025, time.February, 1))
	first := report.MonthlyUsage[0].Month
	if first != (YearMonth{2024, time.September}) {
		t.Fatalf("first month = %v, want 2024 September", first)
	}
}

func TestBuildReport(t *testing.T) {
	today := NewDate(2025, time.June, 15)
	subs := []Subscription{
		{ID: 1, Name: "헬스장", MonthlyAmount: Won(60000), Active: true},
		{ID: 2, Name: "넷플릭스", MonthlyAmount: Won(17000), Active: true},
	}
	logs := []UsageLog{
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 1)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 8)},
		{SubscriptionID: 2, UsedAt: NewDate(2025, time.June, 1)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.May, 3)},
		{SubscriptionID: 1, UsedAt: NewDate(2024, time.November, 3)}, // outside the window
		{SubscriptionID: 99, UsedAt: NewDate(2025, time.June, 2)},    // unknown subscription
	}
	invs := []Investment{{ID: 10, Name: "리더기", PurchasePrice: Won(189000), Active: true}}
	invUsages := []InvestmentUsage{
		{InvestmentID: 10, UsedAt: NewDate(2025, time.June, 5), OriginalPrice: Won(15000), ActualPrice: Won(0)},
		{InvestmentID: 10, UsedAt: NewDate(2025, time.April, 5), OriginalPrice: Won(12000), ActualPrice: Won(2000)},
	}

	report := BuildReport(subs, logs, invs, invUsages, today)

	// Usage series: May has 1, June has 3.
	if got := report.MonthlyUsage[4].Count; got != 1 {
		t.Fatalf("May usage = %d, want 1", got)
	}
	if got := report.MonthlyUsage[5].Count; got != 3 {
		t.Fatalf("June usage = %d, want 3", got)
	}

	// Savings series: April 10000, June 15000.
	if got := report.InvestmentSavings[3].Amount.Amount; got != 10000 {
		t.Fatalf("April savings = %d, want 10000", got)
	}
	if got := report.InvestmentSavings[5].Amount.Amount; got != 15000 {
		t.Fatalf("June savings = %d, want 15000", got)
	}

	if len(report.CostComparison) != 2 {
		t.Fatalf("comparison rows = %d, want 2", len(report.CostComparison))
	}

	s := report.Summary
	if s.SubscriptionCount != 2 || s.InvestmentCount != 1 {
		t.Fatalf("counts = %d/%d", s.SubscriptionCount, s.InvestmentCount)
	}
	if s.TotalMonthlyFee.Amount != 77000 {
		t.Fatalf("TotalMonthlyFee = %d, want 77000", s.TotalMonthlyFee.Amount)
	}
	if s.TotalUsageCount != 3 {
		t.Fatalf("TotalUsageCount = %d, want 3", s.TotalUsageCount)
	}
	if s.AvgCostPerUse.Amount != 25667 { // 77000/3 half-up
		t.Fatalf("AvgCostPerUse = %d, want 25667", s.AvgCostPerUse.Amount)
	}
}

func TestBuildReportNoUsage(t *testing.T) {
	subs := []Subscription{{ID: 1, Name: "a", MonthlyAmount: Won(5000), Active: true}}
	report := BuildReport(subs, nil, nil, nil, NewDate(2025, time.June, 1))
	if report.Summary.AvgCostPerUse.Amount != 0 {
		t.Fatalf("AvgCostPerUse = %d, want 0 with no usage", report.Summary.AvgCostPerUse.Amount)
	}
}
