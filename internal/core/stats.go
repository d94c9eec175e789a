package core

import "fmt"

// reportMonths is how many calendar months the time series cover.
const reportMonths = 6

// UsagePoint is one month of the check-in count series.
type UsagePoint struct {
	Label string
	Month YearMonth
	Count int
}

// SavingsPoint is one month of the investment savings series.
type SavingsPoint struct {
	Label  string
	Month  YearMonth
	Amount Money
}

// NameAmount pairs a display name with a money value, used for the
// per-subscription monthly fee comparison chart.
type NameAmount struct {
	Name   string
	Amount Money
}

// Summary holds the roll-up totals shown on the dashboard header.
type Summary struct {
	SubscriptionCount int
	TotalMonthlyFee   Money
	TotalUsageCount   int
	AvgCostPerUse     Money
	InvestmentCount   int
}

// Report is the presentation-ready statistics bundle. All series cover the
// last six calendar months including the current one, oldest first, with
// explicit zeros for months without records.
type Report struct {
	MonthlyUsage      []UsagePoint
	CostComparison    []NameAmount
	InvestmentSavings []SavingsPoint
	Summary           Summary
}

// BuildReport rolls up all of a user's records into chart series and summary
// totals. The subscription and investment snapshots are expected to already
// be limited to active items; usage snapshots may span any date range.
func BuildReport(subs []Subscription, logs []UsageLog, invs []Investment, invUsages []InvestmentUsage, today Date) Report {
	months := lastMonths(today, reportMonths)

	subIDs := make(map[int64]bool, len(subs))
	for _, s := range subs {
		subIDs[s.ID] = true
	}
	invIDs := make(map[int64]bool, len(invs))
	for _, inv := range invs {
		invIDs[inv.ID] = true
	}

	usage := make([]UsagePoint, len(months))
	for i, ym := range months {
		usage[i] = UsagePoint{Label: monthLabel(ym), Month: ym}
	}
	for _, l := range logs {
		if !subIDs[l.SubscriptionID] {
			continue
		}
		for i := range usage {
			if usage[i].Month.Contains(l.UsedAt) {
				usage[i].Count++
				break
			}
		}
	}

	savings := make([]SavingsPoint, len(months))
	for i, ym := range months {
		savings[i] = SavingsPoint{Label: monthLabel(ym), Month: ym}
	}
	for _, u := range invUsages {
		if !invIDs[u.InvestmentID] {
			continue
		}
		for i := range savings {
			if savings[i].Month.Contains(u.UsedAt) {
				savings[i].Amount = savings[i].Amount.Add(u.Saved())
				break
			}
		}
	}

	comparison := make([]NameAmount, 0, len(subs))
	var totalFee Money
	for _, s := range subs {
		comparison = append(comparison, NameAmount{Name: s.Name, Amount: s.MonthlyAmount})
		totalFee = totalFee.Add(s.MonthlyAmount)
	}

	// This month's check-ins across all subscriptions; the average cost per
	// use weights every subscription by its own usage.
	thisMonth := YearMonthOf(today)
	totalUsage := 0
	for _, l := range logs {
		if subIDs[l.SubscriptionID] && thisMonth.Contains(l.UsedAt) {
			totalUsage++
		}
	}
	var avgCost Money
	if totalUsage > 0 {
		avgCost = totalFee.Div(int64(totalUsage))
	}

	return Report{
		MonthlyUsage:      usage,
		CostComparison:    comparison,
		InvestmentSavings: savings,
		Summary: Summary{
			SubscriptionCount: len(subs),
			TotalMonthlyFee:   totalFee,
			TotalUsageCount:   totalUsage,
			AvgCostPerUse:     avgCost,
			InvestmentCount:   len(invs),
		},
	}
}

// lastMonths lists the n calendar months ending at today's month, oldest
// first.
func lastMonths(today Date, n int) []YearMonth {
	current := YearMonthOf(today)
	months := make([]YearMonth, n)
	for i := 0; i < n; i++ {
		months[i] = current.AddMonths(i - n + 1)
	}
	return months
}

func monthLabel(ym YearMonth) string {
	return fmt.Sprintf("%d월", int(ym.Month))
}
