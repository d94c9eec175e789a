package core

// SubscriptionStats are the per-subscription values shown on cards and
// detail pages, computed for the calendar month containing the as-of date.
type SubscriptionStats struct {
	MonthlyUsageCount int
	TotalUsageCount   int
	CostPerUse        Money
	Tier              Tier
	CheckedInToday    bool
}

// ComputeSubscriptionStats derives monthly usage, amortized cost and the
// checked-in-today flag from the subscription's usage logs. Logs belonging
// to other subscriptions are ignored, so callers may pass a mixed snapshot.
func ComputeSubscriptionStats(sub Subscription, logs []UsageLog, today Date) SubscriptionStats {
	month := YearMonthOf(today)

	var monthly, total int
	checkedIn := false
	for _, l := range logs {
		if l.SubscriptionID != sub.ID {
			continue
		}
		total++
		if month.Contains(l.UsedAt) {
			monthly++
		}
		if l.UsedAt.Equal(today) {
			checkedIn = true
		}
	}

	cost, tier := Amortize(sub, monthly, BasisMonthly)
	return SubscriptionStats{
		MonthlyUsageCount: monthly,
		TotalUsageCount:   total,
		CostPerUse:        cost,
		Tier:              tier,
		CheckedInToday:    checkedIn,
	}
}

// InvestmentStats are the break-even values for a single investment.
type InvestmentStats struct {
	UsageCount         int
	TotalSavings       Money
	NetProfit          Money
	BreakEvenReached   bool
	BreakEvenRemaining Money
	BreakEvenProgress  int
	AvgSavingsPerUse   Money
}

// ComputeInvestmentStats sums savings over the investment's usage records
// and derives the break-even figures. Absent data is zero, never an error.
func ComputeInvestmentStats(inv Investment, usages []InvestmentUsage) InvestmentStats {
	var total Money
	count := 0
	for _, u := range usages {
		if u.InvestmentID != inv.ID {
			continue
		}
		total = total.Add(u.Saved())
		count++
	}

	netProfit := total.Sub(inv.PurchasePrice)
	reached := !netProfit.IsNegative()

	remaining := Money{}
	if !reached {
		remaining = netProfit.Abs()
	}

	progress := 100
	if !inv.PurchasePrice.IsZero() {
		progress = clampInt(int(divRoundHalfUp(total.Amount*100, inv.PurchasePrice.Amount)), 0, 100)
	}

	avg := Money{}
	if count > 0 {
		avg = total.Div(int64(count))
	}

	return InvestmentStats{
		UsageCount:         count,
		TotalSavings:       total,
		NetProfit:          netProfit,
		BreakEvenReached:   reached,
		BreakEvenRemaining: remaining,
		BreakEvenProgress:  progress,
		AvgSavingsPerUse:   avg,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
