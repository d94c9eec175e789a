package core

// Tier classifies a cost-per-use against thresholds derived from its
// principal: good means the period was used at least twenty times, normal at
// least ten.
type Tier string

const (
	TierGood    Tier = "good"
	TierNormal  Tier = "normal"
	TierWarning Tier = "warning"
)

// Basis selects which principal a subscription's cost-per-use divides.
// BasisMonthly (monthly amount over this month's usage) is the canonical
// behaviour; BasisLifetime (total paid amount over lifetime usage) is kept
// for reproducing historically displayed values.
type Basis int

const (
	BasisMonthly Basis = iota
	BasisLifetime
)

// CostPerUse amortizes a principal over a usage count, rounding half-up.
// With no usage yet the full principal is reported as the worst-case cost.
func CostPerUse(principal Money, usageCount int) Money {
	if usageCount == 0 {
		return principal
	}
	return principal.Div(int64(usageCount))
}

// TierFor buckets a cost-per-use relative to its principal.
func TierFor(costPerUse, principal Money) Tier {
	goodThreshold := principal.Div(20)
	normalThreshold := principal.Div(10)

	switch {
	case costPerUse.LessOrEqual(goodThreshold):
		return TierGood
	case costPerUse.LessOrEqual(normalThreshold):
		return TierNormal
	default:
		return TierWarning
	}
}

// Amortize resolves the principal for the chosen basis and returns the
// cost-per-use together with its tier.
func Amortize(sub Subscription, usageCount int, basis Basis) (Money, Tier) {
	principal := sub.MonthlyAmount
	if basis == BasisLifetime {
		principal = sub.TotalAmount
	}
	cost := CostPerUse(principal, usageCount)
	return cost, TierFor(cost, principal)
}
