package core

import "testing"

func TestCostPerUse(t *testing.T) {
	cases := []struct {
		principal int64
		count     int
		want      int64
	}{
		{20000, 0, 20000}, // no amortization yet, worst case
		{20000, 20, 1000},
		{20000, 13, 1538}, // 1538.46 half-up
		{20000, 3, 6667},
		{9900, 1, 9900},
	}
	for _, tc := range cases {
		if got := CostPerUse(Won(tc.principal), tc.count).Amount; got != tc.want {
			t.Errorf("CostPerUse(%d, %d) = %d, want %d", tc.principal, tc.count, got, tc.want)
		}
	}
}

func TestCostPerUseMonotonic(t *testing.T) {
	principal := Won(17900)
	prev := CostPerUse(principal, 1)
	for count := 2; count <= 60; count++ {
		cur := CostPerUse(principal, count)
		if cur.Amount > prev.Amount {
			t.Fatalf("cost increased at count=%d: %d > %d", count, cur.Amount, prev.Amount)
		}
		prev = cur
	}
}

func TestTierFor(t *testing.T) {
	principal := Won(20000) // good <= 1000, normal <= 2000
	cases := []struct {
		cost int64
		want Tier
	}{
		{0, TierGood},
		{1000, TierGood},
		{1001, TierNormal},
		{2000, TierNormal},
		{2001, TierWarning},
		{20000, TierWarning},
	}
	for _, tc := range cases {
		if got := TierFor(Won(tc.cost), principal); got != tc.want {
			t.Errorf("TierFor(%d) = %s, want %s", tc.cost, got, tc.want)
		}
	}
}

// The three bands are nested by threshold: any cost that qualifies as good
// also satisfies the normal bound.
func TestTierPartition(t *testing.T) {
	principal := Won(15000)
	good := principal.Div(20)
	normal := principal.Div(10)
	for cost := int64(0); cost <= principal.Amount; cost += 250 {
		tier := TierFor(Won(cost), principal)
		switch tier {
		case TierGood:
			if cost > good.Amount {
				t.Fatalf("cost %d tagged good above threshold %d", cost, good.Amount)
			}
		case TierNormal:
			if cost <= good.Amount || cost > normal.Amount {
				t.Fatalf("cost %d tagged normal outside (%d, %d]", cost, good.Amount, normal.Amount)
			}
		case TierWarning:
			if cost <= normal.Amount {
				t.Fatalf("cost %d tagged warning at or below %d", cost, normal.Amount)
			}
		}
	}
}

func TestAmortizeBasis(t *testing.T) {
	sub := Subscription{TotalAmount: Won(120000), MonthlyAmount: Won(10000)}

	cost, tier := Amortize(sub, 20, BasisMonthly)
	if cost.Amount != 500 || tier != TierGood {
		t.Fatalf("monthly basis: got %d/%s", cost.Amount, tier)
	}

	cost, tier = Amortize(sub, 20, BasisLifetime)
	if cost.Amount != 6000 || tier != TierGood {
		t.Fatalf("lifetime basis: got %d/%s", cost.Amount, tier)
	}
}
