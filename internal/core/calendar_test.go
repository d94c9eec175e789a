package core

import (
	"testing"
	"time"
)

func TestBuildMonthGridJanuary2025(t *testing.T) {
	// January 2025 starts on a Wednesday: the grid runs Sun 2024-12-29
	// through Sat 2025-02-01.
	today := NewDate(2025, time.January, 15)
	cells := BuildMonthGrid(nil, nil, 2025, time.January, today)

	if len(cells) != 35 {
		t.Fatalf("cell count = %d, want 35", len(cells))
	}
	if !cells[0].Date.Equal(NewDate(2024, time.December, 29)) {
		t.Fatalf("grid start = %s, want 2024-12-29", cells[0].Date)
	}
	if !cells[len(cells)-1].Date.Equal(NewDate(2025, time.February, 1)) {
		t.Fatalf("grid end = %s, want 2025-02-01", cells[len(cells)-1].Date)
	}

	inMonth := 0
	todayCount := 0
	for _, c := range cells {
		if c.InCurrentMonth {
			inMonth++
		}
		if c.IsToday {
			todayCount++
		}
	}
	if inMonth != 31 {
		t.Fatalf("current-month cells = %d, want 31", inMonth)
	}
	if todayCount != 1 {
		t.Fatalf("isToday cells = %d, want exactly 1", todayCount)
	}
}

func TestBuildMonthGridWholeWeeks(t *testing.T) {
	today := NewDate(2030, time.January, 1)
	for year := 2024; year <= 2026; year++ {
		for month := time.January; month <= time.December; month++ {
			cells := BuildMonthGrid(nil, nil, year, month, today)
			if len(cells)%7 != 0 {
				t.Fatalf("%d-%d: %d cells, not whole weeks", year, month, len(cells))
			}
			if len(cells) < 28 || len(cells) > 42 {
				t.Fatalf("%d-%d: %d cells out of range", year, month, len(cells))
			}
			if cells[0].Date.Weekday() != time.Sunday {
				t.Fatalf("%d-%d: grid starts on %s", year, month, cells[0].Date.Weekday())
			}
			inMonth := 0
			for _, c := range cells {
				if c.InCurrentMonth {
					inMonth++
				}
			}
			if want := (YearMonth{year, month}).Days(); inMonth != want {
				t.Fatalf("%d-%d: %d current-month cells, want %d", year, month, inMonth, want)
			}
		}
	}
}

func TestBuildMonthGridNoTodayOutsideRange(t *testing.T) {
	// Viewing a far-past month: no cell may claim to be today.
	cells := BuildMonthGrid(nil, nil, 2020, time.March, NewDate(2025, time.June, 15))
	for _, c := range cells {
		if c.IsToday {
			t.Fatalf("unexpected isToday on %s", c.Date)
		}
	}
}

func TestBuildMonthGridUsageEntries(t *testing.T) {
	today := NewDate(2025, time.June, 20)
	subs := []Subscription{
		{ID: 1, Name: "헬스장", EmojiCode: "gym", MonthlyAmount: Won(60000), Active: true},
		{ID: 2, Name: "넷플릭스", EmojiCode: "netflix", MonthlyAmount: Won(17000), Active: true},
	}
	logs := []UsageLog{
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 2)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 9)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 16)},
		{SubscriptionID: 2, UsedAt: NewDate(2025, time.June, 2)},
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.May, 31)}, // outside the month
	}

	cells := BuildMonthGrid(subs, logs, 2025, time.June, today)

	var june2 DayCell
	for _, c := range cells {
		if c.Date.Equal(NewDate(2025, time.June, 2)) {
			june2 = c
		}
	}
	if len(june2.Usages) != 2 {
		t.Fatalf("june 2 entries = %d, want 2", len(june2.Usages))
	}

	// The gym was used 3 times this month: 60000/3 = 20000 per use.
	var gym UsageEntry
	for _, e := range june2.Usages {
		if e.SubscriptionID == 1 {
			gym = e
		}
	}
	if gym.CostPerUse.Amount != 20000 {
		t.Fatalf("gym cost per use = %d, want 20000", gym.CostPerUse.Amount)
	}
	if gym.Tier != TierWarning { // 20000 > 60000/10
		t.Fatalf("gym tier = %s, want warning", gym.Tier)
	}
	if gym.Emoji == "" {
		t.Fatal("expected emoji glyph")
	}

	// The May 31 log appears in no June cell, padding included.
	for _, c := range cells {
		if !c.InCurrentMonth && len(c.Usages) != 0 {
			t.Fatalf("padding cell %s carries usage entries", c.Date)
		}
	}
}

func TestBuildMonthGridExcludesExpired(t *testing.T) {
	today := NewDate(2025, time.June, 20)
	subs := []Subscription{
		// Still flagged active, but its end date has passed.
		{ID: 1, Name: "옛날 구독", MonthlyAmount: Won(10000), Active: true,
			EndDate: NewDate(2025, time.June, 1)},
	}
	logs := []UsageLog{
		{SubscriptionID: 1, UsedAt: NewDate(2025, time.June, 1)},
	}

	cells := BuildMonthGrid(subs, logs, 2025, time.June, today)
	for _, c := range cells {
		if len(c.Usages) != 0 {
			t.Fatalf("expired subscription produced entries on %s", c.Date)
		}
	}
}
