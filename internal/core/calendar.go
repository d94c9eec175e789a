package core

import (
	"time"

	"subtrack/internal/labels"
)

// UsageEntry annotates one (day, subscription) check-in on the calendar with
// the subscription's amortized cost for the displayed month.
type UsageEntry struct {
	SubscriptionID   int64
	SubscriptionName string
	Emoji            string
	CostPerUse       Money
	Tier             Tier
}

// DayCell is one cell of the month grid. Padding cells from the previous or
// next month carry InCurrentMonth=false and never any usage entries.
type DayCell struct {
	Date           Date
	DayOfMonth     int
	InCurrentMonth bool
	IsToday        bool
	Usages         []UsageEntry
}

func (c DayCell) HasUsages() bool { return len(c.Usages) > 0 }

// BuildMonthGrid builds the Sunday-aligned calendar grid for a month. The
// grid always spans whole weeks: it starts on the Sunday on or before the
// first of the month and ends on the Saturday on or after the last day.
// Usage entries are attached only for subscriptions still current as of
// today, and each entry's cost divides the subscription's monthly amount by
// that subscription's usage count within the displayed month.
func BuildMonthGrid(subs []Subscription, logs []UsageLog, year int, month time.Month, today Date) []DayCell {
	ym := YearMonth{Year: year, Month: month}
	first := ym.First()
	last := ym.Last()

	gridStart := first.AddDays(-int(first.Weekday()))
	gridEnd := last.AddDays(int(time.Saturday - last.Weekday()))

	current := make(map[int64]Subscription, len(subs))
	for _, s := range subs {
		if s.CurrentAt(today) {
			current[s.ID] = s
		}
	}

	monthlyCount := make(map[int64]int)
	byDate := make(map[Date][]UsageLog)
	for _, l := range logs {
		if _, ok := current[l.SubscriptionID]; !ok {
			continue
		}
		if !ym.Contains(l.UsedAt) {
			continue
		}
		monthlyCount[l.SubscriptionID]++
		byDate[l.UsedAt] = append(byDate[l.UsedAt], l)
	}

	cells := make([]DayCell, 0, DaysBetween(gridStart, gridEnd)+1)
	for d := gridStart; !d.After(gridEnd); d = d.AddDays(1) {
		inMonth := ym.Contains(d)

		var entries []UsageEntry
		if inMonth {
			for _, l := range byDate[d] {
				sub := current[l.SubscriptionID]
				cost, tier := Amortize(sub, monthlyCount[sub.ID], BasisMonthly)
				entries = append(entries, UsageEntry{
					SubscriptionID:   sub.ID,
					SubscriptionName: sub.Name,
					Emoji:            labels.Emoji(sub.EmojiCode),
					CostPerUse:       cost,
					Tier:             tier,
				})
			}
		}

		cells = append(cells, DayCell{
			Date:           d,
			DayOfMonth:     d.Day(),
			InCurrentMonth: inMonth,
			IsToday:        d.Equal(today),
			Usages:         entries,
		})
	}

	return cells
}
