package services

import (
	"context"
	"fmt"
	"time"

	"subtrack/internal/core"
)

// reportWindowMonths is how far back the statistics snapshots reach,
// matching the chart series length.
const reportWindowMonths = 6

type StatisticsService struct {
	store Store
}

func NewStatisticsService(store Store) *StatisticsService {
	return &StatisticsService{store: store}
}

// Report gathers a user's snapshots and rolls them into chart series and
// dashboard totals for the six months ending today.
func (s *StatisticsService) Report(ctx context.Context, userID string, today core.Date) (core.Report, error) {
	month := core.YearMonthOf(today)
	from := month.AddMonths(-(reportWindowMonths - 1)).First()
	to := month.Last()

	subs, err := s.store.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return core.Report{}, fmt.Errorf("list subscriptions: %w", err)
	}
	logs, err := s.store.ListUserUsageLogs(ctx, userID, from, to)
	if err != nil {
		return core.Report{}, fmt.Errorf("list usage logs: %w", err)
	}
	invs, err := s.store.ListActiveInvestments(ctx, userID)
	if err != nil {
		return core.Report{}, fmt.Errorf("list investments: %w", err)
	}
	invUsages, err := s.store.ListUserInvestmentUsages(ctx, userID, from, to)
	if err != nil {
		return core.Report{}, fmt.Errorf("list investment usages: %w", err)
	}

	return core.BuildReport(subs, logs, invs, invUsages, today), nil
}

// Calendar builds the month grid for a user. The grid spans whole weeks, so
// the usage snapshot extends past the month on both ends.
func (s *StatisticsService) Calendar(ctx context.Context, userID string, year int, month time.Month, today core.Date) ([]core.DayCell, error) {
	subs, err := s.store.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	ym := core.YearMonth{Year: year, Month: month}
	from := ym.First().AddDays(-6)
	to := ym.Last().AddDays(6)
	logs, err := s.store.ListUserUsageLogs(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list usage logs: %w", err)
	}

	return core.BuildMonthGrid(subs, logs, year, month, today), nil
}
