// Package services orchestrates subscription and investment operations
// across the repository, the pure engine and the event stream.
package services

import (
	"context"

	"subtrack/internal/core"
	"subtrack/internal/events"
	"subtrack/internal/storage"
)

// Store is the persistence surface the services need. Both
// storage.SQLiteRepository and storage.MemoryStore satisfy it.
type Store interface {
	CreateSubscription(ctx context.Context, sub core.Subscription) (int64, error)
	UpdateSubscription(ctx context.Context, sub core.Subscription) error
	SoftDeleteSubscription(ctx context.Context, id int64, userID string) error
	GetSubscription(ctx context.Context, id int64, userID string) (core.Subscription, error)
	ListActiveSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error)
	ListCurrentSubscriptions(ctx context.Context, userID string, today core.Date) ([]core.Subscription, error)
	SubscriptionNameExists(ctx context.Context, userID, name string, excludeID int64) (bool, error)

	ToggleCheckIn(ctx context.Context, subscriptionID int64, date core.Date) (bool, error)
	InsertCheckIn(ctx context.Context, subscriptionID int64, date core.Date) (int64, error)
	HasCheckIn(ctx context.Context, subscriptionID int64, date core.Date) (bool, error)
	ListUserUsageLogs(ctx context.Context, userID string, from, to core.Date) ([]core.UsageLog, error)
	ListSubscriptionUsageLogs(ctx context.Context, subscriptionID int64, limit int) ([]core.UsageLog, error)
	CountUsageLogs(ctx context.Context, subscriptionID int64) (int, error)

	CreateInvestment(ctx context.Context, inv core.Investment) (int64, error)
	UpdateInvestment(ctx context.Context, inv core.Investment) error
	SoftDeleteInvestment(ctx context.Context, id int64, userID string) error
	GetInvestment(ctx context.Context, id int64, userID string) (core.Investment, error)
	ListActiveInvestments(ctx context.Context, userID string) ([]core.Investment, error)

	AddInvestmentUsage(ctx context.Context, u core.InvestmentUsage) (int64, error)
	GetInvestmentUsage(ctx context.Context, id int64) (core.InvestmentUsage, error)
	DeleteInvestmentUsage(ctx context.Context, id int64) error
	ListInvestmentUsages(ctx context.Context, investmentID int64, limit int) ([]core.InvestmentUsage, error)
	ListUserInvestmentUsages(ctx context.Context, userID string, from, to core.Date) ([]core.InvestmentUsage, error)
}

// Publisher emits usage events to the broker. A nil Publisher disables
// publishing without failing requests.
type Publisher interface {
	PublishUsageEvent(ctx context.Context, msg *events.UsageEvent) error
}

var _ Store = (*storage.SQLiteRepository)(nil)
var _ Store = (*storage.MemoryStore)(nil)
