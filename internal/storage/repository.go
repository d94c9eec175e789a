// Package storage implements the SQLite-backed repository for
// subscriptions, investments and their usage records, plus the activity log
// the worker maintains. The engine never touches this package directly; the
// service layer fetches snapshots here and hands them to core.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subtrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- subscriptions ---

const subscriptionColumns = `id, user_uuid, name, emoji_code, period_label,
	total_amount, monthly_amount, start_date, end_date, monthly_target_usage,
	is_active, created_at`

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, sub core.Subscription) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO subscription
			(user_uuid, name, emoji_code, period_label, total_amount,
			 monthly_amount, start_date, end_date, monthly_target_usage, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		sub.UserID, sub.Name, sub.EmojiCode, sub.PeriodLabel,
		sub.TotalAmount.Amount, sub.MonthlyAmount.Amount,
		sub.StartDate.String(), nullDate(sub.EndDate), nullInt(sub.MonthlyTargetUsage))
	if err != nil {
		return 0, fmt.Errorf("insert subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("subscription id: %w", err)
	}

	slog.InfoContext(ctx, "Subscription created", "id", id, "name", sub.Name)
	return id, nil
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, sub core.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscription SET
			name = ?, emoji_code = ?, period_label = ?, total_amount = ?,
			monthly_amount = ?, start_date = ?, end_date = ?,
			monthly_target_usage = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_uuid = ? AND is_active = 1`,
		sub.Name, sub.EmojiCode, sub.PeriodLabel,
		sub.TotalAmount.Amount, sub.MonthlyAmount.Amount,
		sub.StartDate.String(), nullDate(sub.EndDate), nullInt(sub.MonthlyTargetUsage),
		sub.ID, sub.UserID)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) SoftDeleteSubscription(ctx context.Context, id int64, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscription SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_uuid = ? AND is_active = 1`, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete subscription: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Subscription deactivated", "id", id)
	return nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id int64, userID string) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscription
		WHERE id = ? AND user_uuid = ? AND is_active = 1`, id, userID)
	return scanSubscription(row)
}

// ListActiveSubscriptions returns every subscription that has not been
// soft-deleted, including ones past their end date (management views).
func (r *SQLiteRepository) ListActiveSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error) {
	return r.querySubscriptions(ctx, `
		SELECT `+subscriptionColumns+` FROM subscription
		WHERE user_uuid = ? AND is_active = 1
		ORDER BY created_at DESC, id DESC`, userID)
}

// ListCurrentSubscriptions returns active subscriptions whose end date has
// not passed as of today.
func (r *SQLiteRepository) ListCurrentSubscriptions(ctx context.Context, userID string, today core.Date) ([]core.Subscription, error) {
	return r.querySubscriptions(ctx, `
		SELECT `+subscriptionColumns+` FROM subscription
		WHERE user_uuid = ? AND is_active = 1
		  AND (end_date IS NULL OR end_date >= ?)
		ORDER BY created_at DESC, id DESC`, userID, today.String())
}

func (r *SQLiteRepository) SubscriptionNameExists(ctx context.Context, userID, name string, excludeID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM subscription
		WHERE user_uuid = ? AND name = ? AND is_active = 1 AND id != ?`,
		userID, name, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check subscription name: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) querySubscriptions(ctx context.Context, query string, args ...any) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// --- usage logs (check-ins) ---

// ToggleCheckIn flips the check-in state for a (subscription, date) pair:
// an existing log is deleted, a missing one inserted. Lookup and write run
// in one transaction so the at-most-one-per-day invariant holds.
// Returns true when the day ends up checked in.
func (r *SQLiteRepository) ToggleCheckIn(ctx context.Context, subscriptionID int64, date core.Date) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM usage_log WHERE subscription_id = ? AND used_at = ?`,
		subscriptionID, date.String()).Scan(&existingID)

	checkedIn := false
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM usage_log WHERE id = ?`, existingID); err != nil {
			return false, fmt.Errorf("delete check-in: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO usage_log (subscription_id, used_at) VALUES (?, ?)`,
			subscriptionID, date.String()); err != nil {
			return false, fmt.Errorf("insert check-in: %w", err)
		}
		checkedIn = true
	default:
		return false, fmt.Errorf("lookup check-in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}

	slog.InfoContext(ctx, "Check-in toggled",
		"subscription_id", subscriptionID, "date", date.String(), "checked_in", checkedIn)
	return checkedIn, nil
}

// InsertCheckIn is the non-toggling variant: a second check-in on the same
// date is rejected with core.ErrDuplicateCheckIn.
func (r *SQLiteRepository) InsertCheckIn(ctx context.Context, subscriptionID int64, date core.Date) (int64, error) {
	exists, err := r.HasCheckIn(ctx, subscriptionID, date)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, core.ErrDuplicateCheckIn
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO usage_log (subscription_id, used_at) VALUES (?, ?)`,
		subscriptionID, date.String())
	if err != nil {
		return 0, fmt.Errorf("insert usage log: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) HasCheckIn(ctx context.Context, subscriptionID int64, date core.Date) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM usage_log WHERE subscription_id = ? AND used_at = ?`,
		subscriptionID, date.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check usage log: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteUsageLog(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usage_log WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete usage log: %w", err)
	}
	return requireRow(res)
}

// ListUserUsageLogs returns a user's check-ins on active subscriptions
// within [from, to], oldest first.
func (r *SQLiteRepository) ListUserUsageLogs(ctx context.Context, userID string, from, to core.Date) ([]core.UsageLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.subscription_id, u.used_at, u.note
		FROM usage_log u
		JOIN subscription s ON s.id = u.subscription_id
		WHERE s.user_uuid = ? AND s.is_active = 1
		  AND u.used_at >= ? AND u.used_at <= ?
		ORDER BY u.used_at, u.id`, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query usage logs: %w", err)
	}
	defer rows.Close()
	return scanUsageLogs(rows)
}

// ListSubscriptionUsageLogs returns all check-ins of one subscription,
// newest first, optionally limited.
func (r *SQLiteRepository) ListSubscriptionUsageLogs(ctx context.Context, subscriptionID int64, limit int) ([]core.UsageLog, error) {
	query := `
		SELECT id, subscription_id, used_at, note FROM usage_log
		WHERE subscription_id = ? ORDER BY used_at DESC, id DESC`
	args := []any{subscriptionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscription usage logs: %w", err)
	}
	defer rows.Close()
	return scanUsageLogs(rows)
}

func (r *SQLiteRepository) CountUsageLogs(ctx context.Context, subscriptionID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM usage_log WHERE subscription_id = ?`, subscriptionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count usage logs: %w", err)
	}
	return n, nil
}

func scanUsageLogs(rows *sql.Rows) ([]core.UsageLog, error) {
	var logs []core.UsageLog
	for rows.Next() {
		var (
			l      core.UsageLog
			usedAt string
			note   sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.SubscriptionID, &usedAt, &note); err != nil {
			return nil, fmt.Errorf("scan usage log: %w", err)
		}
		d, err := core.ParseDate(usedAt)
		if err != nil {
			return nil, fmt.Errorf("parse used_at: %w", err)
		}
		l.UsedAt = d
		l.Note = note.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// --- investments ---

const investmentColumns = `id, user_uuid, name, emoji_code, category,
	purchase_price, purchase_date, comparison_baseline, note, is_active, created_at`

func (r *SQLiteRepository) CreateInvestment(ctx context.Context, inv core.Investment) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO investment
			(user_uuid, name, emoji_code, category, purchase_price,
			 purchase_date, comparison_baseline, note, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		inv.UserID, inv.Name, inv.EmojiCode, inv.Category,
		inv.PurchasePrice.Amount, inv.PurchaseDate.String(),
		inv.ComparisonBaseline.Amount, nullString(inv.Note))
	if err != nil {
		return 0, fmt.Errorf("insert investment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("investment id: %w", err)
	}

	slog.InfoContext(ctx, "Investment created", "id", id, "name", inv.Name)
	return id, nil
}

func (r *SQLiteRepository) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE investment SET
			name = ?, emoji_code = ?, category = ?, purchase_price = ?,
			purchase_date = ?, comparison_baseline = ?, note = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_uuid = ? AND is_active = 1`,
		inv.Name, inv.EmojiCode, inv.Category, inv.PurchasePrice.Amount,
		inv.PurchaseDate.String(), inv.ComparisonBaseline.Amount, nullString(inv.Note),
		inv.ID, inv.UserID)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) SoftDeleteInvestment(ctx context.Context, id int64, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE investment SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_uuid = ? AND is_active = 1`, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete investment: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Investment deactivated", "id", id)
	return nil
}

func (r *SQLiteRepository) GetInvestment(ctx context.Context, id int64, userID string) (core.Investment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+investmentColumns+` FROM investment
		WHERE id = ? AND user_uuid = ? AND is_active = 1`, id, userID)
	return scanInvestment(row)
}

func (r *SQLiteRepository) ListActiveInvestments(ctx context.Context, userID string) ([]core.Investment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+investmentColumns+` FROM investment
		WHERE user_uuid = ? AND is_active = 1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query investments: %w", err)
	}
	defer rows.Close()

	var invs []core.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// --- investment usages ---

func (r *SQLiteRepository) AddInvestmentUsage(ctx context.Context, u core.InvestmentUsage) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO investment_usage
			(investment_id, used_at, item_name, original_price, actual_price, source, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.InvestmentID, u.UsedAt.String(), u.ItemName,
		u.OriginalPrice.Amount, u.ActualPrice.Amount,
		nullString(u.Source), nullString(u.Note))
	if err != nil {
		return 0, fmt.Errorf("insert investment usage: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetInvestmentUsage(ctx context.Context, id int64) (core.InvestmentUsage, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, investment_id, used_at, item_name, original_price, actual_price, source, note
		FROM investment_usage WHERE id = ?`, id)
	u, err := scanInvestmentUsage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.InvestmentUsage{}, core.ErrNotFound
	}
	return u, err
}

func (r *SQLiteRepository) DeleteInvestmentUsage(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM investment_usage WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete investment usage: %w", err)
	}
	return requireRow(res)
}

// ListInvestmentUsages returns all usage records of one investment, newest
// first, optionally limited.
func (r *SQLiteRepository) ListInvestmentUsages(ctx context.Context, investmentID int64, limit int) ([]core.InvestmentUsage, error) {
	query := `
		SELECT id, investment_id, used_at, item_name, original_price, actual_price, source, note
		FROM investment_usage WHERE investment_id = ? ORDER BY used_at DESC, id DESC`
	args := []any{investmentID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query investment usages: %w", err)
	}
	defer rows.Close()
	return collectInvestmentUsages(rows)
}

// ListUserInvestmentUsages returns a user's usage records on active
// investments within [from, to], oldest first.
func (r *SQLiteRepository) ListUserInvestmentUsages(ctx context.Context, userID string, from, to core.Date) ([]core.InvestmentUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.investment_id, u.used_at, u.item_name,
		       u.original_price, u.actual_price, u.source, u.note
		FROM investment_usage u
		JOIN investment i ON i.id = u.investment_id
		WHERE i.user_uuid = ? AND i.is_active = 1
		  AND u.used_at >= ? AND u.used_at <= ?
		ORDER BY u.used_at, u.id`, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query user investment usages: %w", err)
	}
	defer rows.Close()
	return collectInvestmentUsages(rows)
}

func collectInvestmentUsages(rows *sql.Rows) ([]core.InvestmentUsage, error) {
	var usages []core.InvestmentUsage
	for rows.Next() {
		u, err := scanInvestmentUsage(rows)
		if err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

// --- activity log ---

// ActivityEntry is one audited usage event, written by the worker as it
// drains the event stream.
type ActivityEntry struct {
	UserID     string
	Kind       string
	EntityID   int64
	OccurredOn core.Date

	// RecordedAt is filled by the store; SQLite uses the column default.
	RecordedAt time.Time
}

func (r *SQLiteRepository) AppendActivity(ctx context.Context, e ActivityEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (user_uuid, kind, entity_id, occurred_on)
		VALUES (?, ?, ?, ?)`,
		e.UserID, e.Kind, e.EntityID, e.OccurredOn.String())
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// PruneActivity deletes audit rows recorded before the cutoff and returns
// how many were removed.
func (r *SQLiteRepository) PruneActivity(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM activity_log WHERE recorded_at < ?`,
		before.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (core.Subscription, error) {
	var (
		sub          core.Subscription
		totalAmount  int64
		monthly      int64
		startDate    string
		endDate      sql.NullString
		target       sql.NullInt64
		active       int
		createdAtRaw string
	)
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Name, &sub.EmojiCode, &sub.PeriodLabel,
		&totalAmount, &monthly, &startDate, &endDate, &target, &active, &createdAtRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, core.ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("scan subscription: %w", err)
	}

	sub.TotalAmount = core.Won(totalAmount)
	sub.MonthlyAmount = core.Won(monthly)
	sub.MonthlyTargetUsage = int(target.Int64)
	sub.Active = active == 1
	sub.CreatedAt = parseTimestamp(createdAtRaw)

	if sub.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.Subscription{}, fmt.Errorf("parse start_date: %w", err)
	}
	if endDate.Valid {
		if sub.EndDate, err = core.ParseDate(endDate.String); err != nil {
			return core.Subscription{}, fmt.Errorf("parse end_date: %w", err)
		}
	}
	return sub, nil
}

func scanInvestment(row rowScanner) (core.Investment, error) {
	var (
		inv          core.Investment
		price        int64
		purchaseDate string
		baseline     int64
		note         sql.NullString
		active       int
		createdAtRaw string
	)
	err := row.Scan(&inv.ID, &inv.UserID, &inv.Name, &inv.EmojiCode, &inv.Category,
		&price, &purchaseDate, &baseline, &note, &active, &createdAtRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Investment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Investment{}, fmt.Errorf("scan investment: %w", err)
	}

	inv.PurchasePrice = core.Won(price)
	inv.ComparisonBaseline = core.Won(baseline)
	inv.Note = note.String
	inv.Active = active == 1
	inv.CreatedAt = parseTimestamp(createdAtRaw)

	if inv.PurchaseDate, err = core.ParseDate(purchaseDate); err != nil {
		return core.Investment{}, fmt.Errorf("parse purchase_date: %w", err)
	}
	return inv, nil
}

func scanInvestmentUsage(row rowScanner) (core.InvestmentUsage, error) {
	var (
		u        core.InvestmentUsage
		usedAt   string
		original int64
		actual   int64
		source   sql.NullString
		note     sql.NullString
	)
	err := row.Scan(&u.ID, &u.InvestmentID, &usedAt, &u.ItemName, &original, &actual, &source, &note)
	if err != nil {
		return core.InvestmentUsage{}, err
	}

	u.OriginalPrice = core.Won(original)
	u.ActualPrice = core.Won(actual)
	u.Source = source.String
	u.Note = note.String
	if u.UsedAt, err = core.ParseDate(usedAt); err != nil {
		return core.InvestmentUsage{}, fmt.Errorf("parse used_at: %w", err)
	}
	return u, nil
}

// SQLite stores CURRENT_TIMESTAMP without a zone marker.
func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
