package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCheckIn  = errors.New("already checked in on this date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrDuplicateName     = errors.New("name already in use")
	ErrEndBeforeStart    = errors.New("end date before start date")
	ErrMissingStartDate  = errors.New("missing start date")
	ErrInvalidTargetGoal = errors.New("monthly target must be positive")
)

// Subscription is a recurring paid service the user checks in to.
// EndDate is the zero Date for open-ended subscriptions; MonthlyTargetUsage
// is 0 when no explicit goal was set (the target is then derived from the
// monthly amount, see MonthlyTarget).
type Subscription struct {
	ID                 int64
	UserID             string
	Name               string
	EmojiCode          string
	PeriodLabel        string
	TotalAmount        Money
	MonthlyAmount      Money
	StartDate          Date
	EndDate            Date
	MonthlyTargetUsage int
	Active             bool
	CreatedAt          time.Time
}

// CurrentAt reports whether the subscription is active and not yet past its
// end date as of the given day.
func (s Subscription) CurrentAt(today Date) bool {
	if !s.Active {
		return false
	}
	return s.EndDate.IsZero() || !s.EndDate.Before(today)
}

// MonthlyTarget returns the explicit monthly usage goal, or the derived one:
// monthly amount divided by 3000 won per use, half-up, at least once.
func (s Subscription) MonthlyTarget() int {
	if s.MonthlyTargetUsage > 0 {
		return s.MonthlyTargetUsage
	}
	target := int(s.MonthlyAmount.Div(3000).Amount)
	if target < 1 {
		target = 1
	}
	return target
}

// Lifetime returns the subscription's declared start and end; an absent end
// date is assumed to be one year after the start.
func (s Subscription) Lifetime() (start, end Date) {
	start = s.StartDate
	end = s.EndDate
	if end.IsZero() {
		end = DateOf(start.AddDate(1, 0, 0))
	}
	return start, end
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.MonthlyAmount.Amount <= 0 || s.TotalAmount.Amount < 0 {
		return ErrInvalidAmount
	}
	if s.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if !s.EndDate.IsZero() && s.EndDate.Before(s.StartDate) {
		return ErrEndBeforeStart
	}
	if s.MonthlyTargetUsage < 0 {
		return ErrInvalidTargetGoal
	}
	return nil
}

// UsageLog records a subscription check-in; at most one exists per
// (subscription, date) pair.
type UsageLog struct {
	ID             int64
	SubscriptionID int64
	UsedAt         Date
	Note           string
}

// Investment is a one-time purchase whose value is tracked against the
// running cost it displaces.
type Investment struct {
	ID                 int64
	UserID             string
	Name               string
	EmojiCode          string
	Category           string
	PurchasePrice      Money
	PurchaseDate       Date
	ComparisonBaseline Money
	Note               string
	Active             bool
	CreatedAt          time.Time
}

func (inv Investment) Validate() error {
	if strings.TrimSpace(inv.Name) == "" {
		return ErrEmptyName
	}
	if inv.PurchasePrice.Amount <= 0 {
		return ErrInvalidAmount
	}
	if inv.PurchaseDate.IsZero() {
		return ErrMissingStartDate
	}
	return nil
}

// InvestmentUsage is a single use of an investment. ActualPrice may be zero
// ("used the investment instead of paying"), and multiple usages per day are
// allowed.
type InvestmentUsage struct {
	ID            int64
	InvestmentID  int64
	UsedAt        Date
	ItemName      string
	OriginalPrice Money
	ActualPrice   Money
	Source        string
	Note          string
}

// Saved is the amount this usage avoided paying.
func (u InvestmentUsage) Saved() Money {
	return u.OriginalPrice.Sub(u.ActualPrice)
}

func (u InvestmentUsage) Validate() error {
	if strings.TrimSpace(u.ItemName) == "" {
		return ErrEmptyName
	}
	if u.OriginalPrice.IsNegative() || u.ActualPrice.IsNegative() {
		return ErrInvalidAmount
	}
	if u.UsedAt.IsZero() {
		return ErrMissingStartDate
	}
	return nil
}
