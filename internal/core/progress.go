package core

// LifetimeProgress compares how far a subscription is through its lifetime
// against how much of its usage goal has been met. A subscription used
// proportionally less than its elapsed lifetime falls behind and degrades
// status.
type LifetimeProgress struct {
	TotalMonths   int
	ElapsedMonths int

	// PeriodProgress is elapsed days over total days, floored, 0-100.
	PeriodProgress int

	MonthlyTarget     int
	TargetTotalUsage  int
	CurrentTotalUsage int

	// UsageProgress is current usage over the lifetime target, floored, 0-100.
	UsageProgress int

	Status        Tier
	StatusMessage string
}

const (
	statusMessageGood    = "잘 쓰는 중"
	statusMessageNormal  = "조금 더 사용하면 좋아요"
	statusMessageWarning = "더 가야 본전!"
)

// ProjectLifetime computes the lifetime progress of a subscription as of the
// given day. An open-ended subscription is projected over one year from its
// start date.
func ProjectLifetime(sub Subscription, totalUsage int, today Date) LifetimeProgress {
	start, end := sub.Lifetime()

	totalDays := DaysBetween(start, end)
	if totalDays < 1 {
		totalDays = 1
	}
	totalMonths := MonthsBetween(start, end)
	if totalMonths < 1 {
		totalMonths = 1
	}

	elapsedDays := clampInt(DaysBetween(start, today), 0, totalDays)
	elapsedMonths := clampInt(MonthsBetween(start, today), 0, totalMonths)

	// Floor division: progress only ticks over once a full percent has passed.
	periodProgress := clampInt(elapsedDays*100/totalDays, 0, 100)

	monthlyTarget := sub.MonthlyTarget()
	targetTotal := monthlyTarget * totalMonths

	usageProgress := 0
	if targetTotal > 0 {
		usageProgress = clampInt(totalUsage*100/targetTotal, 0, 100)
	}

	var status Tier
	var message string
	switch {
	case usageProgress >= periodProgress:
		status, message = TierGood, statusMessageGood
	case usageProgress >= periodProgress-20:
		status, message = TierNormal, statusMessageNormal
	default:
		status, message = TierWarning, statusMessageWarning
	}

	return LifetimeProgress{
		TotalMonths:       totalMonths,
		ElapsedMonths:     elapsedMonths,
		PeriodProgress:    periodProgress,
		MonthlyTarget:     monthlyTarget,
		TargetTotalUsage:  targetTotal,
		CurrentTotalUsage: totalUsage,
		UsageProgress:     usageProgress,
		Status:            status,
		StatusMessage:     message,
	}
}
