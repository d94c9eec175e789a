// Package core implements the value computation engine: amortized cost,
// break-even and progress metrics, the calendar grid, and the statistics
// report. Everything in this package is a pure function over snapshots the
// storage layer supplies; the current date is always an explicit parameter.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point amount with zero fractional digits (whole won).
// Division always rounds half-up, matching how displayed values were
// historically computed.
type Money struct {
	Amount int64
}

// Won is a convenience constructor.
func Won(amount int64) Money {
	return Money{Amount: amount}
}

func (m Money) Add(o Money) Money { return Money{Amount: m.Amount + o.Amount} }
func (m Money) Sub(o Money) Money { return Money{Amount: m.Amount - o.Amount} }

func (m Money) Abs() Money {
	if m.Amount < 0 {
		return Money{Amount: -m.Amount}
	}
	return m
}

func (m Money) IsZero() bool     { return m.Amount == 0 }
func (m Money) IsNegative() bool { return m.Amount < 0 }

// LessOrEqual reports m <= o.
func (m Money) LessOrEqual(o Money) bool { return m.Amount <= o.Amount }

// Div divides the amount by n, rounding half-up (half away from zero).
// Division by zero returns zero; callers guard the zero-usage case with an
// explicit branch before dividing.
func (m Money) Div(n int64) Money {
	return Money{Amount: divRoundHalfUp(m.Amount, n)}
}

func divRoundHalfUp(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	neg := (a < 0) != (b < 0)
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	q := a / b
	r := a % b
	if 2*r >= b {
		q++
	}
	if neg {
		return -q
	}
	return q
}

// ParseAmount converts a user-entered amount string to Money. Thousands
// separators (comma) and a trailing "원" are tolerated; a fractional part is
// rounded half-up to the nearest whole unit. Negative values are rejected.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "원"))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}

	v, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Half-up on the first fractional digit.
	if len(fracPart) > 0 && fracPart[0] >= '5' {
		v++
	}
	return Money{Amount: v}, nil
}

// Format renders the amount with thousands separators, e.g. "12,000".
func (m Money) Format() string {
	a := m.Amount
	neg := a < 0
	if neg {
		a = -a
	}
	s := strconv.FormatInt(a, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func (m Money) String() string { return m.Format() }
