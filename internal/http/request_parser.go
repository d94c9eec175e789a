// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: month/date extraction with sane defaults, method guards, and the
// form-to-domain converters used by the subscription and investment handlers.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"subtrack/internal/core"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// current date as defaults for anything missing or malformed.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now()
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}

	return params
}

// ParseSubscriptionForm converts a posted subscription form into a domain
// subscription. Amount fields accept thousands separators and a trailing
// currency suffix; optional fields left blank stay zero-valued.
func ParseSubscriptionForm(form url.Values, userID string) (core.Subscription, error) {
	sub := core.Subscription{
		UserID:      userID,
		Name:        sanitizeInput(form.Get("name")),
		EmojiCode:   sanitizeInput(form.Get("emoji_code")),
		PeriodLabel: sanitizeInput(form.Get("period_label")),
		Active:      true,
	}

	if v := strings.TrimSpace(form.Get("monthly_amount")); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return core.Subscription{}, err
		}
		sub.MonthlyAmount = amount
	}
	if v := strings.TrimSpace(form.Get("total_amount")); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return core.Subscription{}, err
		}
		sub.TotalAmount = amount
	}
	if v := strings.TrimSpace(form.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Subscription{}, err
		}
		sub.StartDate = d
	}
	if v := strings.TrimSpace(form.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Subscription{}, err
		}
		sub.EndDate = d
	}
	if v := strings.TrimSpace(form.Get("monthly_target")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Subscription{}, core.ErrInvalidTargetGoal
		}
		sub.MonthlyTargetUsage = n
	}

	return sub, nil
}

// ParseInvestmentForm converts a posted investment form into a domain
// investment.
func ParseInvestmentForm(form url.Values, userID string) (core.Investment, error) {
	inv := core.Investment{
		UserID:    userID,
		Name:      sanitizeInput(form.Get("name")),
		EmojiCode: sanitizeInput(form.Get("emoji_code")),
		Category:  sanitizeInput(form.Get("category")),
		Note:      sanitizeInput(form.Get("note")),
		Active:    true,
	}

	if v := strings.TrimSpace(form.Get("purchase_price")); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return core.Investment{}, err
		}
		inv.PurchasePrice = amount
	}
	if v := strings.TrimSpace(form.Get("purchase_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Investment{}, err
		}
		inv.PurchaseDate = d
	}
	if v := strings.TrimSpace(form.Get("comparison_baseline")); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return core.Investment{}, err
		}
		inv.ComparisonBaseline = amount
	}

	return inv, nil
}

// ParseInvestmentUsageForm converts a posted usage form into a domain usage
// record. The used_at field defaults to today when omitted; actual_price
// defaults to zero, meaning the purchase fully replaced the expense.
func ParseInvestmentUsageForm(form url.Values, today core.Date) (core.InvestmentUsage, error) {
	usage := core.InvestmentUsage{
		UsedAt:   today,
		ItemName: sanitizeInput(form.Get("item_name")),
		Source:   sanitizeInput(form.Get("source")),
		Note:     sanitizeInput(form.Get("note")),
	}

	if v := strings.TrimSpace(form.Get("investment_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return core.InvestmentUsage{}, core.ErrNotFound
		}
		usage.InvestmentID = id
	}
	if v := strings.TrimSpace(form.Get("used_at")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.InvestmentUsage{}, err
		}
		usage.UsedAt = d
	}
	if v := strings.TrimSpace(form.Get("original_price")); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return core.InvestmentUsage{}, err
		}
		usage.OriginalPrice = amount
	}
	if v := strings.TrimSpace(form.Get("actual_price")); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return core.InvestmentUsage{}, err
		}
		usage.ActualPrice = amount
	}

	return usage, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("요청 형식이 올바르지 않습니다")
	}
	return nil
}
