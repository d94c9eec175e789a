// Package log defines the shared vocabulary for structured logging: field
// names, component names, and operation names used as slog key/value pairs
// across the server, worker, and middleware.
package log

// Field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldYear      = "year"
	FieldMonth     = "month"

	FieldSubscription = "subscription"
	FieldInvestment   = "investment"
	FieldAmountWon    = "amount_won"
	FieldUsageDate    = "usage_date"
	FieldEventKind    = "event_kind"
)

// Component names.
const (
	ComponentHTTP         = "http"
	ComponentSubscription = "subscription"
	ComponentInvestment   = "investment"
	ComponentStatistics   = "statistics"
	ComponentStorage      = "storage"
	ComponentWorker       = "worker"
	ComponentExport       = "export"
)

// Operation names.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpToggle = "toggle"
	OpExport = "export"
)
