package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRequestID      = "request_id"
	FieldClientIP       = "client_ip"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldQuery          = "query"
	FieldStatusCode     = "status_code"
	FieldDuration       = "duration_ms"
	FieldUserAgent      = "user_agent"
	FieldSuccess        = "success"
	FieldError          = "error"
	FieldErrorType      = "error_type"
	FieldOperation      = "operation"
	FieldCategory       = "category"
	FieldDescription    = "expense_description"
	FieldAmountCents    = "amount_cents"
	FieldExpenseDate    = "expense_date"
	FieldLimitCents     = "limit_cents"
	FieldSpentCents     = "spent_cents"
	FieldRemainingCents = "remaining_cents"
	FieldOverBudget     = "over_budget"
	FieldAlertID        = "alert_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentTracker   = "tracker"
	ComponentAMQP      = "amqp"
	ComponentNotifier  = "notifier"
	ComponentConsole   = "console"
	ComponentReport    = "report"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpList      = "list"
	OpSetBudget = "set_budget"
	OpAlert     = "alert"
	OpExport    = "export"
	OpValidate  = "validate"
	OpParse     = "parse"
	OpRender    = "render"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(desc string, amountCents int64, category, date string) LogFields {
	f[FieldDescription] = desc
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	f[FieldExpenseDate] = date
	return f
}

// WithBudget adds budget-related fields
func (f LogFields) WithBudget(category string, limitCents, spentCents int64) LogFields {
	f[FieldCategory] = category
	f[FieldLimitCents] = limitCents
	f[FieldSpentCents] = spentCents
	f[FieldRemainingCents] = limitCents - spentCents
	f[FieldOverBudget] = spentCents > limitCents
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog. The component key is left
// out because Logger adds its own.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}
