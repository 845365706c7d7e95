package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldBudgetID      = "budget_id"
	FieldCategory      = "category_id"
	FieldSubcategory   = "subcategory"
	FieldAmount        = "amount"
	FieldLimit         = "limit"
	FieldPeriod        = "period"
	FieldPeriodKey     = "period_key"
	FieldQuery         = "query"
	FieldCount         = "count"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentBudget  = "budget"
	ComponentStorage = "storage"
	ComponentSeed    = "seed"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpUpsert   = "upsert"
	OpList     = "list"
	OpSearch   = "search"
	OpSeed     = "seed"
	OpReset    = "reset"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
