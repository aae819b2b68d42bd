package log

// Attribute keys.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldReferer     = "referer"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldAnchor      = "anchor"
	FieldHorizon     = "horizon"
	FieldRecordCount = "record_count"
	FieldFinalWealth = "final_wealth"
	FieldMessageID   = "message_id"
	FieldSheetsRange = "sheets_range"
)

// Component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentProjection = "projection"
	ComponentImport     = "import"
	ComponentWorker     = "worker"
	ComponentCache      = "cache"
	ComponentSecurity   = "security"
	ComponentScheduler  = "scheduler"
)

// Operation names.
const (
	OpLoad      = "load"
	OpProject   = "project"
	OpBaseline  = "baseline"
	OpSummarize = "summarize"
	OpImport    = "import"
	OpExport    = "export"
	OpStartup   = "startup"
)

// LogFields builds attribute lists for the HTTP and projection log lines.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithProjection records the anchor, horizon and final cumulative wealth.
func (f LogFields) WithProjection(anchor string, horizon int, finalWealth int64) LogFields {
	f[FieldAnchor] = anchor
	f[FieldHorizon] = horizon
	f[FieldFinalWealth] = finalWealth
	return f
}

// WithHTTPRequest records the request line; empty agent and referer are kept.
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens f into slog key/value arguments.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
