package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, never
// on the message, so existing values must not change.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeConflict         = "conflict"
	ErrCodeTooLarge         = "payload_too_large"
	ErrCodeRateLimited      = "too_many_requests" // emitted by middleware.RateLimiter
	ErrCodeInternal         = "internal_error"

	// Per-operation 5xx codes.
	ErrCodeImportFailed = "import_failed"
	ErrCodeCreateFailed = "create_failed"
	ErrCodeListFailed   = "list_failed"
	ErrCodeMaintenance  = "maintenance_failed"
	ErrCodeLoginFailed  = "login_failed"
)
