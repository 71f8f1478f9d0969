package apperrors

// ErrorCode classifies application errors.
type ErrorCode string

const (
	// System and unknown failures.
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Generic business-logic codes.
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	CodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	// Authorization.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Messaging-specific.
	CodeTimeExpired ErrorCode = "TIME_EXPIRED"
)
