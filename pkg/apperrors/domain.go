package apperrors

import "net/http"

// Factories for the common domain errors. Services return these so handlers
// and tests can branch on the code without string matching.

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound).
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists reports a unique-constraint conflict. Callers that treat
// duplicate writes as success should absorb this rather than propagate it.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrStoreUnavailable wraps a backing-store transport failure. Always
// retryable by the caller.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(err, CodeStoreUnavailable, "store", "Backing store unavailable", http.StatusServiceUnavailable)
}

// ErrInvariantViolation reports an operation that would break a structural
// invariant (e.g. demoting the sole admin of a team).
func ErrInvariantViolation(domain, message string) *AppError {
	return New(CodeInvariantViolation, domain, message, http.StatusConflict)
}

// ErrTimeExpired reports an operation attempted outside its allowed window.
func ErrTimeExpired(domain, message string) *AppError {
	return New(CodeTimeExpired, domain, message, http.StatusForbidden)
}
