package apperrors

import "net/http"

// Factory functions for the domain error taxonomy. Keeping them here gives
// every service the same HTTP mapping for the same kind of failure.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound and
// friends) into a 404.
func ErrNotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrAlreadyExists is the uniqueness-violation flavor of 409.
func ErrAlreadyExists(domain, message string) *AppError {
	return New(CodeAlreadyExists, domain, message, http.StatusConflict)
}

// ErrConflict covers idempotency violations: already-reviewed application,
// already-used token, re-responding to an assignment.
func ErrConflict(domain, message string) *AppError {
	return New(CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation is a failed precondition: inactive personnel, event
// not completed, rating window elapsed.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus is a state-machine violation (400).
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// ErrTokenExpired marks a verification token past its expiry.
func ErrTokenExpired(domain, message string) *AppError {
	return New(CodeTokenExpired, domain, message, http.StatusBadRequest)
}

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)
