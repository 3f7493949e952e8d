package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/proctoring-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound      = errors.New("proctoring session not found")
	ErrSessionAlreadyActive = errors.New("candidate already has an active proctoring session")
	ErrSessionNotActive     = errors.New("proctoring session is not active")
	ErrSessionNotPaused     = errors.New("proctoring session is not paused")
	ErrSessionTerminal      = errors.New("proctoring session already ended")
	ErrSessionNotCompleted  = errors.New("proctoring session is not completed")

	// Violation specific errors
	ErrInvalidViolationType = errors.New("invalid violation type")
	ErrViolationNotFound    = errors.New("violation not found")

	// Report / review specific errors
	ErrReportNotFound        = errors.New("session report not found")
	ErrInvalidReviewDecision = errors.New("invalid review decision")
	ErrReviewAlreadyDecided  = errors.New("session review already decided")

	// Alert specific errors
	ErrAlertNotFound            = errors.New("proctoring alert not found")
	ErrAlertAlreadyAcknowledged = errors.New("alert already acknowledged")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrViolationNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrAlertNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidViolationType) ||
		errors.Is(err, ErrInvalidReviewDecision) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionAlreadyActive) ||
		errors.Is(err, ErrSessionTerminal) ||
		errors.Is(err, ErrReviewAlreadyDecided) ||
		errors.Is(err, ErrAlertAlreadyAcknowledged)
}

// IsInvalidState checks if error represents an operation against a session in
// the wrong lifecycle state
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrSessionNotPaused) ||
		errors.Is(err, ErrSessionNotCompleted)
}
