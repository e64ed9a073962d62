// Package businessflow contains the core business logic and use cases for notification workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Draft-related errors
	ErrDraftNotSubmittable     = errors.New("title and description are required")
	ErrDraftSessionNotFound    = errors.New("draft session not found")
	ErrDraftSessionRequired    = errors.New("draft session is required")
	ErrDraftConflict           = errors.New("draft was modified concurrently")
	ErrDraftUpdateRequired     = errors.New("at least one field must be provided for update")
	ErrUnknownZone             = errors.New("unknown zone")
	ErrInvalidNotificationType = errors.New("invalid notification type")

	// Audience-related errors
	ErrInvalidSelectionMethod     = errors.New("invalid selection method")
	ErrInvalidUserType            = errors.New("invalid user type")
	ErrInvalidUserClassification  = errors.New("invalid user classification")
	ErrUserQueryRequired          = errors.New("please enter a valid SQL query first")
	ErrInvalidUserQuery           = errors.New("invalid user query")
	ErrEstimationNotSupported     = errors.New("audience estimation not supported for this selection method")
	ErrInvalidFilterQuantity      = errors.New("quantity must be between 1 and 100")
	ErrInvalidFilterAgeInDays     = errors.New("age in days must be between 1 and 365")
	ErrEstimateSessionUnavailable = errors.New("estimate session is unavailable")

	// Notification-related errors
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrNotificationUUIDRequired = errors.New("notification UUID is required")
	ErrMalformedNotification    = errors.New("notification is malformed")

	// Filter errors
	ErrInvalidPage      = errors.New("page must be at least 1")
	ErrInvalidPageSize  = errors.New("page size must be between 1 and 100")
	ErrInvalidStatus    = errors.New("status must be active or inactive")
	ErrInvalidTimestamp = errors.New("created_after and created_before must be RFC 3339 timestamps")
	ErrInvalidDateRange = errors.New("created_after must be before created_before")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsDraftNotSubmittable(err error) bool {
	return errors.Is(err, ErrDraftNotSubmittable)
}

func IsDraftSessionNotFound(err error) bool {
	return errors.Is(err, ErrDraftSessionNotFound)
}

func IsDraftSessionRequired(err error) bool {
	return errors.Is(err, ErrDraftSessionRequired)
}

func IsDraftConflict(err error) bool {
	return errors.Is(err, ErrDraftConflict)
}

func IsDraftUpdateRequired(err error) bool {
	return errors.Is(err, ErrDraftUpdateRequired)
}

func IsUnknownZone(err error) bool {
	return errors.Is(err, ErrUnknownZone)
}

func IsInvalidNotificationType(err error) bool {
	return errors.Is(err, ErrInvalidNotificationType)
}

func IsInvalidSelectionMethod(err error) bool {
	return errors.Is(err, ErrInvalidSelectionMethod)
}

func IsInvalidUserType(err error) bool {
	return errors.Is(err, ErrInvalidUserType)
}

func IsInvalidUserClassification(err error) bool {
	return errors.Is(err, ErrInvalidUserClassification)
}

func IsUserQueryRequired(err error) bool {
	return errors.Is(err, ErrUserQueryRequired)
}

func IsInvalidUserQuery(err error) bool {
	return errors.Is(err, ErrInvalidUserQuery)
}

func IsEstimationNotSupported(err error) bool {
	return errors.Is(err, ErrEstimationNotSupported)
}

func IsInvalidFilterQuantity(err error) bool {
	return errors.Is(err, ErrInvalidFilterQuantity)
}

func IsInvalidFilterAgeInDays(err error) bool {
	return errors.Is(err, ErrInvalidFilterAgeInDays)
}

func IsNotificationNotFound(err error) bool {
	return errors.Is(err, ErrNotificationNotFound)
}

func IsNotificationUUIDRequired(err error) bool {
	return errors.Is(err, ErrNotificationUUIDRequired)
}

func IsMalformedNotification(err error) bool {
	return errors.Is(err, ErrMalformedNotification)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsInvalidStatus(err error) bool {
	return errors.Is(err, ErrInvalidStatus)
}

func IsInvalidTimestamp(err error) bool {
	return errors.Is(err, ErrInvalidTimestamp)
}

func IsInvalidDateRange(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}

// IsValidationError reports whether err stems from operator input rather than infrastructure
func IsValidationError(err error) bool {
	return IsDraftUpdateRequired(err) ||
		IsUnknownZone(err) ||
		IsInvalidNotificationType(err) ||
		IsInvalidSelectionMethod(err) ||
		IsInvalidUserType(err) ||
		IsInvalidUserClassification(err) ||
		IsInvalidFilterQuantity(err) ||
		IsInvalidFilterAgeInDays(err) ||
		IsNotificationUUIDRequired(err) ||
		IsInvalidPage(err) ||
		IsInvalidPageSize(err) ||
		IsInvalidStatus(err) ||
		IsInvalidTimestamp(err) ||
		IsInvalidDateRange(err)
}
