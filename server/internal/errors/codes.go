package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error type for opening-hours operations.
type ErrorCode string

const (
	// ErrCodeInvalidTimezone indicates the timezone identifier cannot be resolved.
	ErrCodeInvalidTimezone ErrorCode = "INVALID_TIMEZONE"
	// ErrCodeInvalidRangeFormat indicates a range string is not "HH:mm-HH:mm".
	ErrCodeInvalidRangeFormat ErrorCode = "INVALID_RANGE_FORMAT"
	// ErrCodeInvalidWeekday indicates an unknown weekday name.
	ErrCodeInvalidWeekday ErrorCode = "INVALID_WEEKDAY"
	// ErrCodeInvalidUnit indicates an unsupported duration unit.
	ErrCodeInvalidUnit ErrorCode = "INVALID_UNIT"
)

// HoursError represents a structured error for opening-hours operations.
type HoursError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *HoursError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *HoursError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *HoursError) WithContext(key string, value interface{}) *HoursError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *HoursError) GetCode() ErrorCode {
	return e.Code
}

// InvalidTimezone creates an invalid timezone error.
func InvalidTimezone(tz string, cause error) *HoursError {
	return &HoursError{
		Code:    ErrCodeInvalidTimezone,
		Message: fmt.Sprintf("invalid timezone %q", tz),
		Cause:   cause,
	}
}

// InvalidRangeFormat creates an invalid range format error.
func InvalidRangeFormat(day, raw string, cause error) *HoursError {
	return (&HoursError{
		Code:    ErrCodeInvalidRangeFormat,
		Message: fmt.Sprintf("invalid range %q for %s, want HH:mm-HH:mm", raw, day),
		Cause:   cause,
	}).WithContext("day", day).WithContext("range", raw)
}

// InvalidWeekday creates an invalid weekday error.
func InvalidWeekday(name string) *HoursError {
	return &HoursError{
		Code:    ErrCodeInvalidWeekday,
		Message: fmt.Sprintf("unknown weekday %q, want monday..sunday", name),
	}
}

// InvalidUnit creates an invalid unit error.
func InvalidUnit(unit string) *HoursError {
	return &HoursError{
		Code:    ErrCodeInvalidUnit,
		Message: fmt.Sprintf("unsupported duration unit %q", unit),
	}
}

// IsCode checks if an error, or any error it wraps, is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var hErr *HoursError
	if stderrors.As(err, &hErr) {
		return hErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a HoursError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var hErr *HoursError
	if stderrors.As(err, &hErr) {
		return hErr.Code
	}
	return defaultCode
}
