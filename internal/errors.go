package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCost      ErrorCode = "INVALID_COST"
	ErrCodeInvalidMarkup    ErrorCode = "INVALID_MARKUP"
	ErrCodeInvalidRate      ErrorCode = "INVALID_EXCHANGE_RATE"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidBody      ErrorCode = "INVALID_REQUEST_BODY"

	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailAlreadyRegistered ErrorCode = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired           ErrorCode = "TOKEN_EXPIRED"
	ErrCodeMissingToken           ErrorCode = "MISSING_TOKEN"
	ErrCodeInsufficientRole       ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeRateLimited            ErrorCode = "RATE_LIMITED"

	ErrCodeSareeNotFound              ErrorCode = "SAREE_NOT_FOUND"
	ErrCodeProcurementNotFound        ErrorCode = "PROCUREMENT_NOT_FOUND"
	ErrCodeProcurementAlreadyReviewed ErrorCode = "PROCUREMENT_ALREADY_REVIEWED"
	ErrCodeReconciliationRequired     ErrorCode = "RECONCILIATION_REQUIRED"
	ErrCodeExchangeRateUnavailable    ErrorCode = "EXCHANGE_RATE_UNAVAILABLE"

	ErrCodeExpenseNotFound        ErrorCode = "EXPENSE_NOT_FOUND"
	ErrCodeInvalidExpenseStatus   ErrorCode = "INVALID_EXPENSE_STATUS"
	ErrCodeExpenseAlreadyRecorded ErrorCode = "EXPENSE_ALREADY_RECORDED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Code:       ErrCodeRateLimited,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrUserNotFound           = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrEmailAlreadyRegistered = NewConflictError("Email already registered", ErrCodeEmailAlreadyRegistered)
	ErrInvalidCredentials     = NewUnauthorizedError("Incorrect username or password", ErrCodeInvalidCredentials)
	ErrInvalidToken           = NewUnauthorizedError("Could not validate credentials", ErrCodeInvalidToken)
	ErrTokenExpired           = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrMissingToken           = NewUnauthorizedError("Missing authorization token", ErrCodeMissingToken)
	ErrInsufficientRole       = NewForbiddenError("The user does not have enough privileges", ErrCodeInsufficientRole)

	ErrSareeNotFound              = NewNotFoundError("Saree not found", ErrCodeSareeNotFound)
	ErrProcurementNotFound        = NewNotFoundError("Procurement record not found", ErrCodeProcurementNotFound)
	ErrProcurementAlreadyReviewed = NewConflictError("Procurement has already been reviewed", ErrCodeProcurementAlreadyReviewed)

	ErrExpenseNotFound        = NewNotFoundError("Expense not found", ErrCodeExpenseNotFound)
	ErrInvalidExpenseStatus   = NewValidationError("Invalid expense status", ErrCodeInvalidExpenseStatus)
	ErrExpenseAlreadyRecorded = NewConflictError("Expense already recorded for procurement", ErrCodeExpenseAlreadyRecorded)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
