package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden        ErrorType = "FORBIDDEN"
	ErrorTypeConflict         ErrorType = "CONFLICT"
	ErrorTypeInvalidHierarchy ErrorType = "INVALID_HIERARCHY"
	ErrorTypeInternal         ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal         ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidPassword  ErrorCode = "INVALID_PASSWORD"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeCompanyNotFound    ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeTownNotFound       ErrorCode = "TOWN_NOT_FOUND"
	ErrCodeRegionNotFound     ErrorCode = "REGION_NOT_FOUND"
	ErrCodeCityNotFound       ErrorCode = "CITY_NOT_FOUND"
	ErrCodeTokenNotFound      ErrorCode = "TOKEN_NOT_FOUND"
	ErrCodeEdgeNotFound       ErrorCode = "HIERARCHY_EDGE_NOT_FOUND"

	ErrCodeEmailInUse        ErrorCode = "EMAIL_IN_USE"
	ErrCodeNameInUse         ErrorCode = "NAME_IN_USE"
	ErrCodeDuplicateEdge     ErrorCode = "DUPLICATE_HIERARCHY_EDGE"
	ErrCodeAlreadyDeleted    ErrorCode = "ALREADY_DELETED"
	ErrCodeAlreadyActive     ErrorCode = "ALREADY_ACTIVE"
	ErrCodeAlreadyConfirmed  ErrorCode = "TOKEN_ALREADY_CONFIRMED"
	ErrCodeAlreadyInState    ErrorCode = "ALREADY_IN_STATE"
	ErrCodeSelfEdge          ErrorCode = "SELF_REFERENCING_EDGE"
	ErrCodeCircularHierarchy ErrorCode = "CIRCULAR_HIERARCHY"

	ErrCodeInsufficientScope  ErrorCode = "INSUFFICIENT_SCOPE"
	ErrCodeSelfDelete         ErrorCode = "SELF_DELETE_FORBIDDEN"
	ErrCodeAdminTarget        ErrorCode = "ADMIN_TARGET_FORBIDDEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeUserDisabled       ErrorCode = "USER_DISABLED"
	ErrCodeUserDeleted        ErrorCode = "USER_DELETED"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeEmailDelivery ErrorCode = "EMAIL_DELIVERY_FAILED"
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInvalidHierarchyError covers self-referencing and cycle-introducing
// hierarchy edges. Duplicate edges are conflicts, not hierarchy violations.
func NewInvalidHierarchyError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidHierarchy,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
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

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is not active", ErrCodeUserInactive)
	ErrUserDisabled       = NewForbiddenError("User account is disabled", ErrCodeUserDisabled)
	ErrUserDeleted        = NewForbiddenError("User account is deleted", ErrCodeUserDeleted)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
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
