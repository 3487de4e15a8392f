package internal

import (
	"encoding/json"
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
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserInactive      ErrorCode = "USER_INACTIVE"
	ErrCodeEmailExists       ErrorCode = "EMAIL_EXISTS"
	ErrCodeUsernameExists    ErrorCode = "USERNAME_EXISTS"
	ErrCodeInvalidCredential ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken      ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired      ErrorCode = "TOKEN_EXPIRED"

	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleInactive       ErrorCode = "ROLE_INACTIVE"
	ErrCodeOwnRoleChange      ErrorCode = "CANNOT_CHANGE_OWN_ROLE"
	ErrCodeRoleChangeDenied   ErrorCode = "ROLE_CHANGE_DENIED"
	ErrCodeSuperAdminTarget   ErrorCode = "SUPERADMIN_PROTECTED"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeDepartmentInactive ErrorCode = "DEPARTMENT_INACTIVE"
	ErrCodeDepartmentCode     ErrorCode = "DEPARTMENT_CODE_EXISTS"
	ErrCodeNotMember          ErrorCode = "NOT_A_MEMBER"

	ErrCodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	ErrCodePasswordReuse    ErrorCode = "PASSWORD_REUSE"
	ErrCodeInvalidPassword  ErrorCode = "INVALID_CURRENT_PASSWORD"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
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
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
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

// Messages flattens validation details into one message per violated rule,
// for the errors[] slot of the response envelope.
func (e *AppError) Messages() []string {
	if details, ok := e.Details.([]string); ok && len(details) > 0 {
		return details
	}
	if ve, ok := e.Details.(ValidationErrors); ok && len(ve.Errors) > 0 {
		msgs := make([]string, len(ve.Errors))
		for i, err := range ve.Errors {
			msgs[i] = err.Message
		}
		return msgs
	}
	return []string{e.Message}
}

func (e *AppError) GetDetailedMessage() string {
	return strings.Join(e.Messages(), "; ")
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
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredential)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrRoleNotFound     = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrRoleInactive     = NewValidationError("Cannot assign inactive role", ErrCodeRoleInactive)
	ErrOwnRoleChange    = NewValidationError("You cannot change your own role", ErrCodeOwnRoleChange)
	ErrRoleChangeDenied = NewForbiddenError("You do not have permission to perform this action", ErrCodeRoleChangeDenied)
	ErrSuperAdminTarget = NewForbiddenError("Cannot change role of SuperAdmin", ErrCodeSuperAdminTarget)

	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrNotMember          = NewValidationError("User does not have this department", ErrCodeNotMember)

	ErrInvalidCurrentPassword = NewValidationError("The current password you entered is incorrect", ErrCodeInvalidPassword)
	ErrPasswordReuse          = NewValidationError("You cannot reuse a previously used password", ErrCodePasswordReuse)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
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
