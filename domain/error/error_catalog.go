package error

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for the authentication subsystem. The set is closed: every
// failure raised by the codec, the token service or the gate carries one of these.
const (
	// Credential presentation (1xxx)
	ErrCodeHeaderMissing   ErrorCode = "AUTH_1001"
	ErrCodeHeaderMalformed ErrorCode = "AUTH_1002"
	ErrCodeTokenMissing    ErrorCode = "AUTH_1003"

	// Access token verification (2xxx)
	ErrCodeTokenInvalid       ErrorCode = "AUTH_2001"
	ErrCodeTokenExpired       ErrorCode = "AUTH_2002"
	ErrCodeVerificationFailed ErrorCode = "AUTH_2003"

	// Refresh token verification (3xxx)
	ErrCodeRefreshTokenInvalid ErrorCode = "AUTH_3001"
	ErrCodeRefreshTokenExpired ErrorCode = "AUTH_3002"

	// Issuance (4xxx)
	ErrCodeIssuanceFailed ErrorCode = "AUTH_4001"

	// Codec level (5xxx)
	ErrCodeSignatureInvalid ErrorCode = "CODEC_5001"
	ErrCodeEncoding         ErrorCode = "CODEC_5002"
	ErrCodeSecretMissing    ErrorCode = "CODEC_5003"
)

// AppError represents a structured authentication error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code, so sentinel-style
// comparisons with errors.Is work against any instance of a kind.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// KindOf returns the code of the outermost AppError in err's chain, or "" when
// err carries none.
func KindOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return KindOf(err) == code
}

// Credential presentation errors
func ErrHeaderMissing() *AppError {
	return NewAppError(ErrCodeHeaderMissing, "Authorization header missing", nil)
}

func ErrHeaderMalformed() *AppError {
	return NewAppError(ErrCodeHeaderMalformed, "Invalid authorization header format", nil)
}

func ErrTokenMissing() *AppError {
	return NewAppError(ErrCodeTokenMissing, "Token missing in authorization header", nil)
}

// Access token errors
func ErrTokenInvalid(cause error) *AppError {
	return NewAppError(ErrCodeTokenInvalid, "Invalid access token", cause)
}

func ErrTokenExpired(cause error) *AppError {
	return NewAppError(ErrCodeTokenExpired, "Access token expired", cause)
}

func ErrVerificationFailed(cause error) *AppError {
	return NewAppError(ErrCodeVerificationFailed, "Token verification failed", cause)
}

// Refresh token errors
func ErrRefreshTokenInvalid(cause error) *AppError {
	return NewAppError(ErrCodeRefreshTokenInvalid, "Invalid refresh token", cause)
}

func ErrRefreshTokenExpired(cause error) *AppError {
	return NewAppError(ErrCodeRefreshTokenExpired, "Refresh token expired", cause)
}

func ErrIssuanceFailed(cause error) *AppError {
	return NewAppError(ErrCodeIssuanceFailed, "Failed to generate tokens", cause)
}

// Codec errors
func ErrSignatureInvalid(cause error) *AppError {
	return NewAppError(ErrCodeSignatureInvalid, "Token signature or structure invalid", cause)
}

func ErrEncoding(cause error) *AppError {
	return NewAppError(ErrCodeEncoding, "Token encoding failed", cause)
}

func ErrSecretMissing() *AppError {
	return NewAppError(ErrCodeSecretMissing, "Signing secret not configured", nil)
}
