package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies application errors.
type ErrorCode string

const (
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeConfig           ErrorCode = "CONFIG_ERROR"
	CodeTransport        ErrorCode = "TRANSPORT_ERROR"
	CodeResponseFormat   ErrorCode = "RESPONSE_FORMAT"
	CodePersistenceParse ErrorCode = "PERSISTENCE_PARSE"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error code, a human-readable message and an
// optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidInputError reports malformed caller input.
func NewInvalidInputError(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewAlreadyExistsError reports a uniqueness violation.
func NewAlreadyExistsError(message string) *AppError {
	return &AppError{Code: CodeAlreadyExists, Message: message}
}

// NewConfigError reports a missing required credential or setting.
func NewConfigError(message string) *AppError {
	return &AppError{Code: CodeConfig, Message: message}
}

// NewTransportError reports a network failure or a non-success HTTP
// status from an external collaborator.
func NewTransportError(message string, cause error) *AppError {
	return &AppError{Code: CodeTransport, Message: message, Err: cause}
}

// NewResponseFormatError reports a success response that lacks the
// expected fields.
func NewResponseFormatError(message string, cause error) *AppError {
	return &AppError{Code: CodeResponseFormat, Message: message, Err: cause}
}

// NewPersistenceParseError reports a corrupt persisted state blob.
func NewPersistenceParseError(message string, cause error) *AppError {
	return &AppError{Code: CodePersistenceParse, Message: message, Err: cause}
}

// NewInternalError reports an unexpected internal failure.
func NewInternalError(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message}
}

func is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool         { return is(err, CodeNotFound) }
func IsInvalidInput(err error) bool     { return is(err, CodeInvalidInput) }
func IsConfig(err error) bool           { return is(err, CodeConfig) }
func IsTransport(err error) bool        { return is(err, CodeTransport) }
func IsResponseFormat(err error) bool   { return is(err, CodeResponseFormat) }
func IsPersistenceParse(err error) bool { return is(err, CodePersistenceParse) }
