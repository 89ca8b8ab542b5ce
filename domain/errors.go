// Package domain holds the error taxonomy shared by every stage of the
// document translation and clarification pipeline.
package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure so callers can decide how to react to it.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeImageProcessing ErrorType = "image_processing"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeRateLimited     ErrorType = "rate_limited"
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeService         ErrorType = "service"
	ErrorTypeMalformedOutput ErrorType = "malformed_output"
)

// Reasons carried inside validation and image processing errors.
var (
	ErrNoDocumentSelected = errors.New("no document selected")
	ErrDocumentTooLarge   = errors.New("document is too large")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrPDFNotSupported    = errors.New("pdf processing is not available")
	ErrEmptyText          = errors.New("document text is empty")
	ErrEmptyQuestion      = errors.New("question cannot be empty")
	ErrSourceUnavailable  = errors.New("source file does not exist")
)

// DomainError is a typed error with an optional HTTP status and cause.
type DomainError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure came from a condition that may clear
// on its own (rate limiting, flaky network).
func (e *DomainError) Transient() bool {
	return e.Type == ErrorTypeRateLimited || e.Type == ErrorTypeNetwork
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ImageProcessingError(message string, err error) *DomainError {
	return NewError(ErrorTypeImageProcessing, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func NetworkError(message string, err error) *DomainError {
	return NewError(ErrorTypeNetwork, message, err)
}

func MalformedOutputError(message string, err error) *DomainError {
	return NewError(ErrorTypeMalformedOutput, message, err)
}

func RateLimitedError(statusCode int, message string) *DomainError {
	e := NewError(ErrorTypeRateLimited, message, nil)
	e.StatusCode = statusCode
	return e
}

func ServiceError(statusCode int, message string, err error) *DomainError {
	e := NewError(ErrorTypeService, message, err)
	e.StatusCode = statusCode
	return e
}

// TypeOf returns the ErrorType of the first DomainError in err's chain, or ""
// when err carries none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether err carries a DomainError of the given type.
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsTransient reports whether err is a rate-limit or network failure.
func IsTransient(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Transient()
}

// UserMessage turns an error into the short, dismissible text shown to the
// patient. Configuration problems are not meant to reach this point, but
// still get a readable line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNoDocumentSelected):
		return "No document selected"
	case errors.Is(err, ErrDocumentTooLarge):
		return "Document is too large. Please select a file smaller than 10MB."
	case errors.Is(err, ErrUnsupportedType):
		return "Unsupported file type. Please select a PDF or image file (JPEG, PNG)."
	case errors.Is(err, ErrPDFNotSupported):
		return "PDF processing is not available. Please use the camera to scan individual pages of your document."
	case errors.Is(err, ErrEmptyText):
		return "The document does not contain any text to translate."
	case errors.Is(err, ErrEmptyQuestion):
		return "Please type a question first."
	case errors.Is(err, ErrSourceUnavailable):
		return "The selected image could not be found. Please pick it again."
	}

	var de *DomainError
	if !errors.As(err, &de) {
		return err.Error()
	}

	switch de.Type {
	case ErrorTypeImageProcessing:
		return "We couldn't prepare this image. Please try another photo."
	case ErrorTypeConfig:
		return "The app is not configured correctly: " + de.Message
	case ErrorTypeRateLimited:
		return "The service is busy right now. Please wait a moment and try again."
	case ErrorTypeNetwork:
		return "Network problem. Please check your connection and try again."
	case ErrorTypeService:
		return de.Message
	case ErrorTypeMalformedOutput:
		return "The response could not be read. Please try again."
	default:
		return de.Message
	}
}
