package types

import "fmt"

// CustomError is an error with the HTTP status and error type the global
// error handler renders. Err is the cause, when there is one.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Err     error  `json:"-"`
}

// NewCustomError formats a CustomError
func NewCustomError(code int, errorType, format string, args ...any) *CustomError {
	return &CustomError{Code: code, Message: fmt.Sprintf(format, args...), Type: errorType}
}

// Wrap records cause on the error and returns it
func (e *CustomError) Wrap(cause error) *CustomError {
	e.Err = cause
	return e
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}
