package utils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends data as the response body
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// ValidationErrorResponse sends a 422 with the per field messages
func ValidationErrorResponse(c *fiber.Ctx, message string, errs map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationErrorStruct{
		ErrorResponseStruct: ErrorResponseStruct{
			Status:    fiber.StatusUnprocessableEntity,
			Message:   message,
			Ok:        false,
			Timestamp: timestamp(),
			URL:       c.OriginalURL(),
			Type:      "validation",
		},
		Errors: errs,
	})
}

// VersionErrorResponse sends a version conflict error (409)
func VersionErrorResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(ErrorResponseStruct{
		Status:       fiber.StatusConflict,
		Message:      "E_VERSION - Refresh and reconcile with current version and retry.",
		Ok:           false,
		VersionError: true,
		Timestamp:    timestamp(),
		URL:          c.OriginalURL(),
		Type:         "version",
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponseStruct{
		Status:    fiber.StatusNotFound,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      "not_found",
	})
}

// MutationSuccessResponse sends a success response for a versioned write
func MutationSuccessResponse(c *fiber.Ctx, newVersion uint64) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:    "Success",
		Ok:         true,
		NewVersion: fmt.Sprintf("%d", newVersion),
		Timestamp:  timestamp(),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status       int    `json:"status"`
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	URL          string `json:"url"`
	Type         string `json:"type,omitempty"`
	VersionError bool   `json:"versionError,omitempty"`
}

// ValidationErrorStruct defines the schema for validation failures
type ValidationErrorStruct struct {
	ErrorResponseStruct
	Errors map[string]string `json:"errors"`
}

// SuccessResponseStruct defines the schema for versioned write responses
type SuccessResponseStruct struct {
	Message    string `json:"message"`
	Ok         bool   `json:"ok"`
	NewVersion string `json:"newVersion"`
	Timestamp  string `json:"timestamp"`
}
