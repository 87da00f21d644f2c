// Package response provides helpers for consistent API responses.
package response

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Success sends a successful JSON response with the given data.
// The response will always include "error": false.
func Success(c echo.Context, data map[string]interface{}) error {
	resp := make(map[string]interface{})
	resp["error"] = false

	// Merge additional data
	for k, v := range data {
		resp[k] = v
	}

	return c.JSON(http.StatusOK, resp)
}

// Error sends an error JSON response with the given status code and message.
func Error(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// ErrorWithCode sends an error response with a specific error code.
// This is useful for clients that need to handle specific error types.
func ErrorWithCode(c echo.Context, statusCode int, code string, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"code":    code,
		"message": message,
	})
}

// Attachment sends binary data as a downloadable file.
func Attachment(c echo.Context, contentType string, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, data)
}
