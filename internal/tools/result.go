package tools

import (
	"errors"
	"fmt"

	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

// Result is the outcome of a tool or resource call. Exactly one of Text and
// Error is set.
type Result struct {
	Text  string
	Error string
}

// OK wraps a successful result text.
func OK(text string) Result {
	return Result{Text: text}
}

// Fail wraps a user-facing error message.
func Fail(msg string) Result {
	if msg == "" {
		msg = "Unknown error"
	}
	return Result{Error: msg}
}

// Failf formats a user-facing error message.
func Failf(format string, args ...any) Result {
	return Fail(fmt.Sprintf(format, args...))
}

// IsError reports whether the result carries an error message.
func (r Result) IsError() bool {
	return r.Error != ""
}

// Message returns whichever of Text or Error is set.
func (r Result) Message() string {
	if r.IsError() {
		return r.Error
	}
	return r.Text
}

// failErr turns a request helper error into a result. Request helper errors
// already carry their user-facing text.
func failErr(err error) Result {
	return Fail(err.Error())
}

// isAPIError reports whether err came from a non-2xx upstream response.
func isAPIError(err error) bool {
	var apiErr *youtube.APIError
	return errors.As(err, &apiErr)
}
