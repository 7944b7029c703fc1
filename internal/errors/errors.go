package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/julianstephens/limitless/internal/logger"
)

// Request error kinds. Handlers map them to HTTP status codes with Status.
var (
	ErrInvalidRequest = stderrors.New("invalid request")
	ErrNotFound       = stderrors.New("not found")
	ErrConflict       = stderrors.New("conflict")
)

// requestError carries a caller-facing message while matching one of the kinds above.
type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Is(target error) bool { return target == e.kind }

// Invalid returns an error matching ErrInvalidRequest with the given message.
func Invalid(format string, args ...interface{}) error {
	return &requestError{kind: ErrInvalidRequest, msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an error matching ErrNotFound with the given message.
func NotFound(format string, args ...interface{}) error {
	return &requestError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Conflict returns an error matching ErrConflict with the given message.
func Conflict(format string, args ...interface{}) error {
	return &requestError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// Status maps an error to the HTTP status code that should be returned for it.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
