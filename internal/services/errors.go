package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrScriptExecution = errors.New("script execution error")
	ErrMissingOutput   = errors.New("missing output error")
	ErrCopy            = errors.New("copy error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails carries the user-facing portion of a wrapped stage error.
type ErrorDetails struct {
	Message string
}

var markerPrefixes = []string{
	ErrScriptExecution.Error(),
	ErrMissingOutput.Error(),
	ErrCopy.Error(),
	ErrValidation.Error(),
	ErrConfiguration.Error(),
	ErrTransient.Error(),
}

// Details strips the sentinel marker prefix from a wrapped error, leaving the
// stage/operation/message detail suitable for progress and status display.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	message := strings.TrimSpace(err.Error())
	for _, prefix := range markerPrefixes {
		if strings.HasPrefix(message, prefix+": ") {
			message = strings.TrimPrefix(message, prefix+": ")
			break
		}
	}
	return ErrorDetails{Message: message}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
