package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"soundmatch/internal/resolve"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes service context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, service, operation, message string, err error) error {
	detail := buildDetail(service, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify tags an engine or dependency error with the matching marker.
// Errors that already carry a marker are returned unchanged.
func Classify(service, operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case hasMarker(err):
		return err
	case errors.Is(err, resolve.ErrEmptyTitle):
		return Wrap(ErrValidation, service, operation, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrTimeout, service, operation, "", err)
	case resolve.IsUnavailable(err):
		return Wrap(ErrTransient, service, operation, "", err)
	default:
		return err
	}
}

// ExitCode maps an error to the process exit status the CLI reports.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return 2
	case errors.Is(err, ErrNotFound):
		return 3
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient), errors.Is(err, context.Canceled):
		return 4
	default:
		return 1
	}
}

func hasMarker(err error) bool {
	for _, marker := range []error{ErrValidation, ErrConfiguration, ErrNotFound, ErrTimeout, ErrTransient} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

func buildDetail(service, operation, message string) string {
	parts := make([]string, 0, 3)
	if service = strings.TrimSpace(service); service != "" {
		parts = append(parts, service)
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
