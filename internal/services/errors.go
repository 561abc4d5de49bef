package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrMalformedName = errors.New("malformed file name")
	ErrMissingData   = errors.New("missing or unreadable data")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

// FailureClass names the error taxonomy used in run reports.
type FailureClass string

const (
	ClassMalformedName FailureClass = "malformed_name"
	ClassMissingData   FailureClass = "missing_data"
	ClassConversion    FailureClass = "conversion"
	ClassUnexpected    FailureClass = "unexpected"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an item error to its failure class.
func Classify(err error) FailureClass {
	switch {
	case errors.Is(err, ErrMalformedName):
		return ClassMalformedName
	case errors.Is(err, ErrMissingData):
		return ClassMissingData
	case errors.Is(err, ErrExternalTool), errors.Is(err, ErrTimeout):
		return ClassConversion
	default:
		return ClassUnexpected
	}
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
