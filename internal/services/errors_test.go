package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"echosurvey/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "convert", "decode", "failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"convert", "decode", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if err.Error() != "service failure" {
		t.Fatalf("unexpected message %q", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want services.FailureClass
	}{
		{services.Wrap(services.ErrMalformedName, "index", "", "bad", nil), services.ClassMalformedName},
		{fmt.Errorf("outer: %w", services.ErrMissingData), services.ClassMissingData},
		{services.Wrap(services.ErrExternalTool, "convert", "", "", nil), services.ClassConversion},
		{services.ErrTimeout, services.ClassConversion},
		{errors.New("anything"), services.ClassUnexpected},
	}
	for _, tt := range tests {
		if got := services.Classify(tt.err); got != tt.want {
			t.Fatalf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
