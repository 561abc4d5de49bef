package services_test

import (
	"context"
	"testing"

	"echosurvey/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "survey")
	ctx = services.WithItem(ctx, "SaKe-D20170720-T120000")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "survey" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if item, ok := services.ItemFromContext(ctx); !ok || item != "SaKe-D20170720-T120000" {
		t.Fatalf("unexpected item: %v %v", item, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithItem(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage")
	}
	if _, ok := services.ItemFromContext(ctx); ok {
		t.Fatal("expected no item")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
}
