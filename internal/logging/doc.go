// Package logging assembles structured slog loggers and formatting helpers used
// across echosurvey commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, stages, and the item being processed. WriteFailureLog
// produces the per-item error log files that later runs read back as "this
// observation failed" markers.
//
// Prefer these constructors over hand-rolled slog setup so every command emits
// records with the same shape.
package logging
