// Package services defines shared utilities consumed by the pipeline stages
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and item labels for
//     logging.
//   - Structured error markers plus the Wrap helper, and Classify, which
//     folds any item error into the report taxonomy (malformed name, missing
//     data, conversion, unexpected).
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across commands.
package services
