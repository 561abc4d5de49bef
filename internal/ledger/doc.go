// Package ledger keeps the run history of one survey in SQLite.
//
// Every pipeline command opens a run, records one item per file or date it
// touched (succeeded, failed with a reason class, or skipped), and closes
// the run with aggregate counts. The report command reads it back.
package ledger
