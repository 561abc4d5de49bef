// Package main hosts the echosurvey CLI entrypoint and command graph.
//
// Pipeline commands (convert, survey, daily, tenday) resolve a survey
// directory, take the survey's run lock, open the run ledger and metrics,
// and hand off to internal/workflow. Per-file failures are reported in the
// run summary and never change the exit status; only setup failures do.
// The report, doctor, and config commands are read-only.
package main
