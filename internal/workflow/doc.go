// Package workflow runs the survey pipelines: raw conversion, the summary
// CSV with ping-interval charts, daily echograms and ship tracks, and
// ten-day ship tracks.
//
// Every pipeline walks its files or dates in order and records one
// ItemResult per unit of work. A failing item is logged, written to the run
// ledger, and counted in metrics, and the run moves on to the next item;
// only setup failures (layout, summary file, configuration) end a run
// early. Runner methods return the Report for the caller to print.
package workflow
