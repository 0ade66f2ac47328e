// Package operations runs the daily pipeline as a sequence of steps.
//
// A run covers one Window, normally yesterday. The Manager executes the
// registered steps in order and stops at the first step that returns an
// error:
//
//	scrape   fetch, canonicalize and save every device; fill the ledger
//	report   render the availability ledger to log, text, HTML and JSON
//	process  assemble clean files into wide tables, resample and export
//
// Device and manufacturer failures inside a step are isolated: they are
// logged, counted in Prometheus and reflected in the availability report,
// but do not fail the step.
package operations
