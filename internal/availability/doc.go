// Package availability reports how much data survived validation.
//
// Device summaries are collected into a Ledger, one per run or per worker,
// and rendered as grids of "<count> (<pct>%)" cells. The grids can be
// printed as fixed-width text for logs or rendered as an HTML document.
package availability
