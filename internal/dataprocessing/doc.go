// Package dataprocessing turns vendor tables into analysis-ready matrices.
//
// # Architecture
//
// The package holds three pure stages that run in strict sequence:
//
// 1. Canonicalize: raw vendor rows to long-format (timestamp, measurand, value) records
// 2. Assemble: device-tagged long tables to a timestamp x "<measurand>_<device>" matrix
// 3. Resample: a wide matrix re-binned onto fixed windows anchored at midnight
//
// # Usage
//
//	long, summary, err := dataprocessing.Canonicalize(raw, cfg)
//	if err != nil {
//	    return err
//	}
//	long.DeviceID = device.ID
//
//	wide, err := dataprocessing.Assemble(tables, measurands, devices)
//	if err != nil {
//	    return err
//	}
//
//	resampled, err := dataprocessing.Resample(wide, "1Min")
//	if errors.IsResampling(err) {
//	    // keep the unresampled table
//	}
//
// # Missing Data
//
// Missing values are never zero and never interpolated. domain.Cell carries
// an explicit Valid flag and renders as an empty CSV cell when absent.
//
// # Error Handling
//
// Failures are typed AppErrors: VALIDATION from Canonicalize, CONVERSION from
// Assemble and RESAMPLING from Resample. Rows with unparseable timestamps and
// non-numeric cells are skipped and show up only in the ValidationSummary.
package dataprocessing
