// Package files owns the on-disk layout of aqdaily outputs.
//
//	raw/<manufacturer>_<device>_<start>_<end>.csv
//	clean/<manufacturer>_<device>_<start>_<end>.csv
//	analysis/<manufacturer>_<start>_<end>.csv
//	analysis/analysis_<start>_<end>.xlsx
//	reports/availability_<day>.json|.html|.txt
//
// Dates are YYYY-MM-DD. Manager builds paths and writes atomically;
// Discovery lists what exists; ReadLongCSV loads clean files back.
package files
