// Package exporter writes pipeline tables to disk.
//
// CSVWriter handles raw vendor tables, clean long tables and wide analysis
// tables; XLSXWriter puts resampled tables into a workbook with one sheet
// per manufacturer. Missing wide-table cells are always written empty.
package exporter
