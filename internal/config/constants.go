package config

import "time"

// Application constants
const (
	AppName = "aqdaily"

	// EnvPrefix namespaces every environment override, e.g. AQ_SERVER_PORT.
	EnvPrefix = "AQ"
	// EnvConfigFile points at the YAML configuration file.
	EnvConfigFile = "AQ_CONFIG"

	DefaultDataDir        = "data"
	DefaultLogFile        = "logs/aqdaily.log"
	DefaultTimeResolution = "1Min"
	DefaultFetchTimeout   = 2 * time.Minute

	// Subdirectories of the data directory
	RawSubdir      = "raw"
	CleanSubdir    = "clean"
	AnalysisSubdir = "analysis"
	ReportsSubdir  = "reports"
	LogsSubdir     = "logs"

	// Source kinds
	SourceFile    = "file"
	SourceHTTPCSV = "http_csv"
)
