// Package config provides centralized configuration management for aqdaily.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//   - Environment variables (highest priority)
//   - The YAML configuration file
//   - Default values (lowest priority)
//
// The file is taken from the --config flag, then AQ_CONFIG, then the first
// of aqdaily.yaml or configs/aqdaily.yaml that exists.
//
// # Environment Variables
//
// All environment variables follow the pattern AQ_<SECTION>_<FIELD>:
//
//	AQ_SERVER_PORT=8080
//	AQ_LOGGING_LEVEL=debug
//	AQ_ANALYSIS_TIME_RESOLUTION=15Min
//	AQ_UPLOAD_PROVIDER=s3
//	AQ_UPLOAD_S3_BUCKET=aq-archive
//
// Manufacturers are only read from the file.
//
// # Manufacturers
//
//	manufacturers:
//	  - name: Aeroqual
//	    recording_frequency_per_hour: 60
//	    timestamp_column: Time
//	    timestamp_format: "%d %b %Y %H:%M"
//	    fields:
//	      - {id: NO2, webid: "NO2(ppb)", included_analysis: true}
//	      - {id: PM2.5, webid: "PM2.5(mg/m3)", scale: 1000, included_analysis: true}
//	    devices:
//	      - {id: AQY872A, location: York}
//	    source:
//	      kind: file
//	      dir: drops/aeroqual
package config
