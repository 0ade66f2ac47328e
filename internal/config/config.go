package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Run      RunConfig      `yaml:"run" envconfig:"RUN"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`

	Manufacturers []Manufacturer `yaml:"manufacturers" ignored:"true" validate:"dive"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	RawDir      string `yaml:"raw_dir" envconfig:"RAW_DIR"`
	CleanDir    string `yaml:"clean_dir" envconfig:"CLEAN_DIR"`
	AnalysisDir string `yaml:"analysis_dir" envconfig:"ANALYSIS_DIR"`
	ReportsDir  string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// AnalysisConfig controls wide assembly and resampling.
type AnalysisConfig struct {
	TimeResolution string `yaml:"time_resolution" envconfig:"TIME_RESOLUTION" validate:"required,resolution"`
	ExportXLSX     bool   `yaml:"export_xlsx" envconfig:"EXPORT_XLSX"`
}

// RunConfig controls worker fan-out.
type RunConfig struct {
	ManufacturerConcurrency int           `yaml:"manufacturer_concurrency" envconfig:"MANUFACTURER_CONCURRENCY" validate:"min=1"`
	DeviceConcurrency       int           `yaml:"device_concurrency" envconfig:"DEVICE_CONCURRENCY" validate:"min=1"`
	FetchTimeout            time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" validate:"gt=0"`
	SaveRaw                 bool          `yaml:"save_raw" envconfig:"SAVE_RAW"`
}

// UploadConfig selects where output files are copied after a run.
type UploadConfig struct {
	Provider string      `yaml:"provider" envconfig:"PROVIDER" validate:"oneof=none s3 drive"`
	S3       S3Config    `yaml:"s3" envconfig:"S3"`
	Drive    DriveConfig `yaml:"drive" envconfig:"DRIVE"`
}

// S3Config contains S3 bucket settings
type S3Config struct {
	Bucket   string `yaml:"bucket" envconfig:"BUCKET"`
	Prefix   string `yaml:"prefix" envconfig:"PREFIX"`
	Region   string `yaml:"region" envconfig:"REGION"`
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`
}

// DriveConfig contains Google Drive folder settings
type DriveConfig struct {
	CredentialsFile  string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	RawFolderID      string `yaml:"raw_folder_id" envconfig:"RAW_FOLDER_ID"`
	CleanFolderID    string `yaml:"clean_folder_id" envconfig:"CLEAN_FOLDER_ID"`
	AnalysisFolderID string `yaml:"analysis_folder_id" envconfig:"ANALYSIS_FOLDER_ID"`
	ReportFolderID   string `yaml:"report_folder_id" envconfig:"REPORT_FOLDER_ID"`
}

// TracingConfig contains OpenTelemetry settings
type TracingConfig struct {
	Exporter    string  `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=none stdout"`
	ServiceName string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" envconfig:"TEXTFILE_PATH"`
}

// ReportConfig controls availability report rendering.
type ReportConfig struct {
	ColumnWidth   int    `yaml:"column_width" envconfig:"COLUMN_WIDTH" validate:"min=1"`
	ScreenWidth   int    `yaml:"screen_width" envconfig:"SCREEN_WIDTH" validate:"min=1"`
	PassColour    string `yaml:"pass_colour" envconfig:"PASS_COLOUR"`
	WarningColour string `yaml:"warning_colour" envconfig:"WARNING_COLOUR"`
	FailColour    string `yaml:"fail_colour" envconfig:"FAIL_COLOUR"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or the first well-known location when path is empty), then AQ_*
// environment variables. Environment always wins.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize fills values derived from other settings.
func (c *Config) normalize() {
	c.Paths.resolve()
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	for i := range c.Manufacturers {
		c.Manufacturers[i].normalize()
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}

	locations := []string{
		"aqdaily.yaml",
		"configs/aqdaily.yaml",
		"../configs/aqdaily.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Manufacturer returns the named manufacturer.
func (c *Config) Manufacturer(name string) (*Manufacturer, bool) {
	for i := range c.Manufacturers {
		if c.Manufacturers[i].Name == name {
			return &c.Manufacturers[i], true
		}
	}
	return nil, false
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
		},
		Analysis: AnalysisConfig{
			TimeResolution: DefaultTimeResolution,
		},
		Run: RunConfig{
			ManufacturerConcurrency: 2,
			DeviceConcurrency:       4,
			FetchTimeout:            DefaultFetchTimeout,
			SaveRaw:                 true,
		},
		Upload: UploadConfig{
			Provider: "none",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: AppName,
			SampleRatio: 1.0,
		},
		Report: ReportConfig{
			ColumnWidth:   13,
			ScreenWidth:   100,
			PassColour:    "#c6efce",
			WarningColour: "#ffeb9c",
			FailColour:    "#ffc7ce",
		},
	}
}
