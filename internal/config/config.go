// Package config provides centralized configuration for the batch jobs.
// Settings come from struct-tag defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
// The defaults reproduce the fixed paths the jobs have always used, so both
// binaries run without any configuration at all.
package config

// Config holds all application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Export   ExportConfig   `yaml:"export"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourceConfig describes the delimited text file both jobs read.
type SourceConfig struct {
	// Path is resolved relative to the working directory
	Path string `yaml:"path" env:"SOURCE_CSV" default:"data/car_price_dataset_medium.csv"`

	// PriceColumn is the numeric field summarized by the profile job
	PriceColumn string `yaml:"price_column" env:"PRICE_COLUMN" default:"Price_USD"`

	// Delimiter is a single character (default: ",")
	Delimiter string `yaml:"delimiter" env:"SOURCE_DELIMITER" default:","`
}

// ExportConfig holds the profile job's output settings.
type ExportConfig struct {
	// Dir is created with all parents if missing (default: data/processed)
	Dir string `yaml:"dir" env:"EXPORT_DIR" default:"data/processed"`

	CSVName     string `yaml:"csv_name" env:"EXPORT_CSV_NAME" default:"car_prices_clean.csv"`
	ParquetName string `yaml:"parquet_name" env:"EXPORT_PARQUET_NAME" default:"car_prices_clean.parquet"`

	// ParquetCompression is one of: none, snappy, gzip, zstd (default: snappy)
	ParquetCompression string `yaml:"parquet_compression" env:"EXPORT_PARQUET_COMPRESSION" default:"snappy"`
}

// DatabaseConfig holds the relationalize job's target settings.
type DatabaseConfig struct {
	// Driver is sqlite or postgres (default: sqlite)
	Driver string `yaml:"driver" env:"DB_DRIVER" default:"sqlite"`

	// Path is the SQLite file, resolved relative to the working directory
	Path string `yaml:"path" env:"SQLITE_PATH" default:"data/car_prices.db"`

	// URL is the PostgreSQL connection string, required when Driver is postgres.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `yaml:"url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table is replaced on every run (default: car_prices)
	Table string `yaml:"table" env:"DB_TABLE" default:"car_prices"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Delim returns the source delimiter as a rune.
func (c *SourceConfig) Delim() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}
