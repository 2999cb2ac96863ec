package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v2"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
const ConfigFileEnv = "CONFIG_FILE"

// Load builds the configuration from defaults, the optional YAML file and
// the environment, then validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	v := reflect.ValueOf(cfg).Elem()

	if err := loadStruct(v, defaultValue); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := loadStruct(v, envValue); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadFile overlays a YAML document onto cfg. Keys absent from the file keep
// their current values.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// lookupFunc returns the raw value for a field, and whether one was found.
type lookupFunc func(field reflect.StructField) (string, bool)

func defaultValue(field reflect.StructField) (string, bool) {
	return field.Tag.Lookup("default")
}

func envValue(field reflect.StructField) (string, bool) {
	envName := field.Tag.Get("env")
	if envName == "" {
		return "", false
	}
	if value := os.Getenv(envName); value != "" {
		return value, true
	}
	if alt := field.Tag.Get("envAlt"); alt != "" {
		if value := os.Getenv(alt); value != "" {
			return value, true
		}
	}
	return "", false
}

// loadStruct recursively populates struct fields using lookup.
func loadStruct(v reflect.Value, lookup lookupFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		value, ok := lookup(field)
		if !ok {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", field.Tag.Get("env"), value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Source validation
	if strings.TrimSpace(c.Source.Path) == "" {
		errs = append(errs, "SOURCE_CSV must not be empty")
	}
	if c.Source.PriceColumn == "" {
		errs = append(errs, "PRICE_COLUMN must not be empty")
	}
	if utf8.RuneCountInString(c.Source.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("SOURCE_DELIMITER (%q) must be a single character", c.Source.Delimiter))
	} else if strings.ContainsAny(c.Source.Delimiter, "\"\r\n") {
		errs = append(errs, fmt.Sprintf("SOURCE_DELIMITER (%q) must not be a quote or newline", c.Source.Delimiter))
	}

	// Export validation
	if c.Export.Dir == "" {
		errs = append(errs, "EXPORT_DIR must not be empty")
	}
	for env, name := range map[string]string{
		"EXPORT_CSV_NAME":     c.Export.CSVName,
		"EXPORT_PARQUET_NAME": c.Export.ParquetName,
	} {
		if name == "" || strings.ContainsAny(name, `/\`) {
			errs = append(errs, fmt.Sprintf("%s (%q) must be a plain file name", env, name))
		}
	}
	validCodecs := map[string]bool{"none": true, "snappy": true, "gzip": true, "zstd": true}
	if !validCodecs[strings.ToLower(c.Export.ParquetCompression)] {
		errs = append(errs, fmt.Sprintf("EXPORT_PARQUET_COMPRESSION (%q) must be one of: none, snappy, gzip, zstd", c.Export.ParquetCompression))
	}

	// Database validation
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, "SQLITE_PATH is required when DB_DRIVER is sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when DB_DRIVER is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER (%q) must be one of: sqlite, postgres", c.Database.Driver))
	}
	if c.Database.Table == "" {
		errs = append(errs, "DB_TABLE must not be empty")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Source: {Path: %q, PriceColumn: %q}, ", c.Source.Path, c.Source.PriceColumn))
	b.WriteString(fmt.Sprintf("Export: {Dir: %q, Compression: %q}, ", c.Export.Dir, c.Export.ParquetCompression))
	url := ""
	if c.Database.URL != "" {
		url = "[MASKED]"
	}
	b.WriteString(fmt.Sprintf("Database: {Driver: %q, Path: %q, URL: %s, Table: %q}, ",
		c.Database.Driver, c.Database.Path, url, c.Database.Table))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
