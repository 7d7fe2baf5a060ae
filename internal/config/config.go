// =============================================================================
// FIDJI Converter - Configuration Module
// =============================================================================
//
// This module loads the converter configuration from a YAML file. Every
// setting has a default, so the file only needs to list what differs.
//
// EXAMPLE (config.yaml):
//   log_level: info
//   creator: fidji-converter
//   stream_parameter: fidji-file
//   input_dir: ./input
//   output_dir: ./output
//   output_file_format: "{original}_{timestamp}.xml"
//   max_concurrency: 4
//   input_archive_dir: ./input_archive
//   output_archive_dir: ./output_archive
//   archive_retention_days: 30
//   writer:
//     indent: "  "
//     newline: "\r\n"
//     encoding: utf-8
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the converter configuration.
type Config struct {
	// LogLevel controls the verbosity of logging.
	// Valid values: "trace", "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`

	// Creator is recorded in the metadata of every container read.
	// Default: "fidji-converter"
	Creator string `yaml:"creator" validate:"required"`

	// StreamParameter is the only stream name the import and export workers
	// accept.
	// Default: "fidji-file"
	StreamParameter string `yaml:"stream_parameter" validate:"required"`

	// InputDir is scanned for *.xml files by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputDir receives the documents written by the process command.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// OutputFileFormat names output files. Placeholders:
	//   {original}  - input file name without extension
	//   {period}    - period identifier of the document
	//   {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - a random UUID
	// Default: "{original}.xml"
	OutputFileFormat string `yaml:"output_file_format" validate:"required"`

	// MaxConcurrency bounds the number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1,max=64"`

	// InputArchiveDir receives each input file after a successful
	// conversion. Default: "" (inputs stay in place)
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of each written document.
	// Default: "" (no copy)
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ArchiveTimestampSubdirs files archives under YYYY/MM/DD.
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// ArchiveRetentionDays removes archived files older than this many days
	// before a batch run. Default: 0 (keep everything)
	ArchiveRetentionDays int `yaml:"archive_retention_days" validate:"min=0"`

	Writer WriterSettings `yaml:"writer"`
}

// WriterSettings controls the layout of written documents.
type WriterSettings struct {
	// Indent is repeated once per nesting depth. Default: two spaces.
	Indent string `yaml:"indent" validate:"required"`

	// Newline precedes every element. Default: "\r\n".
	Newline string `yaml:"newline" validate:"newline"`

	// Encoding is declared in the XML header and used to encode the
	// document. Any WHATWG label is accepted. Default: "utf-8".
	Encoding string `yaml:"encoding" validate:"required,encoding"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates the configuration file.
//
// PARAMETERS:
//   - path: The path to the YAML file.
//
// RETURNS:
//   - A pointer to the Config struct, with defaults applied.
//   - An error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Creator == "" {
		cfg.Creator = "fidji-converter"
	}
	if cfg.StreamParameter == "" {
		cfg.StreamParameter = "fidji-file"
	}
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputFileFormat == "" {
		cfg.OutputFileFormat = "{original}.xml"
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Writer.Indent == "" {
		cfg.Writer.Indent = "  "
	}
	if cfg.Writer.Newline == "" {
		cfg.Writer.Newline = "\r\n"
	}
	if cfg.Writer.Encoding == "" {
		cfg.Writer.Encoding = "utf-8"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Only line breaks are accepted as element separators.
	_ = v.RegisterValidation("newline", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "\n", "\r\n":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("encoding", func(fl validator.FieldLevel) bool {
		_, err := htmlindex.Get(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("field %s fails %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value()))
	}
	return err
}
