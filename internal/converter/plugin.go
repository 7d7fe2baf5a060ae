// =============================================================================
// FIDJI Converter - Plugin Module
// =============================================================================
//
// This module exposes the FIDJI format as a plugin: an identity, a supported
// model version family, and a pair of workers that move a model.Container in
// and out of named byte streams.
//
// WORKER LIFECYCLE:
//   1. Ask the worker for RequiredConfigurationArguments()
//   2. Fill in the stream under the configured stream parameter
//   3. Load() reads or writes the document
//   4. Unload() closes the stream (safe to call more than once)
//
// =============================================================================

package converter

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/fidji-converter/internal/config"
	"github.com/ginjaninja78/fidji-converter/internal/model"
	"github.com/ginjaninja78/fidji-converter/internal/xmlreader"
	"github.com/ginjaninja78/fidji-converter/internal/xmlwriter"
)

// Plugin identity.
const (
	PluginID      = "fidji"
	PluginVersion = "0.1a"
	PluginName    = "FIDJI-Plugin"

	// SupportedModelVersionPrefix is the model version family the workers
	// can produce and consume.
	SupportedModelVersionPrefix = "1-0.6."

	// DefaultStreamParameter names the single stream a worker accepts.
	DefaultStreamParameter = "fidji-file"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls the workers a Plugin hands out.
type Settings struct {
	// StreamParameter is the key workers look up in their configuration.
	// Default: "fidji-file"
	StreamParameter string

	Reader xmlreader.Options
	Writer xmlwriter.Options

	// Logger receives worker output. Default: discards.
	Logger logrus.FieldLogger
}

// DefaultSettings returns settings equivalent to an empty configuration file.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default(), nil)
}

// SettingsFromConfig maps a loaded configuration onto worker settings.
//
// PARAMETERS:
//   - cfg: The loaded configuration.
//   - logger: Shared logger; nil discards output.
func SettingsFromConfig(cfg *config.Config, logger logrus.FieldLogger) Settings {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	r := xmlreader.DefaultOptions()
	r.Creator = cfg.Creator
	r.Logger = logger

	w := xmlwriter.DefaultOptions()
	w.Indent = cfg.Writer.Indent
	w.Newline = cfg.Writer.Newline
	w.Encoding = cfg.Writer.Encoding
	w.Logger = logger

	return Settings{
		StreamParameter: cfg.StreamParameter,
		Reader:          r,
		Writer:          w,
		Logger:          logger,
	}
}

// =============================================================================
// PLUGIN
// =============================================================================

// Plugin describes the FIDJI format and creates its workers.
type Plugin struct {
	settings Settings
}

// NewPlugin creates a Plugin. Zero fields of s fall back to the defaults.
func NewPlugin(s Settings) *Plugin {
	d := DefaultSettings()
	if s.StreamParameter == "" {
		s.StreamParameter = d.StreamParameter
	}
	if s.Logger == nil {
		s.Logger = d.Logger
	}
	// Reader options without a clock were never set.
	if s.Reader.Now == nil {
		logger := s.Reader.Logger
		s.Reader = d.Reader
		s.Reader.Logger = logger
	}
	if s.Reader.Logger == nil {
		s.Reader.Logger = s.Logger
	}
	if s.Writer.Logger == nil {
		s.Writer.Logger = s.Logger
	}
	if s.Reader.Creator == "" {
		s.Reader.Creator = d.Reader.Creator
	}
	return &Plugin{settings: s}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return PluginID }

// Version returns the plugin version.
func (p *Plugin) Version() string { return PluginVersion }

// Name returns the human readable plugin name.
func (p *Plugin) Name() string { return PluginName }

// StreamParameter returns the stream key the workers accept.
func (p *Plugin) StreamParameter() string { return p.settings.StreamParameter }

// IsModelVersionSupported reports whether v belongs to the supported model
// version family.
func (p *Plugin) IsModelVersionSupported(v string) bool {
	return strings.HasPrefix(v, SupportedModelVersionPrefix)
}

// SupportedSubsets lists the data subsets the format carries.
func (p *Plugin) SupportedSubsets() []model.Subset {
	return []model.Subset{model.SubsetS51}
}

// ImportWorker returns a fresh worker that reads one document.
func (p *Plugin) ImportWorker() *Importer {
	return &Importer{plugin: p}
}

// ExportWorker returns a fresh worker that writes one document.
func (p *Plugin) ExportWorker() *Exporter {
	return &Exporter{plugin: p}
}
