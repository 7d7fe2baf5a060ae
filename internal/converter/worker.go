package converter

import (
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
	"github.com/ginjaninja78/fidji-converter/internal/xmlreader"
	"github.com/ginjaninja78/fidji-converter/internal/xmlwriter"
)

var (
	// ErrMissingStream is returned when a worker configuration lacks the
	// stream parameter.
	ErrMissingStream = errors.New("missing stream in worker configuration")

	// ErrAlreadyLoaded is returned by a second Load on the same worker.
	ErrAlreadyLoaded = errors.New("worker already loaded")
)

// ImportWorkerConfiguration names the streams an Importer reads from.
type ImportWorkerConfiguration struct {
	Streams map[string]io.ReadCloser
}

// ExportWorkerConfiguration names the streams an Exporter writes to.
type ExportWorkerConfiguration struct {
	Streams map[string]io.WriteCloser
}

// =============================================================================
// IMPORTER
// =============================================================================

// Importer reads one FIDJI document into a container.
type Importer struct {
	plugin    *Plugin
	stream    io.ReadCloser
	loaded    bool
	container *model.Container
	assets    []*model.Property
}

// RequiredConfigurationArguments returns a configuration with every key the
// importer needs, mapped to nil.
func (im *Importer) RequiredConfigurationArguments() ImportWorkerConfiguration {
	return ImportWorkerConfiguration{
		Streams: map[string]io.ReadCloser{im.plugin.StreamParameter(): nil},
	}
}

// Load reads the document from the configured stream. The stream is kept
// open until Unload, even when the read fails.
//
// RETURNS:
//   - ErrMissingStream if the stream parameter is absent or nil.
//   - ErrAlreadyLoaded on a second call.
//   - A *fidji.Error describing the first read failure.
func (im *Importer) Load(cfg ImportWorkerConfiguration) error {
	if im.loaded {
		return ErrAlreadyLoaded
	}

	key := im.plugin.StreamParameter()
	stream, ok := cfg.Streams[key]
	if !ok || stream == nil {
		return fmt.Errorf("%w: %q", ErrMissingStream, key)
	}
	im.stream = stream
	im.loaded = true

	parser := xmlreader.NewParser(stream, im.plugin.settings.Reader)
	c, err := parser.Parse()
	if err != nil {
		return fmt.Errorf("failed to read FIDJI document: %w", err)
	}

	im.container = c
	im.assets = parser.Assets()
	return nil
}

// Container returns the container read by Load, or nil.
func (im *Importer) Container() *model.Container {
	return im.container
}

// Assets returns every asset read by Load in document order, including the
// ones no company references.
func (im *Importer) Assets() []*model.Property {
	return im.assets
}

// Unload closes the stream. Later calls do nothing.
func (im *Importer) Unload() error {
	if im.stream == nil {
		return nil
	}
	s := im.stream
	im.stream = nil
	return closeStream(s)
}

// =============================================================================
// EXPORTER
// =============================================================================

// Exporter writes one container as a FIDJI document.
type Exporter struct {
	plugin *Plugin
	stream io.WriteCloser
	loaded bool
}

// RequiredConfigurationArguments returns a configuration with every key the
// exporter needs, mapped to nil.
func (ex *Exporter) RequiredConfigurationArguments() ExportWorkerConfiguration {
	return ExportWorkerConfiguration{
		Streams: map[string]io.WriteCloser{ex.plugin.StreamParameter(): nil},
	}
}

// Load writes c to the configured stream.
//
// RETURNS:
//   - ErrMissingStream if the stream parameter is absent or nil.
//   - ErrAlreadyLoaded on a second call.
//   - fidji.ErrUnsupportedVersion if c carries a model version outside the
//     supported family.
//   - xmlwriter.ErrNoPeriod or a fidji.ErrStream error from the writer.
func (ex *Exporter) Load(cfg ExportWorkerConfiguration, c *model.Container) error {
	if ex.loaded {
		return ErrAlreadyLoaded
	}

	key := ex.plugin.StreamParameter()
	stream, ok := cfg.Streams[key]
	if !ok || stream == nil {
		return fmt.Errorf("%w: %q", ErrMissingStream, key)
	}
	ex.stream = stream
	ex.loaded = true

	if c != nil && c.Meta.Version != "" && !ex.plugin.IsModelVersionSupported(c.Meta.Version) {
		return fidji.Errorf(fidji.ErrUnsupportedVersion, "", "model version "+c.Meta.Version, nil)
	}

	if err := xmlwriter.WriteWithOptions(stream, c, ex.plugin.settings.Writer); err != nil {
		return fmt.Errorf("failed to write FIDJI document: %w", err)
	}
	return nil
}

// Unload closes the stream. Later calls do nothing.
func (ex *Exporter) Unload() error {
	if ex.stream == nil {
		return nil
	}
	s := ex.stream
	ex.stream = nil
	return closeStream(s)
}

func closeStream(c io.Closer) error {
	if err := c.Close(); err != nil {
		return fidji.Errorf(fidji.ErrStream, "", "close", err)
	}
	return nil
}
