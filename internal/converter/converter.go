// =============================================================================
// FIDJI Converter - Converter Module
// =============================================================================
//
// This module contains the file level conversion pipeline. It reads one FIDJI
// document through the import worker, checks it, and writes it back out
// through the export worker.
//
// CONVERSION PIPELINE:
//   1. Open the input file and load it with the import worker
//   2. Validate the container (cross references, period count)
//   3. Create the output file and load it with the export worker
//   4. Unload both workers
//
// CONCURRENCY:
//   A Converter keeps no per-file state, so one instance may run several
//   files at once. Each Run works on its own Container.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/ginjaninja78/fidji-converter/internal/model"
	"github.com/ginjaninja78/fidji-converter/internal/validation"
)

// ErrInvalidContainer is returned when validation reports errors.
var ErrInvalidContainer = errors.New("container failed validation")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// InputFile is the path to the input file that was processed.
	InputFile string

	// OutputFile is the path to the written file.
	// This is empty if processing failed.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Issues lists the validation findings, warnings included.
	Issues []*validation.Issue

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	Period      string
	Companies   int
	Properties  int
	Buildings   int
	Units       int
	Leases      int
	LeasedUnits int

	// ValidationErrors and ValidationWarnings count the validation issues
	// by severity.
	ValidationErrors   int
	ValidationWarnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// CountEntities tallies the entities reachable from c. Unresolved property
// placeholders are skipped.
func CountEntities(c *model.Container) ProcessingStats {
	var s ProcessingStats
	if c == nil {
		return s
	}
	if p := c.FirstPeriod(); p != nil {
		s.Period = p.Identifier
	}
	for _, period := range c.Periods {
		if period == nil || period.Data == nil {
			continue
		}
		for _, company := range period.Data.Companies {
			s.Companies++
			for _, prop := range company.Properties {
				if prop == nil {
					continue
				}
				s.Properties++
				s.Buildings += len(prop.Buildings)
				for _, b := range prop.Buildings {
					s.Units += len(b.Units)
				}
				s.Leases += len(prop.Leases)
				for _, l := range prop.Leases {
					s.LeasedUnits += len(l.LeasedUnits)
				}
			}
		}
	}
	return s
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter converts FIDJI files through a Plugin's workers.
type Converter struct {
	plugin *Plugin
	logger logrus.FieldLogger
}

// New creates a new Converter.
//
// PARAMETERS:
//   - plugin: Supplies the workers and their settings.
//
// RETURNS:
//   - A new Converter instance.
func New(plugin *Plugin) *Converter {
	return &Converter{
		plugin: plugin,
		logger: plugin.settings.Logger,
	}
}

// Plugin returns the plugin backing the converter.
func (cv *Converter) Plugin() *Plugin {
	return cv.plugin
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run converts inPath into outPath.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing. The output
//     file is removed again if writing fails.
func (cv *Converter) Run(inPath, outPath string) Result {
	return cv.RunNamed(inPath, func(ProcessingStats) (string, error) {
		return outPath, nil
	})
}

// OutputNamer picks the output path once the input has been imported and
// validated, so the name may depend on the document (its period, say).
type OutputNamer func(stats ProcessingStats) (string, error)

// RunNamed converts inPath into the file named by name.
//
// PROCESSING STEPS:
//   1. Import the input file
//   2. Validate the container
//   3. Ask name for the output path
//   4. Export to the output file
//   5. Unload both workers
func (cv *Converter) RunNamed(inPath string, name OutputNamer) (result Result) {
	startTime := time.Now()
	result = Result{InputFile: inPath}

	log := cv.logger.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"input":  inPath,
	})

	importer := cv.plugin.ImportWorker()
	exporter := cv.plugin.ExportWorker()

	defer func() {
		// Unload errors are reported even when the conversion itself
		// failed.
		if err := multierr.Combine(importer.Unload(), exporter.Unload()); err != nil {
			result.Error = multierr.Append(result.Error, fmt.Errorf("failed to unload workers: %w", err))
			result.Success = false
			result.OutputFile = ""
		}
		result.Stats.ProcessingTime = time.Since(startTime)
		if result.Error != nil {
			log.WithError(result.Error).Error("conversion failed")
		}
	}()

	// =========================================================================
	// STEP 1: IMPORT
	// =========================================================================

	log.Info("Processing file")

	in, err := os.Open(inPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open input file: %w", err)
		return result
	}

	importCfg := importer.RequiredConfigurationArguments()
	importCfg.Streams[cv.plugin.StreamParameter()] = in
	if err := importer.Load(importCfg); err != nil {
		result.Error = err
		return result
	}

	c := importer.Container()
	stats := CountEntities(c)
	log.WithFields(logrus.Fields{
		"period":     stats.Period,
		"companies":  stats.Companies,
		"properties": stats.Properties,
		"units":      stats.Units,
		"leases":     stats.Leases,
	}).Debug("Imported container")

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================
	// Warnings are logged and kept; errors stop the conversion.

	check := validation.Check(c, importer.Assets())
	stats.ValidationErrors = check.ErrorCount
	stats.ValidationWarnings = check.WarningCount
	result.Issues = check.Issues
	result.Stats = stats

	for _, issue := range check.Issues {
		log.WithFields(logrus.Fields{
			"rule":   issue.Rule,
			"entity": issue.Entity,
		}).Warn(issue.Message)
	}
	if !check.IsValid {
		result.Error = fmt.Errorf("%w: %d error(s)", ErrInvalidContainer, check.ErrorCount)
		return result
	}

	// =========================================================================
	// STEP 3: EXPORT
	// =========================================================================

	outPath, err := name(stats)
	if err != nil {
		result.Error = fmt.Errorf("failed to name output file: %w", err)
		return result
	}

	out, err := os.Create(outPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to create output file: %w", err)
		return result
	}

	exportCfg := exporter.RequiredConfigurationArguments()
	exportCfg.Streams[cv.plugin.StreamParameter()] = out
	if err := exporter.Load(exportCfg, c); err != nil {
		result.Error = multierr.Append(err, exporter.Unload())
		if rmErr := os.Remove(outPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.WithError(rmErr).Warn("failed to remove partial output")
		}
		return result
	}

	log.WithField("output", outPath).Info("Wrote output")

	result.OutputFile = outPath
	result.Success = true
	return result
}

// Convert reads a document from r and writes it to w without touching the
// file system. Both streams are closed. A nil stream fails with
// ErrMissingStream.
func (cv *Converter) Convert(r io.ReadCloser, w io.WriteCloser) (res Result) {
	startTime := time.Now()

	importer := cv.plugin.ImportWorker()
	exporter := cv.plugin.ExportWorker()
	defer func() {
		var unused error
		if !exporter.loaded && w != nil {
			unused = closeStream(w)
		}
		if err := multierr.Combine(importer.Unload(), exporter.Unload(), unused); err != nil {
			res.Error = multierr.Append(res.Error, err)
			res.Success = false
		}
		res.Stats.ProcessingTime = time.Since(startTime)
	}()

	importCfg := importer.RequiredConfigurationArguments()
	importCfg.Streams[cv.plugin.StreamParameter()] = r
	exportCfg := exporter.RequiredConfigurationArguments()
	exportCfg.Streams[cv.plugin.StreamParameter()] = w

	if w == nil {
		res.Error = fmt.Errorf("%w: nil output", ErrMissingStream)
		if r != nil {
			res.Error = multierr.Append(res.Error, closeStream(r))
		}
		return res
	}
	if err := importer.Load(importCfg); err != nil {
		res.Error = err
		return res
	}

	check := validation.Check(importer.Container(), importer.Assets())
	res.Issues = check.Issues
	res.Stats = CountEntities(importer.Container())
	res.Stats.ValidationErrors = check.ErrorCount
	res.Stats.ValidationWarnings = check.WarningCount
	if !check.IsValid {
		res.Error = fmt.Errorf("%w: %d error(s)", ErrInvalidContainer, check.ErrorCount)
		return res
	}

	if err := exporter.Load(exportCfg, importer.Container()); err != nil {
		res.Error = err
		return res
	}

	res.Success = true
	return res
}

// Inspect reads and validates inPath without writing anything.
//
// RETURNS:
//   - The container and its validation result.
//   - An error if the file cannot be opened, read or closed.
func (cv *Converter) Inspect(inPath string) (*model.Container, *validation.Result, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}

	importer := cv.plugin.ImportWorker()
	cfg := importer.RequiredConfigurationArguments()
	cfg.Streams[cv.plugin.StreamParameter()] = in

	err = importer.Load(cfg)
	if err = multierr.Append(err, importer.Unload()); err != nil {
		return nil, nil, err
	}

	c := importer.Container()
	return c, validation.Check(c, importer.Assets()), nil
}
