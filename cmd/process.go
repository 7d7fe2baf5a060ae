// =============================================================================
// FIDJI Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every FIDJI
// document found in the input directory.
//
// COMMAND USAGE:
//   fidjiconv process [flags]
//
// FLAGS:
//   --dry-run     : Read and validate only, write nothing
//   --pattern     : Glob for input files (default "*.xml")
//   --no-summary  : Skip the processing summary file
//
// PROCESSING PIPELINE:
//   1. Ensure the input, output and archive directories exist, and drop
//      archives past their retention
//   2. Discover input files
//   3. Convert files concurrently, at most max_concurrency at once, and
//      archive each converted file
//   4. Print and write the processing summary and the error log
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ginjaninja78/fidji-converter/internal/converter"
	"github.com/ginjaninja78/fidji-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun reads and validates without writing output files.
var dryRun bool

// inputPattern selects the input files.
var inputPattern string

// noSummary skips the summary file.
var noSummary bool

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every FIDJI document in the input directory",
	Long: `The process command scans the input directory for FIDJI documents and
rewrites each one into the output directory.

Files are converted concurrently and independently: a failure in one file does
not stop the others. A summary of the run is written to the output directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Read and validate files without writing output",
	)

	processCmd.Flags().StringVar(
		&inputPattern,
		"pattern",
		"*.xml",
		"Glob pattern for input files",
	)

	processCmd.Flags().BoolVar(
		&noSummary,
		"no-summary",
		false,
		"Do not write a processing summary file",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess converts all input files.
func runProcess(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	log := utils.Logger

	summary := utils.ProcessingSummary{StartTime: time.Now()}

	// =========================================================================
	// STEP 1: DIRECTORIES
	// =========================================================================

	fm := utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir)
	if !dryRun {
		fm.InputArchiveDir = appConfig.InputArchiveDir
		fm.OutputArchiveDir = appConfig.OutputArchiveDir
		fm.UseTimestampSubdirs = appConfig.ArchiveTimestampSubdirs
	}
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	if appConfig.ArchiveRetentionDays > 0 && !dryRun {
		maxAge := time.Duration(appConfig.ArchiveRetentionDays) * 24 * time.Hour
		for _, dir := range []string{fm.InputArchiveDir, fm.OutputArchiveDir} {
			removed, err := utils.CleanOldArchives(dir, maxAge)
			if err != nil {
				log.WithError(err).Warn("Failed to clean archives")
				continue
			}
			if removed > 0 {
				log.WithFields(logrus.Fields{"dir": dir, "removed": removed}).Info("Cleaned old archives")
			}
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := fm.DiscoverInputFiles(inputPattern)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No FIDJI files found in the input directory.")
		return nil
	}
	log.WithField("files", len(inputFiles)).Info("Discovered input files")

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// A buffered channel works as a semaphore bounding the goroutines that
	// convert at the same time.

	conv := newConverter()

	var wg sync.WaitGroup
	sem := make(chan struct{}, appConfig.MaxConcurrency)
	results := make(chan fileResult, len(inputFiles))

	for _, file := range inputFiles {
		wg.Add(1)
		go func(inPath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- processFile(conv, fm, inPath)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND GENERATE SUMMARY
	// =========================================================================

	var errs error
	var errorLog []utils.ErrorLogEntry
	for fr := range results {
		result := fr.Result
		summary.TotalFiles++
		name := filepath.Base(result.InputFile)
		errorLog = append(errorLog, issueEntries(result)...)

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.InputFile,
				ErrorMessage: result.Error.Error(),
			})
			errorLog = append(errorLog, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     result.InputFile,
				ErrorType:    "conversion_failed",
				ErrorMessage: result.Error.Error(),
			})
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, result.Error))
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalProperties += result.Stats.Properties
		summary.TotalUnits += result.Stats.Units
		summary.TotalLeases += result.Stats.Leases
		summary.ValidationWarnings += result.Stats.ValidationWarnings
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   result.InputFile,
			OutputFile:  result.OutputFile,
			ArchivePath: fr.ArchivePath,
			Period:      result.Stats.Period,
			Properties:  result.Stats.Properties,
			Units:       result.Stats.Units,
			Leases:      result.Stats.Leases,
			Warnings:    result.Stats.ValidationWarnings,
			ProcessTime: result.Stats.ProcessingTime,
		})

		target := result.OutputFile
		if target == "" {
			target = "(dry run)"
		}
		fmt.Fprintf(out, "  ✓ %s -> %s\n", name, target)
	}
	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Warnings:        %d\n", summary.ValidationWarnings)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if !noSummary && !dryRun {
		path, err := utils.WriteSummaryLog(summary, appConfig.OutputDir)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			log.WithField("path", path).Info("Wrote processing summary")
		}

		path, err = utils.WriteErrorLog(errorLog, appConfig.OutputDir)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if path != "" {
			log.WithField("path", path).Info("Wrote error log")
		}
	}

	if errs != nil {
		return fmt.Errorf("%d of %d file(s) failed: %w", summary.FailedFiles, summary.TotalFiles, errs)
	}
	return nil
}

// fileResult is the outcome of one file of the batch.
type fileResult struct {
	converter.Result

	// ArchivePath is where the input file was moved, if archiving is on.
	ArchivePath string
}

// processFile converts one file, or only checks it in a dry run. The output
// name is rendered once the period is known and reserved for this run, so two
// inputs never write the same file.
func processFile(conv *converter.Converter, fm *utils.FileManager, inPath string) fileResult {
	if dryRun {
		return fileResult{Result: dryRunFile(conv, inPath)}
	}

	result := conv.RunNamed(inPath, func(stats converter.ProcessingStats) (string, error) {
		path, renamed := fm.ReserveOutputPath(fm.OutputPath(appConfig.OutputFileFormat, map[string]string{
			"original": utils.BaseName(inPath),
			"period":   stats.Period,
		}))
		if renamed {
			utils.Logger.WithFields(logrus.Fields{
				"input":  inPath,
				"output": path,
			}).Warn("Output name already used in this run, added a suffix")
		}
		return path, nil
	})
	if !result.Success {
		return fileResult{Result: result}
	}

	// Archive failures are logged; the conversion itself succeeded.
	fr := fileResult{Result: result}
	archived, err := fm.ArchiveInputFile(inPath)
	if err != nil {
		utils.Logger.WithError(err).WithField("input", inPath).Warn("Failed to archive input file")
	}
	fr.ArchivePath = archived
	if _, err := fm.ArchiveOutputFile(result.OutputFile); err != nil {
		utils.Logger.WithError(err).WithField("output", result.OutputFile).Warn("Failed to archive output file")
	}
	return fr
}

// issueEntries turns the validation issues of a result into error log
// entries.
func issueEntries(result converter.Result) []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, 0, len(result.Issues))
	for _, issue := range result.Issues {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     result.InputFile,
			ErrorType:    "validation_" + issue.Severity,
			ErrorMessage: issue.Message,
			Rule:         issue.Rule,
			Entity:       issue.Entity,
		})
	}
	return entries
}

func dryRunFile(conv *converter.Converter, inPath string) converter.Result {
	start := time.Now()
	result := converter.Result{InputFile: inPath}

	c, check, err := conv.Inspect(inPath)
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats = converter.CountEntities(c)
	result.Stats.ValidationErrors = check.ErrorCount
	result.Stats.ValidationWarnings = check.WarningCount
	result.Stats.ProcessingTime = time.Since(start)
	result.Issues = check.Issues
	result.Success = check.IsValid
	if !check.IsValid {
		result.Error = fmt.Errorf("%w: %d error(s)", converter.ErrInvalidContainer, check.ErrorCount)
	}
	return result
}
