// =============================================================================
// FIDJI Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which rewrites a single FIDJI
// document.
//
// COMMAND USAGE:
//   fidjiconv convert --in portfolio.xml --out clean.xml
//   cat portfolio.xml | fidjiconv convert --in - --out -
//   fidjiconv convert --in portfolio.xml --out clean.xml --issues-log issues.txt
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fidji-converter/internal/converter"
	"github.com/ginjaninja78/fidji-converter/internal/validation"
	"github.com/ginjaninja78/fidji-converter/pkg/utils"
)

var (
	convertIn        string
	convertOut       string
	convertIssuesLog string
)

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one FIDJI document",
	Long: `Read a FIDJI document, check its cross references and write it back out
in canonical form. Use "-" for --in or --out to read stdin or write stdout.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		conv := newConverter()

		var result converter.Result
		if convertIn == "-" || convertOut == "-" {
			in, out, err := openStreams(cmd, convertIn, convertOut)
			if err != nil {
				return err
			}
			result = conv.Convert(in, out)
			// A partial document is not left behind.
			if !result.Success && convertOut != "-" {
				if err := os.Remove(convertOut); err != nil && !os.IsNotExist(err) {
					utils.Logger.WithError(err).Warn("failed to remove partial output")
				}
			}
		} else {
			result = conv.Run(convertIn, convertOut)
		}

		for _, issue := range result.Issues {
			fmt.Fprintln(cmd.ErrOrStderr(), issue.Error())
		}
		// Issues are only known once the document was read.
		if convertIssuesLog != "" && (result.Success || len(result.Issues) > 0) {
			if err := validation.WriteIssueLog(result.Issues, convertIn, convertIssuesLog); err != nil {
				return err
			}
		}
		if !result.Success {
			return result.Error
		}

		utils.Logger.WithFields(logrus.Fields{
			"period":   result.Stats.Period,
			"units":    result.Stats.Units,
			"leases":   result.Stats.Leases,
			"duration": result.Stats.ProcessingTime,
		}).Info("Conversion complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertIn, "in", "", "Input FIDJI file, or - for stdin")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "Output FIDJI file, or - for stdout")
	convertCmd.Flags().StringVar(&convertIssuesLog, "issues-log", "", "Write validation issues to this file")
	convertCmd.MarkFlagRequired("in")
	convertCmd.MarkFlagRequired("out")
}

// openStreams resolves "-" to the command's stdin/stdout. Standard streams
// are not closed by the workers.
func openStreams(cmd *cobra.Command, inPath, outPath string) (io.ReadCloser, io.WriteCloser, error) {
	var in io.ReadCloser
	if inPath == "-" {
		in = io.NopCloser(cmd.InOrStdin())
	} else {
		f, err := os.Open(inPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input file: %w", err)
		}
		in = f
	}

	if outPath == "-" {
		return in, nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		in.Close()
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return in, f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
