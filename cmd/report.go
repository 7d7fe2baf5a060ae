// =============================================================================
// FIDJI Converter - Report Command
// =============================================================================
//
// This file defines the 'report' command, which exports the units and leases
// of a FIDJI document to an XLSX workbook.
//
// COMMAND USAGE:
//   fidjiconv report --in portfolio.xml --out portfolio.xlsx
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fidji-converter/internal/xlsxreport"
	"github.com/ginjaninja78/fidji-converter/pkg/utils"
)

var (
	reportIn  string
	reportOut string
)

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export a FIDJI document to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, check, err := newConverter().Inspect(reportIn)
		if err != nil {
			return err
		}
		for _, issue := range check.Issues {
			utils.Logger.Warn(issue.Error())
		}

		if err := xlsxreport.Save(reportOut, c); err != nil {
			return err
		}
		utils.Logger.WithField("path", reportOut).Info("Wrote report")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportIn, "in", "", "Input FIDJI file")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Output XLSX file")
	reportCmd.MarkFlagRequired("in")
	reportCmd.MarkFlagRequired("out")
}
