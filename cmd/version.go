// =============================================================================
// FIDJI Converter - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version, the plugin identity and build information.
//
// COMMAND USAGE:
//   fidjiconv version
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fidji-converter/internal/converter"
	"github.com/ginjaninja78/fidji-converter/internal/fidji"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/fidji-converter/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, plugin identity, supported formats and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		p := converter.NewPlugin(converter.DefaultSettings())
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "FIDJI Converter")
		fmt.Fprintf(out, "Version:       %s\n", Version)
		fmt.Fprintf(out, "Build Date:    %s\n", BuildDate)
		fmt.Fprintf(out, "Plugin:        %s %s (%s)\n", p.Name(), p.Version(), p.ID())
		fmt.Fprintf(out, "FIDJI Format:  %s\n", fidji.FormatVersion)
		fmt.Fprintf(out, "Model Version: %s*\n", converter.SupportedModelVersionPrefix)
		fmt.Fprintf(out, "Subsets:       %v\n", p.SupportedSubsets())
		fmt.Fprintf(out, "Go Version:    %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
