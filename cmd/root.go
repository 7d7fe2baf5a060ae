// =============================================================================
// FIDJI Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (fidjiconv)
//   ├── convertCmd (fidjiconv convert)
//   ├── processCmd (fidjiconv process)
//   ├── inspectCmd (fidjiconv inspect)
//   ├── reportCmd  (fidjiconv report)
//   └── versionCmd (fidjiconv version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration file (--config), or the defaults when the
//      default file is absent
//   2. Sets up logging (log_level, or debug with --verbose)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fidji-converter/internal/config"
	"github.com/ginjaninja78/fidji-converter/internal/converter"
	"github.com/ginjaninja78/fidji-converter/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the configuration loaded before every command.
var appConfig *config.Config

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fidjiconv",
	Short: "FIDJI Converter - Read, check and rewrite FIDJI real-estate XML",
	Long: `FIDJI Converter reads FIDJI 2.0 real-estate portfolio documents
(assets, buildings, units, leases and holding companies) into a normalized
model and writes them back out in canonical form.

Example Usage:
  fidjiconv convert --in portfolio.xml --out clean.xml
  fidjiconv process --config ./my.yaml
  fidjiconv inspect --in portfolio.xml
  fidjiconv report --in portfolio.xml --out portfolio.xlsx`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgFile, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		appConfig = cfg
		utils.InitLogger("fidjiconv", cfg.LogLevel, verbose)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig reads path. A missing file is only an error when the path was
// given explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if !explicit && !utils.FileExists(path) {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newConverter builds a converter from the loaded configuration.
func newConverter() *converter.Converter {
	settings := converter.SettingsFromConfig(appConfig, utils.Logger)
	return converter.New(converter.NewPlugin(settings))
}
