/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/oxdash/pkg/config"
	"github.com/ssargent/oxdash/pkg/di"
	"github.com/ssargent/oxdash/pkg/logging"
)

var (
	container *di.Container
	cfg       *config.Config
)

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oxdash",
	Short: "oxdash - robot telemetry dashboard backend",
	Long: `oxdash decodes WPILOG telemetry logs into time series and deploys
robot configuration with a monotonic timestamp guard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		loaded, err := config.LoadOrDefault(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Logging.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Logging.Format, _ = cmd.Flags().GetString("log-format")
		}
		cfg = loaded

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

		if container == nil {
			container = di.NewContainer()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default is ~/.config/oxdash/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console or json)")
}
