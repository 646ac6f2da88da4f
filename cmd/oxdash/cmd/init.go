/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/oxdash/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an oxdash configuration file",
	Long: `Create a configuration file with a generated API key.

Examples:
  oxdash init
  oxdash init --data-dir ./data --deploy /home/lvuser/deploy --print-key
  oxdash init --config ./oxdash.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		deployDir, _ := cmd.Flags().GetString("deploy")
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		created, err := initializeConfig(configPath, dataDir, deployDir, force)
		if err != nil {
			return err
		}
		if created == nil {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cmd.Printf("✅ Configuration created at %s\n", configPath)
		if printKey {
			cmd.Printf("API Key: %s\n", created.Security.APIKey)
		}
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  oxdash serve --config %s\n", configPath)
		return nil
	},
}

// initializeConfig bootstraps configPath. It returns nil without error when
// the file exists and force is not set.
func initializeConfig(configPath, dataDir, deployDir string, force bool) (*config.Config, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, nil
	}
	created, err := config.BootstrapConfig(configPath, dataDir, deployDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	return created, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("data-dir", "./data", "Data directory for dashboard settings")
	initCmd.Flags().String("deploy", "", "Deploy directory containing config.json")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}
