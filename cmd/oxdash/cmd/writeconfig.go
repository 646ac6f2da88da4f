/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/oxdash/pkg/api"
	"github.com/ssargent/oxdash/pkg/configsync"
)

// writeConfigCmd represents the write-config command
var writeConfigCmd = &cobra.Command{
	Use:   "write-config [payload-file]",
	Short: "Replace the deployed config.json if the timestamp is newer",
	Long: `Replace <deploy-dir>/config.json with the payload read from a file or stdin.
The write only happens if config.json already exists and the timestamp is newer
than the last accepted write. The outcome is printed as one of:
  success, time, no-exist, failed

With --raw the input is "<timestamp>,<payload>" and --timestamp is ignored.

Examples:
  oxdash write-config settings.json --deploy /home/lvuser/deploy
  echo '1700000000,{"maxSpeed":3.5}' | oxdash write-config --raw`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deployDir, _ := cmd.Flags().GetString("deploy")
		timestamp, _ := cmd.Flags().GetUint64("timestamp")
		raw, _ := cmd.Flags().GetBool("raw")

		if deployDir == "" {
			deployDir = cfg.DeployDir
		}
		if deployDir == "" {
			return fmt.Errorf("no deploy directory: pass --deploy or set deploy_dir in the config")
		}
		if !cmd.Flags().Changed("timestamp") {
			timestamp = uint64(time.Now().UnixMicro())
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open payload: %w", err)
			}
			defer file.Close()
			in = file
		}

		outcome, err := runWriteConfig(container.Gate(), deployDir, in, timestamp, raw)
		if err != nil {
			return err
		}
		cmd.Println(outcome)
		return nil
	},
}

func runWriteConfig(gate api.ConfigGate, deployDir string, in io.Reader, timestamp uint64, raw bool) (configsync.Outcome, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read payload: %w", err)
	}

	payload := data
	if raw {
		timestamp, payload, err = configsync.ParseStamped(string(data))
		if err != nil {
			return "", err
		}
	}

	return gate.Write(deployDir, payload, timestamp), nil
}

func init() {
	rootCmd.AddCommand(writeConfigCmd)
	writeConfigCmd.Flags().String("deploy", "", "Deploy directory containing config.json (defaults to deploy_dir from config)")
	writeConfigCmd.Flags().Uint64("timestamp", 0, "Write timestamp (defaults to now in microseconds)")
	writeConfigCmd.Flags().Bool("raw", false, "Input is \"<timestamp>,<payload>\"")
}
