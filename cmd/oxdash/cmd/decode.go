/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/ssargent/oxdash/pkg/logging"
	"github.com/ssargent/oxdash/pkg/timeseries"
)

type decodeOptions struct {
	summary bool
	format  string
	pretty  bool
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <log-file>",
	Short: "Decode a WPILOG file into a time series",
	Long: `Decode a WPILOG telemetry log into a key -> timestamp -> value series.
gzip and zstd compressed logs are detected automatically.

Examples:
  oxdash decode match.wpilog
  oxdash decode match.wpilog.zst --summary
  oxdash decode match.wpilog --format cbor --output match.cbor`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, _ := cmd.Flags().GetBool("summary")
		format, _ := cmd.Flags().GetString("format")
		pretty, _ := cmd.Flags().GetBool("pretty")
		output, _ := cmd.Flags().GetString("output")

		out := cmd.OutOrStdout()
		if output != "" && output != "-" {
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()
			out = file
		}

		return runDecode(out, args[0], decodeOptions{summary: summary, format: format, pretty: pretty})
	},
}

func runDecode(out io.Writer, path string, opts decodeOptions) error {
	logger := logging.Get("decode")
	start := time.Now()

	series, err := timeseries.ReadLog(path)
	if err != nil {
		return err
	}
	logger.Debug().
		Str("path", path).
		Int("keys", len(series)).
		Dur("duration", time.Since(start)).
		Msg("decoded log")

	var result any = series
	if opts.summary {
		result = timeseries.Summarize(series)
	}

	switch opts.format {
	case "", "json":
		enc := json.NewEncoder(out)
		if opts.pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(result)
	case "cbor":
		mode, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return err
		}
		return mode.NewEncoder(out).Encode(result)
	default:
		return fmt.Errorf("unsupported output format %q", opts.format)
	}
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Bool("summary", false, "Print per-key sample counts and time bounds instead of the series")
	decodeCmd.Flags().StringP("format", "f", "json", "Output format (json or cbor)")
	decodeCmd.Flags().Bool("pretty", false, "Indent JSON output")
	decodeCmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
}
