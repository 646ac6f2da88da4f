/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/ssargent/oxdash/pkg/datalog"
	"github.com/ssargent/oxdash/pkg/value"
)

// synthPeriod is the sample spacing in microseconds (50 Hz).
const synthPeriod = 20000

// synthCmd represents the synth command
var synthCmd = &cobra.Command{
	Use:   "synth <out-file>",
	Short: "Write a synthetic WPILOG file",
	Long: `Write a synthetic telemetry log covering the common entry types. Useful for
exercising the decoder and dashboard without a robot.

Examples:
  oxdash synth sample.wpilog
  oxdash synth sample.wpilog.zst --samples 5000 --compress zstd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, _ := cmd.Flags().GetInt("samples")
		compress, _ := cmd.Flags().GetString("compress")

		file, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create log: %w", err)
		}
		defer file.Close()

		if err := writeCompressedSynthLog(file, samples, compress); err != nil {
			return err
		}
		cmd.Printf("Wrote %d samples per entry to %s\n", samples, args[0])
		return nil
	},
}

func writeCompressedSynthLog(w io.Writer, samples int, compress string) error {
	switch compress {
	case "", "none":
		return writeSynthLog(w, samples)
	case "gzip":
		gz := gzip.NewWriter(w)
		if err := writeSynthLog(gz, samples); err != nil {
			return err
		}
		return gz.Close()
	case "zstd":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := writeSynthLog(enc, samples); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported compression %q", compress)
	}
}

// writeSynthLog writes one log with a handful of NetworkTables and
// AdvantageKit style entries.
func writeSynthLog(w io.Writer, samples int) error {
	lw, err := datalog.NewWriter(w, "oxdash synth")
	if err != nil {
		return err
	}

	type entry struct {
		name string
		typ  string
		gen  func(i int) value.Variant
	}
	entries := []entry{
		{"NT:/SmartDashboard/Speed", datalog.TypeDouble, func(i int) value.Variant {
			return value.Double(math.Sin(float64(i) / 25))
		}},
		{"/DriveTrain/LeftVelocity", datalog.TypeFloat, func(i int) value.Variant {
			return value.Float(float32(i%100) / 10)
		}},
		{"/DriverStation/Enabled", datalog.TypeBoolean, func(i int) value.Variant {
			return value.Boolean(i%50 < 40)
		}},
		{"/DriverStation/MatchTime", datalog.TypeInt64, func(i int) value.Variant {
			return value.Int64(150 - i/50)
		}},
		{"/RealOutputs/Mode", datalog.TypeString, func(i int) value.Variant {
			if i < samples/2 {
				return value.String("auto")
			}
			return value.String("teleop")
		}},
		{"/RealOutputs/Odometry/Pose", datalog.TypeDoubleArray, func(i int) value.Variant {
			t := float64(i) / 50
			return value.DoubleArray{t, t / 2, math.Mod(t, 2*math.Pi)}
		}},
	}

	ids := make([]uint32, len(entries))
	for n, e := range entries {
		id, err := lw.Start(e.name, e.typ, "", 0)
		if err != nil {
			return err
		}
		ids[n] = id
	}

	for i := 0; i < samples; i++ {
		ts := uint64(i) * synthPeriod
		for n, e := range entries {
			if err := lw.Append(ids[n], ts, e.gen(i)); err != nil {
				return err
			}
		}
	}

	return lw.Flush()
}

func init() {
	rootCmd.AddCommand(synthCmd)
	synthCmd.Flags().Int("samples", 500, "Samples per entry")
	synthCmd.Flags().String("compress", "none", "Compression (none, gzip or zstd)")
}
