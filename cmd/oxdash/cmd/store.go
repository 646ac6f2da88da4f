/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/oxdash/pkg/blobstore"
)

// storeCmd groups the settings store commands
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Save and load dashboard settings and layouts",
	Long: `Save and load named blobs in the private settings store under the data directory.

Examples:
  oxdash store save layout.json ./layout.json
  oxdash store load layout.json > layout.json
  oxdash store list
  oxdash store delete layout.json`,
}

var storeSaveCmd = &cobra.Command{
	Use:   "save <name> [file]",
	Short: "Save a blob from a file or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 2 && args[1] != "-" {
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer file.Close()
			in = file
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		return withStore(cmd, func(s *blobstore.Store) error {
			if err := s.Save(args[0], data); err != nil {
				return err
			}
			cmd.Printf("Saved %s (%d bytes)\n", args[0], len(data))
			return nil
		})
	},
}

var storeLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Write a stored blob to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *blobstore.Store) error {
			data, err := s.Load(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored blob names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *blobstore.Store) error {
			names, err := s.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *blobstore.Store) error {
			return s.Delete(args[0])
		})
	},
}

func withStore(cmd *cobra.Command, fn func(*blobstore.Store) error) error {
	dataDir := cfg.DataDir
	if cmd.Flags().Changed("data-dir") {
		dataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	s, err := container.OpenBlobStore(filepath.Join(dataDir, "store"))
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for dashboard settings")
	storeCmd.AddCommand(storeSaveCmd, storeLoadCmd, storeListCmd, storeDeleteCmd)
}
