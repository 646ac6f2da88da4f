/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/oxdash/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the oxdash REST API server.

The server decodes uploaded logs, writes the deployed config through the
shared timestamp gate, stores dashboard settings and streams host events.
Authentication is enabled when an API key is configured. Browser requests
are accepted only from the server's own host and the allowed origins, and
config writes may only target the deploy directory or a subdirectory of it.

Examples:
  oxdash serve
  oxdash serve --port 5810 --bind 0.0.0.0 --deploy /home/lvuser/deploy
  oxdash serve --allow-origin http://localhost:5173
  oxdash serve --config ./oxdash.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cmd.Flags().Changed("deploy") {
			cfg.DeployDir, _ = cmd.Flags().GetString("deploy")
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}
		if cmd.Flags().Changed("allow-origin") {
			cfg.Security.AllowedOrigins, _ = cmd.Flags().GetStringSlice("allow-origin")
		}

		logger := container.Logger("server")

		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
		blobs, err := container.OpenBlobStore(filepath.Join(cfg.DataDir, "store"))
		if err != nil {
			return err
		}
		defer func() {
			if err := blobs.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close store")
			}
		}()

		if cfg.Security.APIKey == "" {
			logger.Warn().Msg("no API key configured; authentication is disabled")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverConfig := api.ServerConfig{
			Port:           cfg.Port,
			Bind:           cfg.Bind,
			APIKey:         cfg.Security.APIKey,
			DeployDir:      cfg.DeployDir,
			MaxLogBytes:    cfg.Decode.MaxLogBytes,
			AllowedOrigins: cfg.Security.AllowedOrigins,
		}

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, container.Gate(), blobs, container.Bus(), serverConfig, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 5810, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
	serveCmd.Flags().String("deploy", "", "Deploy directory containing config.json")
	serveCmd.Flags().StringP("data-dir", "d", "./data", "Data directory for dashboard settings")
	serveCmd.Flags().StringSlice("allow-origin", nil, "Browser origin allowed to call the API (repeatable)")
}
