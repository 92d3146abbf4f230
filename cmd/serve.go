package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ecglab/recstore/internal/server"
	"github.com/ecglab/recstore/internal/service"

	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for remote control",
	Long: `Start the recstore HTTP server. It exposes status, enumeration,
readback, erase, and reset of the recording store on the local network.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == "" {
			port = cfg.Server.Port
		}

		svc, err := service.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}

		srv := server.New(svc, port)

		slog.Info("recstore server starting", "port", port, "mount", cfg.Storage.Mount)

		if err := srv.Start(); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port for the HTTP server (overrides config)")
}
