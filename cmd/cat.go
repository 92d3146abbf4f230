package cmd

import (
	"fmt"
	"os"

	"github.com/ecglab/recstore/internal/service"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat [name]",
	Short: "Dump a recording's frames as CSV lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}

		if _, err := svc.Dump(args[0], os.Stdout); err != nil {
			return fmt.Errorf("readback failed: %w", err)
		}

		return nil
	},
}
