package cmd

import (
	"fmt"

	"github.com/ecglab/recstore/internal/service"

	"github.com/spf13/cobra"
)

var eraseCmd = &cobra.Command{
	Use:   "erase [name]",
	Short: "Remove a recording from the medium",
	Long: `Remove the named recording. Erased names are never reused within a
process; new recordings keep counting upward.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}

		removed, err := svc.Erase(args[0])
		if err != nil {
			return fmt.Errorf("erase failed: %w", err)
		}
		if !removed {
			return fmt.Errorf("no such recording: %s", args[0])
		}

		fmt.Printf("erased %s\n", args[0])

		return nil
	},
}
