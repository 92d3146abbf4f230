package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ecglab/recstore/internal/service"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record [input-file]",
	Short: "Create a new recording from sample frames",
	Long: `Create a new recording and append one frame per input line.

Each line is a comma-separated list of float samples, at most 255 per
frame. Input comes from the given file, or from stdin when no file is
named. The chosen recording name is printed on completion.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()
			in = f
		}

		svc, err := service.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}

		name, frames, err := svc.Record(in)
		if err != nil {
			return fmt.Errorf("recording failed: %w", err)
		}

		slog.Debug("recording complete", "name", name, "frames", frames)
		fmt.Printf("%s (%d frames)\n", name, frames)

		return nil
	},
}
