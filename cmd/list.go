package cmd

import (
	"fmt"

	"github.com/ecglab/recstore/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listYAML bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the recordings on the medium",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}

		entries, err := svc.List()
		if err != nil {
			return fmt.Errorf("listing failed: %w", err)
		}

		if listYAML {
			out, err := yaml.Marshal(entries)
			if err != nil {
				return fmt.Errorf("error marshaling entries: %w", err)
			}
			fmt.Print(string(out))
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %d bytes\n", e.Name, e.Size)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "emit the listing as YAML")
}
