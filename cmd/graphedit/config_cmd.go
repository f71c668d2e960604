package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphedit/pkg/config"
)

func configCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var f config.Format
			switch format {
			case "yaml", "yml":
				f = config.FormatYAML
			case "toml":
				f = config.FormatTOML
			default:
				return fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
			}
			return cfg.Encode(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or toml")
	return cmd
}
