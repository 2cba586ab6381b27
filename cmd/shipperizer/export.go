package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shipperizer/internal/codec"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		output string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the autosaved graph as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := exporterFor(format)
			if err != nil {
				return err
			}

			cfg, _, err := root.loadConfig()
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}

			snap, err := loadAutosave(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if snap == nil {
				return fmt.Errorf("no autosave in %s", cfg.Database.Path)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return exporter.Export(*snap, w)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	return cmd
}

func exporterFor(format string) (codec.Exporter, error) {
	switch format {
	case "json":
		return codec.NewJSONCodec(), nil
	case "yaml", "yml":
		return codec.NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
