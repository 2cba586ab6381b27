package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipperizer/internal/config"
)

var version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "shipperizer",
		Short:        "Shipperizer maps who loves, hates and befriends whom",
		Long:         `Shipperizer serves an editable relationship graph between characters, with undo, autosave and JSON/YAML import and export.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search standard locations)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newExportCmd(opts))

	return root
}

// loadConfig reads the config named by --config, or searches for one
func (o *rootOptions) loadConfig() (*config.Config, string, error) {
	if o.configPath == "" {
		cfg, path, err := config.Load()
		if err != nil {
			return nil, path, fmt.Errorf("load config: %w", err)
		}
		return cfg, path, nil
	}
	cfg, path, err := config.LoadFromPath(o.configPath)
	if err != nil {
		return nil, path, fmt.Errorf("load config %s: %w", o.configPath, err)
	}
	return cfg, path, nil
}
