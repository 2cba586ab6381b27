package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shipperizer/internal/config"
	"shipperizer/internal/domain"
	"shipperizer/internal/repository/sqlite"
)

var (
	heading = color.New(color.FgHiGreen, color.Bold)
	subtle  = color.New(color.FgHiBlack)

	kindColors = map[domain.Kind]*color.Color{
		domain.KindLove:   color.New(color.FgRed, color.Bold),
		domain.KindHate:   color.New(color.FgWhite, color.Bold),
		domain.KindFriend: color.New(color.FgHiBlack),
	}
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the autosaved graph",
		RunE: func(cmd *cobra.Command, args []string) error {
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
				fmt.Fprintln(cmd.OutOrStdout(), "no autosave in", cfg.Database.Path)
				return nil
			}
			return printGraph(cmd.OutOrStdout(), *snap)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	return cmd
}

// loadAutosave reads the autosave from the configured database. It returns
// nil when nothing has been saved.
func loadAutosave(ctx context.Context, cfg *config.Config) (*domain.Snapshot, error) {
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load autosave: %w", err)
	}
	return snap, nil
}

// printGraph writes entities then relationships, one per line
func printGraph(w io.Writer, snap domain.Snapshot) error {
	heading.Fprintf(w, "Entities (%d)\n", len(snap.Entities))
	for _, e := range snap.Entities {
		fmt.Fprintf(w, "  %s ", e.ID)
		subtle.Fprintf(w, "(%.0f, %.0f)\n", e.Position.X, e.Position.Y)
	}

	heading.Fprintf(w, "Relationships (%d)\n", len(snap.Relationships))
	for _, r := range snap.Relationships {
		kind := domain.KindOf(r)
		c, ok := kindColors[kind]
		if !ok {
			c = subtle
		}

		var line string
		switch rel := r.(type) {
		case domain.Directed:
			line = fmt.Sprintf("%s -> %s", rel.Source, rel.Target)
		case domain.Merged:
			line = fmt.Sprintf("%s <-> %s", rel.A, rel.B)
		}
		fmt.Fprintf(w, "  %s %s ", kind.Symbol(), line)
		c.Fprintln(w, kind)
	}
	return nil
}
