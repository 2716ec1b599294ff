package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/tablegrab/internal/config"
	"github.com/example/tablegrab/internal/db"
	"github.com/example/tablegrab/internal/journal"
	"github.com/example/tablegrab/internal/migrate"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "history",
		Short: "List past campaigns from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for the journal")
			}

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			repo := journal.NewRepo(d, slog.Default())
			entries, err := repo.List(ctx, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				result := "running"
				if e.Result != nil {
					result = *e.Result
					if e.ResultDate != nil && *e.ResultDate != "" {
						result = fmt.Sprintf("%s (%s %s)", result, *e.ResultDate, deref(e.ResultTime))
					}
				}
				fmt.Fprintf(os.Stdout, "%s  %s  seats=%d  dates=%s  attempts=%d  %s\n",
					e.StartedAt.Format("2006-01-02 15:04"), e.ID, e.Seats, e.Dates, e.Attempts, result)
			}
			return nil
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "max campaigns to list")
	return c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
