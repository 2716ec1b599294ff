package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/tablegrab/internal/campaign"
	"github.com/example/tablegrab/internal/config"
	"github.com/example/tablegrab/internal/credstore"
	"github.com/example/tablegrab/internal/db"
	"github.com/example/tablegrab/internal/journal"
	"github.com/example/tablegrab/internal/migrate"
	"github.com/example/tablegrab/internal/resy"
	"github.com/example/tablegrab/internal/venue"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a booking campaign until it books, hands off to a human, or gives up",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			plan, err := cfg.BuildPlan(time.Now())
			if err != nil {
				return err
			}
			if cfg.BookingURL == "" || cfg.VenueID == "" {
				return fmt.Errorf("BOOKING_URL and VENUE_ID are required")
			}

			log := slog.New(slog.NewTextHandler(os.Stderr, nil))

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client := resy.New(resy.Options{
				APIKey:      cfg.APIKey,
				VenueID:     cfg.VenueID,
				VenueURL:    cfg.BookingURL,
				SnapshotDir: cfg.SnapshotDir,
				Log:         log,
			})
			camp := campaign.New(client, log)

			var d *db.DB
			if cfg.DatabaseURL != "" {
				d, err = db.Open(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer d.Close()
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
				repo := journal.NewRepo(d, log)
				id, err := repo.Start(ctx, plan, cfg.BookingURL)
				if err != nil {
					return err
				}
				log.Info("journaling campaign", "id", id)
				camp.Recorder = repo
			}

			if !cfg.DevMode {
				creds, err := resolveCredentials(ctx, cfg, d)
				if err != nil {
					return err
				}
				log.Info("logging in", "email", creds.Email)
				if err := client.Login(ctx, creds); err != nil {
					return err
				}
			}

			log.Info("starting campaign",
				"venue", cfg.BookingURL,
				"seats", plan.Seats,
				"dates", fmt.Sprint(plan.Dates),
				"preferred", plan.PreferredTimes.String(),
				"allowed", plan.AllowedTimes.String())

			res, err := camp.Run(ctx, plan)
			if err != nil {
				return err
			}
			switch res.Kind {
			case campaign.ResultBooked:
				fmt.Fprintf(os.Stdout, "booked %s at %s, check your email to confirm\n", res.Date, res.Time)
			case campaign.ResultNeedsHuman:
				fmt.Fprintf(os.Stdout, "found %s at %s, a human has to finish the booking\n", res.Date, res.Time)
			default:
				fmt.Fprintln(os.Stdout, "no reservation found, gave up")
			}
			return nil
		},
	}
}

// resolveCredentials prefers the environment and falls back to the encrypted
// store when a database and CRED_KEY are configured.
func resolveCredentials(ctx context.Context, cfg config.Config, d *db.DB) (venue.Credentials, error) {
	if cfg.Email != "" && cfg.Password != "" {
		return venue.Credentials{Email: cfg.Email, Password: cfg.Password}, nil
	}
	if d == nil || cfg.CredKey == "" {
		return venue.Credentials{}, fmt.Errorf("EMAIL and PASSWORD are required (or store them via 'tablegrab credentials set')")
	}
	store, err := credstore.New(d, cfg.CredKey)
	if err != nil {
		return venue.Credentials{}, err
	}
	creds, err := store.Get(ctx)
	if err != nil {
		return venue.Credentials{}, fmt.Errorf("load stored credentials: %w", err)
	}
	return creds, nil
}
