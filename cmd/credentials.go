package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/tablegrab/internal/config"
	"github.com/example/tablegrab/internal/credstore"
	"github.com/example/tablegrab/internal/db"
	"github.com/example/tablegrab/internal/migrate"
	"github.com/example/tablegrab/internal/venue"
	"github.com/spf13/cobra"
)

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the stored venue-site login",
	}
	cmd.AddCommand(newCredentialsSetCmd())
	cmd.AddCommand(newCredentialsShowCmd())
	return cmd
}

func openStore(ctx context.Context) (*credstore.Store, *db.DB, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" || cfg.CredKey == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL and CRED_KEY are required for the credential store")
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	store, err := credstore.New(d, cfg.CredKey)
	if err != nil {
		d.Close()
		return nil, nil, err
	}
	return store, d, nil
}

func newCredentialsSetCmd() *cobra.Command {
	var email, password string

	c := &cobra.Command{
		Use:   "set",
		Short: "Store the venue-site login, encrypted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, d, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := store.Set(ctx, venue.Credentials{Email: email, Password: password}); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "stored credentials for %s\n", email)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "venue-site email")
	c.Flags().StringVar(&password, "password", "", "venue-site password")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func newCredentialsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show which login is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, d, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			creds, err := store.Get(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "stored login: %s\n", creds.Email)
			return nil
		},
	}
}
