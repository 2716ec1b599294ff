// Package credstore keeps the venue-site login encrypted at rest in
// Postgres, so a retry-heavy campaign box doesn't need plaintext credentials
// in its environment.
package credstore

import (
	"context"
	"time"

	"github.com/example/tablegrab/internal/db"
	"github.com/example/tablegrab/internal/venue"
)

type Store struct {
	db   *db.DB
	aead *aead
}

// New opens the store with a key derived from the CRED_KEY passphrase.
func New(d *db.DB, passphrase string) (*Store, error) {
	a, err := newAEAD(passphrase)
	if err != nil {
		return nil, err
	}
	return &Store{db: d, aead: a}, nil
}

// Set upserts the single credentials row, encrypting both fields.
func (s *Store) Set(ctx context.Context, creds venue.Credentials) error {
	emailEnc, err := s.aead.seal(creds.Email)
	if err != nil {
		return err
	}
	passwordEnc, err := s.aead.seal(creds.Password)
	if err != nil {
		return err
	}
	return s.db.Exec(ctx, `
INSERT INTO venue_credentials(id, email_enc, password_enc, updated_at)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET email_enc=$1, password_enc=$2, updated_at=$3`,
		emailEnc, passwordEnc, time.Now().UTC())
}

// Get decrypts and returns the stored login. db.ErrNotFound when none is set.
func (s *Store) Get(ctx context.Context) (venue.Credentials, error) {
	var emailEnc, passwordEnc string
	err := s.db.QueryRow(ctx,
		`SELECT email_enc, password_enc FROM venue_credentials WHERE id=1`,
	).Scan(&emailEnc, &passwordEnc)
	if err != nil {
		return venue.Credentials{}, db.WrapNotFound(err)
	}
	email, err := s.aead.open(emailEnc)
	if err != nil {
		return venue.Credentials{}, err
	}
	password, err := s.aead.open(passwordEnc)
	if err != nil {
		return venue.Credentials{}, err
	}
	return venue.Credentials{Email: email, Password: password}, nil
}
