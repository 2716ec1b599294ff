package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// Fixed KDF salt: the store holds one secret per deployment, keyed by one
// passphrase, so a per-row salt buys nothing here.
var kdfSalt = []byte("tablegrab.credstore.v1")

type aead struct {
	gcm cipher.AEAD
}

// newAEAD derives a 32-byte AES-256-GCM key from the passphrase with scrypt.
func newAEAD(passphrase string) (*aead, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("empty passphrase")
	}
	key, err := scrypt.Key([]byte(passphrase), kdfSalt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aead{gcm: gcm}, nil
}

func (a *aead) seal(plaintext string) (string, error) {
	nonce := make([]byte, a.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := a.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.RawStdEncoding.EncodeToString(append(nonce, ct...)), nil
}

func (a *aead) open(ciphertextB64 string) (string, error) {
	buf, err := base64.RawStdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", err
	}
	ns := a.gcm.NonceSize()
	if len(buf) < ns {
		return "", fmt.Errorf("ciphertext too short")
	}
	pt, err := a.gcm.Open(nil, buf[:ns], buf[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
