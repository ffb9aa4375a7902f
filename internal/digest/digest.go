// Package digest provides content hashing and manifest signing for package
// assets.
//
// Asset digests are streaming SHA-256 hex strings. Signing is expressed as a
// capability interface so builds without a signing chain can run unsigned.
package digest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSigningUnavailable indicates the configured signer cannot produce
// signatures (missing or invalid chain).
var ErrSigningUnavailable = errors.New("signing unavailable")

// Service computes content digests for asset files.
type Service interface {
	FileDigest(path string) (string, error)
}

// SHA256 is the default digest service.
type SHA256 struct{}

// FileDigest streams path through SHA-256 and returns the hex digest.
func (SHA256) FileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open asset for digest: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash asset %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Bytes returns the SHA-256 hex digest of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Signer signs manifest documents.
type Signer interface {
	// Valid reports whether the signer's certificate chain is usable.
	Valid() bool
	// Sign returns a detached signature over data.
	Sign(data []byte) ([]byte, error)
}

// KeySigner signs with HMAC-SHA256 over a shared key loaded from disk.
type KeySigner struct {
	key []byte
}

// NewKeySigner loads the key file at path. A missing or empty key yields a
// signer whose Valid reports false rather than an error, so callers can
// surface ErrSigningUnavailable at a convenient point.
func NewKeySigner(path string) *KeySigner {
	data, err := os.ReadFile(path)
	if err != nil {
		return &KeySigner{}
	}
	return &KeySigner{key: data}
}

// Valid reports whether a usable key was loaded.
func (s *KeySigner) Valid() bool {
	return len(s.key) > 0
}

// Sign returns the HMAC-SHA256 of data under the loaded key.
func (s *KeySigner) Sign(data []byte) ([]byte, error) {
	if !s.Valid() {
		return nil, ErrSigningUnavailable
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	return mac.Sum(nil), nil
}
