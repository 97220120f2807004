package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a purpose-bound key from master key material using
// HKDF-SHA256. Different purposes (e.g. "key-encryption", "apikey-pepper")
// yield independent keys, so a single configured master secret can feed
// every subsystem without key reuse.
func DeriveKey(master []byte, purpose string, length int) ([]byte, error) {
	if len(master) == 0 {
		return nil, fmt.Errorf("cryptox: empty master key material")
	}
	if length <= 0 {
		return nil, fmt.Errorf("cryptox: key length must be positive, got %d", length)
	}

	r := hkdf.New(sha256.New, master, nil, []byte(purpose))

	key := make([]byte, length)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: hkdf expand: %w", err)
	}
	return key, nil
}

// MustDeriveKey is like DeriveKey but panics on error. Only use during
// application initialization.
func MustDeriveKey(master []byte, purpose string, length int) []byte {
	key, err := DeriveKey(master, purpose, length)
	if err != nil {
		panic(err)
	}
	return key
}
