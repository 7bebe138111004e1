package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Keys are the independent HMAC keys derived from the configured secret.
type Keys struct {
	Cookie     []byte
	Navigation []byte
}

func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, fmt.Errorf("derive keys: empty secret")
	}
	cookie, err := expand(secret, "queryosity session cookie")
	if err != nil {
		return Keys{}, err
	}
	nav, err := expand(secret, "queryosity navigation state")
	if err != nil {
		return Keys{}, err
	}
	return Keys{Cookie: cookie, Navigation: nav}, nil
}

func expand(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}
