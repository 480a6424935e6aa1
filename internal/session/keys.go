package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Keys are independent secrets derived from SESSION_SECRET so the session
// JWT and the flash cookie never share key material.
type Keys struct {
	SessionSigning []byte
	FlashHash      []byte
	FlashBlock     []byte
}

func DeriveKeys(secret []byte) (Keys, error) {
	if len(secret) == 0 {
		return Keys{}, fmt.Errorf("session secret is empty")
	}
	signing, err := derive(secret, "portal session signing", 32)
	if err != nil {
		return Keys{}, err
	}
	hash, err := derive(secret, "portal flash hash", 64)
	if err != nil {
		return Keys{}, err
	}
	block, err := derive(secret, "portal flash block", 32)
	if err != nil {
		return Keys{}, err
	}
	return Keys{SessionSigning: signing, FlashHash: hash, FlashBlock: block}, nil
}

func derive(secret []byte, info string, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return out, nil
}
