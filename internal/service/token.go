package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// confirmationTokenBytes sizes the closure confirmation token at 128 bits of
// entropy, rendered as 32 hex characters.
const confirmationTokenBytes = 16

func newConfirmationToken() (string, error) {
	buf := make([]byte, confirmationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
