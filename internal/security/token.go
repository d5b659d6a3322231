package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const verificationTokenBytes = 20

// GenerateVerificationToken returns a random opaque token used to prove
// control of an email address. Single-use; cleared once verification
// succeeds.
func GenerateVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
