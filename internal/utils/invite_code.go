package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateInviteCode generates a random invite code of the given length drawn
// uniformly from a case-sensitive alphanumeric alphabet. Codes gate joining a
// workspace, not identity, so collisions across workspaces are tolerable.
func GenerateInviteCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invite code length must be positive, got %d", length)
	}

	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
