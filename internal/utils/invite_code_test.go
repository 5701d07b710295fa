package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode_Length(t *testing.T) {
	for _, length := range []int{1, 6, 12, 50} {
		code, err := GenerateInviteCode(length)
		require.NoError(t, err)
		require.Len(t, code, length)
	}
}

func TestGenerateInviteCode_Alphabet(t *testing.T) {
	code, err := GenerateInviteCode(200)
	require.NoError(t, err)

	for _, r := range code {
		isUpper := r >= 'A' && r <= 'Z'
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		require.True(t, isUpper || isLower || isDigit, "unexpected character %q in invite code", r)
	}
}

func TestGenerateInviteCode_InvalidLength(t *testing.T) {
	_, err := GenerateInviteCode(0)
	require.Error(t, err)

	_, err = GenerateInviteCode(-5)
	require.Error(t, err)
}

func TestGenerateInviteCode_Distinct(t *testing.T) {
	// Collisions are permitted by the contract but a repeat across a handful
	// of 20-character codes would indicate a broken randomness source.
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		code, err := GenerateInviteCode(20)
		require.NoError(t, err)
		require.False(t, seen[code], "generated duplicate invite code %q", code)
		seen[code] = true
	}
}
