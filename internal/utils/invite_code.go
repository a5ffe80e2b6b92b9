package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/shirayuki/taskboard/internal/constants"
)

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateInviteCode generates a random alphanumeric invitation code.
// Collision handling is the caller's job; the code space is large enough
// that retries are effectively never needed.
func GenerateInviteCode() (string, error) {
	code := make([]byte, constants.InviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random code: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
