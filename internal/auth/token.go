package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TokenLength is the number of digits in a confirmation or reset token.
const TokenLength = 6

var tokenSpace = big.NewInt(1_000_000)

// GenerateToken returns a uniformly random zero-padded 6-digit code.
// Uniqueness is not checked: a token lives only until the account uses it.
func GenerateToken() (string, error) {
	n, err := rand.Int(rand.Reader, tokenSpace)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return fmt.Sprintf("%0*d", TokenLength, n.Int64()), nil
}
