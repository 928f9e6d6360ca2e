package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const bytesNum = 32

// Generate returns 32 random bytes hex-encoded as a 64 character string.
func Generate() (string, error) {
	tokenBytes := make([]byte, bytesNum)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

// Hash returns the hex SHA-256 of a token, stored once the token is consumed.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
