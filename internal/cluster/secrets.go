package cluster

import (
	"crypto/rand"
	"math/big"
)

// passwordChars deliberately excludes characters that break shell quoting
// or YAML values when passed through to the package installer.
const passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const maxPasswordLength = 64

// GeneratePassword returns a random password of length n (capped at 64)
// from a cryptographically secure source.
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	if n > maxPasswordLength {
		n = maxPasswordLength
	}

	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordChars)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordChars[idx.Int64()]
	}
	return string(out), nil
}
