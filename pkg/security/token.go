package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var tokenCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// GenerateToken produces a uniformly random alphanumeric string of the
// given length, sourced from crypto/rand. Used for login bearers and
// challenge tokens.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	charsetSize := big.NewInt(int64(len(tokenCharset)))
	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", err
		}
		result[i] = tokenCharset[idx.Int64()]
	}
	return string(result), nil
}
