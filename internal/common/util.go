package common

import (
	"crypto/rand"
	"math/big"
)

// UnlockCodeAlphabet omits characters that are easy to confuse when a code
// is read aloud or copied by hand (0/O, 1/l/I).
const UnlockCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// MakeUnlockCode returns a random string of the given length drawn from
// UnlockCodeAlphabet using crypto/rand. Each character is selected
// uniformly, so no alphabet position is favoured.
//
// It returns an error if the random number generator fails.
func MakeUnlockCode(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	size := big.NewInt(int64(len(UnlockCodeAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b[i] = UnlockCodeAlphabet[n.Int64()]
	}

	return string(b), nil
}
