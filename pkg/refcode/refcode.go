package refcode

import (
	"crypto/rand"
	"fmt"
)

// Length is the fixed size of every order reference code.
const Length = 20

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// limit is the largest multiple of len(charset) below 256; bytes at or above
// it are discarded so every charset index is equally likely.
const limit = 256 - 256%len(charset)

// New produces a random fixed-length alphanumeric reference code.
func New() (string, error) {
	code := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for len(code) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generating ref code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, charset[int(b)%len(charset)])
			if len(code) == Length {
				break
			}
		}
	}
	return string(code), nil
}
