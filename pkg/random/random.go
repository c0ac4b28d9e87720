package random

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Code returns an uppercase hex token of n random bytes. Redemption codes
// use n=16 for 128 bits of entropy.
func Code(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}
