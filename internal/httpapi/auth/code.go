// Package auth generates and checks signup confirmation codes. A code is
// random, shown to the user exactly once (by email), and only its bcrypt
// hash is stored, so a leaked users table does not leak live codes.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const codeBytes = 16

// GenerateCode returns a fresh confirmation code and the hash to store.
func GenerateCode() (code string, hash string, err error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate confirmation code: %w", err)
	}
	code = hex.EncodeToString(buf)

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return code, string(hashed), nil
}

// VerifyCode checks a presented code against the stored hash. bcrypt's
// comparison does not short-circuit on the first differing byte.
func VerifyCode(hash, code string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
}
