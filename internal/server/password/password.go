// Package password implements keyed-hash credential storage: a random salt
// acts as an HMAC-SHA512 key over the password bytes, and verification
// recomputes the digest and compares in constant time.
package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
)

// Size is the length in bytes of both the salt and the digest.
const Size = sha512.Size

// Derive generates a fresh random salt and computes
// hash = HMAC-SHA512(key=salt, password).
func Derive(password string) (hash, salt []byte, err error) {
	salt = make([]byte, Size)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generating salt: %w", err)
	}
	return compute(password, salt), salt, nil
}

// Verify recomputes the keyed hash and compares it to the stored digest.
// The comparison never short-circuits on the first differing byte, so its
// running time does not leak how many leading bytes matched. A stored hash
// of the wrong length (corrupted storage) simply fails verification.
func Verify(password string, hash, salt []byte) bool {
	if len(hash) != Size || len(salt) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(compute(password, salt), hash) == 1
}

func compute(password string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
