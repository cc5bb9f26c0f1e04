// Package cryptox hashes short one-time secrets such as magic codes.
package cryptox

import (
	"crypto/subtle"

	"github.com/clipboardhistoryio/companion/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32
)

// HashCode derives an argon2id hash of code with a fresh random salt.
func HashCode(code string) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(saltSize)
	return deriveKey(code, salt), salt
}

// VerifyCode reports whether code hashes to hash under salt. The comparison
// is constant time.
func VerifyCode(code string, hash, salt []byte) bool {
	if len(hash) == 0 || len(salt) == 0 {
		return false
	}
	candidate := deriveKey(code, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}

func deriveKey(code string, salt []byte) []byte {
	return argon2.IDKey([]byte(code), salt, 1, 64*1024, 4, keySize)
}
