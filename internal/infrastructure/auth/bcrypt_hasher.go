// Package auth provides the concrete credential verifier and session token codec.
package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for every stored password.
const DefaultCost = 10

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// BcryptHasher implements ports.PasswordHasher with bcrypt. The salt is
// generated per call and embedded in the digest.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: DefaultCost}
}

// Hash returns the bcrypt digest of plaintext. Passwords longer than bcrypt's
// 72-byte limit are condensed with SHA-256 first, so no length is rejected.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(bcryptInput(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests never match.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), bcryptInput(plaintext)) == nil
}

// bcryptInput leaves passwords bcrypt can take untouched and replaces longer
// ones with the base64 of their SHA-256 sum (44 bytes).
func bcryptInput(plaintext string) []byte {
	if len(plaintext) <= maxPasswordBytes {
		return []byte(plaintext)
	}
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
