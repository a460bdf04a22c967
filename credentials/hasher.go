// Package credentials implements password hashing and verification for
// local (non-federated) registry accounts using the scrypt memory-hard KDF.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// scrypt cost parameters. N=16384, r=8 puts the memory requirement at
// 128*N*r = 16 MiB per hash, which is the floor for resisting
// hardware-accelerated guessing at interactive latency.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	hashLength   = 64
	saltByteSize = 16
)

// Hasher derives and verifies password hashes. The zero cost parameters are
// fixed; a Hasher carries no per-user state and is safe for concurrent use.
type Hasher struct{}

func NewHasher() *Hasher {
	return &Hasher{}
}

// Hash derives the hex-encoded scrypt hash of password under the given
// hex-encoded salt. The password is NFC-normalized first so that visually
// identical Unicode inputs hash identically. Deterministic for a given
// (password, salt) pair.
func (h *Hasher) Hash(password, saltHex string) (string, error) {
	normalized := norm.NFC.String(password)
	key, err := scrypt.Key([]byte(normalized), []byte(saltHex), scryptN, scryptR, scryptP, hashLength)
	if err != nil {
		return "", errors.Wrap(err, "[Hasher.Hash] scrypt.Key")
	}
	return hex.EncodeToString(key), nil
}

// Verify recomputes the hash of password under saltHex and compares it to
// expectedHashHex in constant time. Any internal failure reports false
// rather than an error: a password check must fail closed.
func (h *Hasher) Verify(password, saltHex, expectedHashHex string) bool {
	computed, err := h.Hash(password, saltHex)
	if err != nil {
		return false
	}
	// Both operands are hex strings of fixed derived length, so the
	// comparison itself never leaks a length difference for well-formed
	// stored hashes.
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expectedHashHex)) == 1
}

// GenerateSalt returns a fresh per-user salt: 16 cryptographically random
// bytes, hex-encoded.
func GenerateSalt() (string, error) {
	salt := make([]byte, saltByteSize)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "[GenerateSalt] rand.Read")
	}
	return hex.EncodeToString(salt), nil
}
