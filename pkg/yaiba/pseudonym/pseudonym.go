// Package pseudonym provides salted one-way pseudonymization of user names.
//
// The salt should differ across stakeholders so that pseudonyms produced by
// one party cannot be linked to those produced by another.
package pseudonym

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// SaltSize is the size of a generated salt in bytes.
const SaltSize = 32

// Pseudonymizer hashes user names with a fixed secret salt.
// It is safe for concurrent use; the salt never changes after construction.
type Pseudonymizer struct {
	salt []byte
}

// New returns a Pseudonymizer using a copy of salt.
func New(salt []byte) *Pseudonymizer {
	s := make([]byte, len(salt))
	copy(s, salt)
	return &Pseudonymizer{salt: s}
}

// NewRandom returns a Pseudonymizer with a freshly generated random salt.
func NewRandom() (*Pseudonymizer, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return &Pseudonymizer{salt: salt}, nil
}

// SaltFromString decodes a base64 (standard encoding) salt, as stored in
// configuration files and environment variables.
func SaltFromString(s string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	return salt, nil
}

// EncodeSalt is the inverse of SaltFromString.
func EncodeSalt(salt []byte) string {
	return base64.StdEncoding.EncodeToString(salt)
}

// Salt returns a copy of the salt.
func (p *Pseudonymizer) Salt() []byte {
	s := make([]byte, len(p.salt))
	copy(s, p.salt)
	return s
}

// Pseudonymize returns base64(sha256(name || 0x00 || salt)).
func (p *Pseudonymizer) Pseudonymize(name entry.UserName) entry.PseudoUserName {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(p.salt)
	return entry.PseudoUserName(base64.StdEncoding.EncodeToString(h.Sum(nil)))
}
