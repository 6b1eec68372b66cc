// Package gitenv wraps libgit2 for the benchmark workspace: capturing and
// restoring its position, enumerating history points, checking out
// revisions, and best-effort file restoration from a reference commit.
package gitenv

import (
	"encoding/hex"

	git2go "github.com/libgit2/git2go/v34"
)

// Sizes for SHA-1 object ids.
const (
	// HashSize is the size of a SHA-1 hash in bytes.
	HashSize = 20
	// ShortHexSize is the abbreviated hex length used for point identifiers.
	ShortHexSize = 7
)

// Hash represents a git object hash (SHA-1).
type Hash [HashSize]byte

// NewHash creates a Hash from a hex string. Malformed input yields a
// truncated or zero hash; callers validating user input should check IsZero.
func NewHash(hexStr string) Hash {
	var hash Hash

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return hash
	}

	copy(hash[:], decoded)

	return hash
}

// HashFromOid converts a libgit2 Oid to Hash.
func HashFromOid(oid *git2go.Oid) Hash {
	var h Hash
	copy(h[:], oid[:])

	return h
}

// String returns the full hex representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the abbreviated hex form used to name artifacts.
func (h Hash) Short() string {
	return h.String()[:ShortHexSize]
}

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ToOid converts Hash back to a libgit2 Oid.
func (h Hash) ToOid() *git2go.Oid {
	oid := new(git2go.Oid)
	copy(oid[:], h[:])

	return oid
}
