// Package digest computes content addresses over canonical bytes.
//
// A digest is exactly the hash of its input: no salt, no version prefix.
// Each call uses a fresh hasher; nothing is shared between calls.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
)

// Size is the digest length in bytes for every supported algorithm.
const Size = 32

// Algorithm selects the hash function.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// ParseAlgorithm accepts an algorithm name, case-insensitively. The empty
// string selects SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("digest: unknown algorithm %q", name)
	}
}

// Digest is a 32-byte hash value.
type Digest [Size]byte

// String returns the 64-character lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Sum hashes data with alg.
func Sum(alg Algorithm, data []byte) (Digest, error) {
	h, err := newHasher(alg)
	if err != nil {
		return Digest{}, err
	}
	h.Write(data)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// SumSHA256 is Sum(SHA256, data) without the error path.
func SumSHA256(data []byte) Digest { return sha256.Sum256(data) }

func newHasher(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case SHA256, "":
		return sha256.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("digest: unknown algorithm %q", alg)
	}
}

// Parse parses a 64-character hex digest. Upper-case input is accepted; the
// String form is always lower-case.
func Parse(s string) (Digest, error) {
	var d Digest
	if len(s) != hex.EncodedLen(Size) {
		return d, fmt.Errorf("digest: expected %d hex characters, got %d", hex.EncodedLen(Size), len(s))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("digest: %w", err)
	}
	return d, nil
}
