// Package mtdigest names the digest algorithms that may back a Merkle tree.
//
// An [Algorithm] is a factory for fresh [hash.Hash] values
// along with the native output size of those hashes.
// The tree truncates every digest to its configured slot size,
// so the native size bounds the largest usable slot.
package mtdigest

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm describes a digest function.
type Algorithm struct {
	// Name is the canonical, lowercase identifier used by [Parse].
	Name string

	// Size is the native output length of the digest, in bytes.
	Size int

	// New returns a fresh hash.
	// Every returned value must be independent of every other,
	// and it must be safe to call New concurrently.
	New func() hash.Hash
}

// IsZero reports whether a is the zero Algorithm.
func (a Algorithm) IsZero() bool {
	return a.New == nil
}

func (a Algorithm) String() string {
	return a.Name
}

var (
	SHA256 = Algorithm{
		Name: "sha256",
		Size: sha256.Size,
		New:  sha256.New,
	}

	SHA512 = Algorithm{
		Name: "sha512",
		Size: sha512.Size,
		New:  sha512.New,
	}

	SHA512_256 = Algorithm{
		Name: "sha512-256",
		Size: sha512.Size256,
		New:  sha512.New512_256,
	}

	SHA3_256 = Algorithm{
		Name: "sha3-256",
		Size: 32,
		New:  sha3.New256,
	}

	SHA3_512 = Algorithm{
		Name: "sha3-512",
		Size: 64,
		New:  sha3.New512,
	}

	// Keccak256 is the pre-standard SHA-3 variant used by Ethereum.
	Keccak256 = Algorithm{
		Name: "keccak256",
		Size: 32,
		New:  sha3.NewLegacyKeccak256,
	}

	BLAKE2b256 = Algorithm{
		Name: "blake2b-256",
		Size: blake2b.Size256,
		New:  newBLAKE2b256,
	}

	BLAKE2b512 = Algorithm{
		Name: "blake2b-512",
		Size: blake2b.Size,
		New:  newBLAKE2b512,
	}
)

func newBLAKE2b256() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only possible with an oversized key.
		panic(fmt.Errorf("BUG: unkeyed blake2b-256 failed: %w", err))
	}
	return h
}

func newBLAKE2b512() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(fmt.Errorf("BUG: unkeyed blake2b-512 failed: %w", err))
	}
	return h
}

var registry = map[string]Algorithm{}

func init() {
	for _, a := range []Algorithm{
		SHA256, SHA512, SHA512_256,
		SHA3_256, SHA3_512, Keccak256,
		BLAKE2b256, BLAKE2b512,
	} {
		registry[a.Name] = a
	}
}

// ErrUnknownAlgorithm is returned from [Parse]
// when no algorithm is registered under the given name.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Parse returns the algorithm with the given name.
// Matching ignores case and surrounding whitespace.
func Parse(name string) (Algorithm, error) {
	a, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return a, nil
}

// All returns every registered algorithm, sorted by name.
func All() []Algorithm {
	out := make([]Algorithm, 0, len(registry))
	for _, a := range registry {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Algorithm) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Names returns the names of every registered algorithm, sorted.
func Names() []string {
	all := All()
	out := make([]string, len(all))
	for i, a := range all {
		out[i] = a.Name
	}
	return out
}
