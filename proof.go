package merkletree

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/vwxi/merkle-tree/mthash"
)

// Direction says which side of the running hash a proof sibling belongs on.
type Direction uint8

const (
	// Left means the sibling is the left operand:
	// the next value is Node(sibling, running).
	Left Direction = iota + 1

	// Right means the sibling is the right operand:
	// the next value is Node(running, sibling).
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ProofElement is one level of an inclusion proof.
type ProofElement struct {
	// The hash of the sibling at this level.
	Hash []byte

	// The side of the running hash that Hash is combined on.
	Direction Direction
}

// Proof is an inclusion proof.
// The first element is the sibling of the leaf,
// and the last element is a child of the root.
// A proof for the only leaf of a single-leaf tree is empty.
type Proof []ProofElement

var (
	// ErrProofHashSize is returned from [Proof.Validate]
	// when an element's hash is not exactly the tree's hash size.
	ErrProofHashSize = errors.New("proof element has wrong hash size")

	// ErrProofDirection is returned from [Proof.Validate]
	// when an element's direction is neither [Left] nor [Right].
	ErrProofDirection = errors.New("proof element has invalid direction")
)

// Validate reports whether p is well formed for hashes of hashSize bytes.
//
// [VerifyProof] already treats malformed proofs as failed verification;
// Validate is for callers that want to distinguish a malformed proof
// from one that simply does not match.
func (p Proof) Validate(hashSize int) error {
	for i, e := range p {
		if len(e.Hash) != hashSize {
			return fmt.Errorf(
				"%w: element %d has %d bytes, want %d",
				ErrProofHashSize, i, len(e.Hash), hashSize,
			)
		}
		if e.Direction != Left && e.Direction != Right {
			return fmt.Errorf("%w: element %d has %s", ErrProofDirection, i, e.Direction)
		}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p Proof) Clone() Proof {
	if p == nil {
		return nil
	}
	out := make(Proof, len(p))
	for i, e := range p {
		out[i] = ProofElement{
			Hash:      bytes.Clone(e.Hash),
			Direction: e.Direction,
		}
	}
	return out
}

// String renders p for debugging, as "L:<hex> R:<hex> ...".
func (p Proof) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		var d string
		switch e.Direction {
		case Left:
			d = "L"
		case Right:
			d = "R"
		default:
			d = "?"
		}
		parts[i] = d + ":" + hex.EncodeToString(e.Hash)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// VerifyProof reports whether proof shows that data is a leaf
// of the tree whose root hash is expectedRoot.
//
// Starting from h.Leaf(data), each proof element is folded in
// on the side given by its direction.
// The result is compared byte-for-byte with expectedRoot.
// The comparison is not constant-time;
// proofs and roots are public values.
//
// VerifyProof never fails: a malformed proof simply does not verify.
// It holds no state and is safe to call concurrently.
func VerifyProof(h mthash.Hasher, data []byte, proof Proof, expectedRoot []byte) bool {
	n := h.Size()

	acc := h.Leaf(data, make([]byte, 0, n))
	next := make([]byte, 0, n)

	for _, e := range proof {
		if len(e.Hash) != n {
			return false
		}

		switch e.Direction {
		case Left:
			next = h.Node(e.Hash, acc, next[:0])
		case Right:
			next = h.Node(acc, e.Hash, next[:0])
		default:
			return false
		}

		acc, next = next, acc
	}

	return bytes.Equal(acc, expectedRoot)
}
