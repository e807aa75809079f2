// Package mthash contains the hashing primitives for the Merkle tree:
// truncation of a digest to a fixed slot width,
// concatenation of two slots, and domain-tagged hashing
// that separates leaf commitments from internal node commitments.
package mthash

import (
	"errors"
	"fmt"
	"hash"
	"sync"

	"github.com/vwxi/merkle-tree/mtdigest"
)

// Hasher is the interface the tree uses to hash leaves and nodes.
//
// To be allocation-efficient, the Hasher implementation
// must append its hash output to dst and return the extended slice,
// instead of creating a new byte slice.
// Hasher must not retain references to the dst slice.
//
// Hasher methods must be safe to call concurrently.
type Hasher interface {
	// Leaf hashes raw leaf data into a leaf commitment.
	Leaf(in, dst []byte) []byte

	// Node combines the two child commitments, left then right,
	// into a commitment for their parent.
	Node(left, right, dst []byte) []byte

	// Size is the number of bytes Leaf and Node append.
	Size() int
}

const (
	// LeafTag fills the tag block when committing to leaf data.
	LeafTag byte = 1

	// NodeTag fills the tag block when committing to an internal node.
	NodeTag byte = 2
)

var (
	// ErrHashSizeInvalid is returned when a hash size is negative,
	// or when a custom Hasher reports a size that is not positive.
	ErrHashSizeInvalid = errors.New("hash size must be positive")

	// ErrHashSizeTooLarge is returned when the requested hash size
	// is larger than the digest can produce.
	ErrHashSizeTooLarge = errors.New("hash size exceeds the native digest size")

	// ErrConcatSizeMismatch is returned when the concatenation size
	// is set to anything other than twice the hash size.
	ErrConcatSizeMismatch = errors.New("concatenation size must be exactly twice the hash size")

	// ErrNoAlgorithm is returned from [New] when given the zero [mtdigest.Algorithm].
	ErrNoAlgorithm = errors.New("no digest algorithm provided")
)

// Tagged is the standard [Hasher].
//
// Every digest output is truncated to n bytes.
// A leaf is committed as TagHash(LeafTag, data),
// and a node as TagHash(NodeTag, ConcatHash(left, right)).
// Leaf and node commitments never share a tag block,
// so an internal node cannot be presented as a leaf.
type Tagged struct {
	alg mtdigest.Algorithm

	n, nd int

	leafBlock, nodeBlock []byte

	pool sync.Pool
}

// New returns a Tagged hasher over alg with slot width n and concatenation width nd.
//
// A zero n selects the native digest size of alg,
// and a zero nd selects 2*n.
// Any other combination that does not satisfy
// 0 < n <= alg.Size and nd == 2*n is rejected.
func New(alg mtdigest.Algorithm, n, nd int) (*Tagged, error) {
	if alg.IsZero() {
		return nil, ErrNoAlgorithm
	}

	if n == 0 {
		n = alg.Size
	}
	if nd == 0 {
		nd = 2 * n
	}

	if n < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrHashSizeInvalid, n)
	}
	if n > alg.Size {
		return nil, fmt.Errorf(
			"%w: %d > %d for %s", ErrHashSizeTooLarge, n, alg.Size, alg.Name,
		)
	}
	if nd != 2*n {
		return nil, fmt.Errorf(
			"%w: got %d for hash size %d", ErrConcatSizeMismatch, nd, n,
		)
	}

	t := &Tagged{
		alg: alg,
		n:   n,
		nd:  nd,

		leafBlock: repeat(LeafTag, n),
		nodeBlock: repeat(NodeTag, n),
	}
	t.pool.New = func() any {
		return &scratch{
			h:   alg.New(),
			buf: make([]byte, 0, max(alg.Size, nd)),
		}
	}
	return t, nil
}

// MustNew is like [New] but panics on an invalid configuration.
func MustNew(alg mtdigest.Algorithm, n, nd int) *Tagged {
	t, err := New(alg, n, nd)
	if err != nil {
		panic(fmt.Errorf("BUG: invalid hasher configuration: %w", err))
	}
	return t
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// scratch is the reusable state for one in-flight hash operation.
type scratch struct {
	h   hash.Hash
	buf []byte
}

// Algorithm returns the digest algorithm backing t.
func (t *Tagged) Algorithm() mtdigest.Algorithm { return t.alg }

// Size returns the slot width n.
func (t *Tagged) Size() int { return t.n }

// ConcatSize returns the concatenation width nd.
func (t *Tagged) ConcatSize() int { return t.nd }

// Hash appends the first Size() bytes of the digest of data to dst.
func (t *Tagged) Hash(data, dst []byte) []byte {
	s := t.pool.Get().(*scratch)
	defer t.pool.Put(s)

	return t.hash(s, data, dst)
}

func (t *Tagged) hash(s *scratch, data, dst []byte) []byte {
	s.h.Reset()
	_, _ = s.h.Write(data)
	out := s.h.Sum(s.buf[:0])
	return append(dst, out[:t.n]...)
}

// ConcatHash appends Hash(a || b) to dst.
// Both a and b must be exactly Size() bytes.
func (t *Tagged) ConcatHash(a, b, dst []byte) []byte {
	if len(a) != t.n || len(b) != t.n {
		panic(fmt.Errorf(
			"BUG: ConcatHash operands must be %d bytes; got %d and %d",
			t.n, len(a), len(b),
		))
	}

	s := t.pool.Get().(*scratch)
	defer t.pool.Put(s)

	return t.concatHash(s, a, b, dst)
}

func (t *Tagged) concatHash(s *scratch, a, b, dst []byte) []byte {
	var stack [128]byte
	var cat []byte
	if t.nd <= len(stack) {
		cat = stack[:t.nd]
	} else {
		cat = make([]byte, t.nd)
	}
	copy(cat[:t.n], a)
	copy(cat[t.n:], b)

	return t.hash(s, cat, dst)
}

// TagHash appends ConcatHash(tag repeated Size() times, Hash(data)) to dst.
func (t *Tagged) TagHash(tag byte, data, dst []byte) []byte {
	var block []byte
	switch tag {
	case LeafTag:
		block = t.leafBlock
	case NodeTag:
		block = t.nodeBlock
	default:
		block = repeat(tag, t.n)
	}

	s := t.pool.Get().(*scratch)
	defer t.pool.Put(s)

	return t.tagHash(s, block, data, dst)
}

func (t *Tagged) tagHash(s *scratch, block, data, dst []byte) []byte {
	var stack [64]byte
	inner := t.hash(s, data, stack[:0])
	return t.concatHash(s, block, inner, dst)
}

// Leaf implements [Hasher].
func (t *Tagged) Leaf(in, dst []byte) []byte {
	s := t.pool.Get().(*scratch)
	defer t.pool.Put(s)

	return t.tagHash(s, t.leafBlock, in, dst)
}

// Node implements [Hasher].
func (t *Tagged) Node(left, right, dst []byte) []byte {
	if len(left) != t.n || len(right) != t.n {
		panic(fmt.Errorf(
			"BUG: Node children must be %d bytes; got %d and %d",
			t.n, len(left), len(right),
		))
	}

	s := t.pool.Get().(*scratch)
	defer t.pool.Put(s)

	var stack [64]byte
	joined := t.concatHash(s, left, right, stack[:0])
	return t.tagHash(s, t.nodeBlock, joined, dst)
}
