package merkletree

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/vwxi/merkle-tree/internal/mtindex"
	"github.com/vwxi/merkle-tree/mtdigest"
	"github.com/vwxi/merkle-tree/mthash"
)

// Tree is an append-only Merkle tree stored as a flat slice of hash slots.
//
// Create a Tree with [NewTree], then add leaves with [*Tree.Append].
type Tree struct {
	log *slog.Logger

	hasher mthash.Hasher

	// Slot width in bytes.
	n int

	// Every slot, back to back, in a single allocation.
	// Slot i is mem[i*n : (i+1)*n].
	mem []byte

	// Existing slots overwritten by the Append in progress,
	// and their previous contents back to back,
	// so that a failed Append can be undone.
	undoPos []uint
	undoMem []byte
}

// Config is the configuration for [NewTree].
type Config struct {
	// Optional logger.
	// If nil, log output is discarded.
	Log *slog.Logger

	// Algorithm is the digest backing every hash in the tree.
	// It is required unless Hasher is set.
	Algorithm mtdigest.Algorithm

	// HashSize is the width in bytes of each hash slot;
	// digests are truncated to this width.
	// Zero selects the native size of Algorithm.
	HashSize int

	// ConcatSize is the width in bytes of the buffer
	// holding two slots during re-hashing.
	// It must be zero (meaning 2*HashSize) or exactly 2*HashSize.
	ConcatSize int

	// Hasher overrides the standard tagged hasher.
	// When set, Algorithm, HashSize, and ConcatSize are ignored.
	Hasher mthash.Hasher
}

// NewTree returns an empty tree.
//
// An error is returned if the hash sizes in cfg
// are incompatible with the digest algorithm;
// see [mthash.New] for the exact rules.
func NewTree(cfg Config) (*Tree, error) {
	h := cfg.Hasher
	if h == nil {
		th, err := mthash.New(cfg.Algorithm, cfg.HashSize, cfg.ConcatSize)
		if err != nil {
			return nil, fmt.Errorf("failed to configure tree hasher: %w", err)
		}
		h = th
	} else if h.Size() <= 0 {
		return nil, fmt.Errorf(
			"%w: custom hasher reported size %d", mthash.ErrHashSizeInvalid, h.Size(),
		)
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	t := &Tree{
		log:    log,
		hasher: h,
		n:      h.Size(),
	}

	if th, ok := h.(*mthash.Tagged); ok {
		log.Debug(
			"Created Merkle tree",
			"algorithm", th.Algorithm().Name,
			"hash_size", th.Size(),
			"concat_size", th.ConcatSize(),
		)
	} else {
		log.Debug("Created Merkle tree with custom hasher", "hash_size", t.n)
	}

	return t, nil
}

// Hasher returns the hasher used by t.
// Verifiers need an equivalent hasher to check proofs produced by t.
func (t *Tree) Hasher() mthash.Hasher { return t.hasher }

// HashSize returns the width of every hash produced by t.
func (t *Tree) HashSize() int { return t.n }

// Size returns the number of hash slots in t.
// A non-empty tree with k leaves has 2k-1 slots.
func (t *Tree) Size() int { return len(t.mem) / t.n }

// LeafCount returns the number of leaves appended to t.
func (t *Tree) LeafCount() int {
	return int(mtindex.LeafCount(t.size()))
}

func (t *Tree) size() uint {
	return uint(len(t.mem) / t.n)
}

// slot returns a view of the hash at position i.
// The caller must not retain the slice past the next Append.
func (t *Tree) slot(i uint) []byte {
	start := int(i) * t.n
	return t.mem[start : start+t.n : start+t.n]
}

// slotDst returns a zero-length slice backed by the slot at position i,
// suitable as the dst argument to the hasher.
func (t *Tree) slotDst(i uint) []byte {
	start := int(i) * t.n
	return t.mem[start:start:start+t.n]
}

// Append adds a leaf committing to data,
// and recomputes every ancestor of the new leaf.
//
// Append only returns an error if the positional invariants of t
// have been violated, or if the hasher did not write exactly one slot;
// in either case the error is a [*StructuralError]
// and t is restored to its state before the call.
func (t *Tree) Append(data []byte) error {
	prevLen := len(t.mem)
	t.undoPos = t.undoPos[:0]
	t.undoMem = t.undoMem[:0]

	if err := t.append(data); err != nil {
		for i, pos := range t.undoPos {
			copy(t.slot(pos), t.undoMem[i*t.n:(i+1)*t.n])
		}
		t.mem = t.mem[:prevLen]
		return err
	}

	return nil
}

func (t *Tree) append(data []byte) error {
	prevSize := t.size()
	if prevSize == 0 {
		t.mem = append(t.mem, make([]byte, t.n)...)
		return t.checkWritten(0, 1, t.hasher.Leaf(data, t.slotDst(0)))
	}

	// Each append after the first adds one leaf
	// and reserves one slot for an ancestor.
	t.mem = append(t.mem, make([]byte, 2*t.n)...)
	size := t.size()

	pos := mtindex.LeafPosition(size / 2)
	if pos >= size {
		return t.structuralError("append", pos, size, "leaf position out of bounds")
	}
	if err := t.checkWritten(pos, size, t.hasher.Leaf(data, t.slotDst(pos))); err != nil {
		return err
	}

	parent, ok := mtindex.LPBTParent(pos, size)
	if !ok {
		return t.structuralError("append", pos, size, "new leaf has no parent")
	}

	for ok {
		l, lok := mtindex.PBTLeftChild(parent)
		r, rok := mtindex.LPBTRightChild(parent, size)
		if !lok || !rok || l >= size || r >= size {
			return t.structuralError("append", parent, size, "could not resolve children of ancestor")
		}

		if parent < prevSize {
			t.undoPos = append(t.undoPos, parent)
			t.undoMem = append(t.undoMem, t.slot(parent)...)
		}

		out := t.hasher.Node(t.slot(l), t.slot(r), t.slotDst(parent))
		if err := t.checkWritten(parent, size, out); err != nil {
			return err
		}

		parent, ok = mtindex.LPBTParent(parent, size)
	}

	return nil
}

// checkWritten confirms that out is exactly the slot at pos,
// as returned by a hasher given slotDst(pos).
func (t *Tree) checkWritten(pos, size uint, out []byte) error {
	if len(out) != t.n {
		return t.structuralError(
			"append", pos, size,
			fmt.Sprintf("hasher wrote %d bytes, want %d", len(out), t.n),
		)
	}
	if &out[0] != &t.mem[int(pos)*t.n] {
		return t.structuralError("append", pos, size, "hasher output left its slot")
	}
	return nil
}

func (t *Tree) structuralError(op string, pos, size uint, reason string) error {
	err := &StructuralError{
		Op:     op,
		Pos:    pos,
		Size:   size,
		Reason: reason,
	}
	t.log.Error("Merkle tree invariant violated", "err", err)
	return err
}

// Root returns a copy of the root hash.
// It reports false if no leaves have been appended.
func (t *Tree) Root() ([]byte, bool) {
	if len(t.mem) == 0 {
		return nil, false
	}
	return bytes.Clone(t.slot(mtindex.LPBTRoot(t.size()))), true
}

// LeafHash returns a copy of the leaf commitment
// for the leaf with insertion index leafIdx.
func (t *Tree) LeafHash(leafIdx int) ([]byte, error) {
	if err := t.checkLeafIndex(leafIdx); err != nil {
		return nil, err
	}
	return bytes.Clone(t.slot(mtindex.LeafPosition(uint(leafIdx)))), nil
}

func (t *Tree) checkLeafIndex(leafIdx int) error {
	if n := t.LeafCount(); leafIdx < 0 || leafIdx >= n {
		return fmt.Errorf(
			"%w: %d not in [0, %d)", ErrLeafIndexOutOfRange, leafIdx, n,
		)
	}
	return nil
}

// step is one level of a proof under construction,
// before the sibling hash has been copied out of the tree.
type step struct {
	sibling uint
	dir     Direction
}

// CreateProof returns an inclusion proof for the leaf committing to data.
// It reports false if no such leaf exists.
//
// The leaf is located by content, with a depth-first search from the root,
// so this may visit every slot in the tree.
// Use [*Tree.ProofAt] when the leaf index is known.
// If data was appended more than once, the proof is for the earliest copy.
func (t *Tree) CreateProof(data []byte) (Proof, bool) {
	route, _, ok := t.search(data)
	if !ok {
		return nil, false
	}

	slices.Reverse(route)
	return t.materialize(route), true
}

// LeafIndex returns the insertion index of the earliest leaf committing to data.
// It reports false if no such leaf exists.
func (t *Tree) LeafIndex(data []byte) (int, bool) {
	_, pos, ok := t.search(data)
	if !ok || pos&1 == 1 {
		return 0, false
	}
	return int(pos >> 1), true
}

func (t *Tree) search(data []byte) ([]step, uint, bool) {
	if len(t.mem) == 0 {
		return nil, 0, false
	}

	target := t.hasher.Leaf(data, make([]byte, 0, t.n))
	size := t.size()

	s := searcher{
		t:      t,
		size:   size,
		target: target,
	}
	pos, ok := s.find(mtindex.LPBTRoot(size))
	return s.route, pos, ok
}

// searcher holds the state of a single structural search.
type searcher struct {
	t      *Tree
	size   uint
	target []byte

	// Siblings recorded on the way down, root first.
	route []step
}

func (s *searcher) find(n uint) (uint, bool) {
	if bytes.Equal(s.t.slot(n), s.target) {
		return n, true
	}

	l, lok := mtindex.PBTLeftChild(n)
	r, rok := mtindex.LPBTRightChild(n, s.size)
	if !lok || !rok {
		return 0, false
	}

	// Try the left subtree first, with the right sibling recorded.
	s.route = append(s.route, step{sibling: r, dir: Right})
	if pos, ok := s.find(l); ok {
		return pos, true
	}

	// Then the right subtree, with the left sibling recorded instead.
	s.route[len(s.route)-1] = step{sibling: l, dir: Left}
	if pos, ok := s.find(r); ok {
		return pos, true
	}

	s.route = s.route[:len(s.route)-1]
	return 0, false
}

// ProofAt returns an inclusion proof for the leaf with insertion index leafIdx.
// Unlike [*Tree.CreateProof], it walks directly from the leaf to the root.
func (t *Tree) ProofAt(leafIdx int) (Proof, error) {
	if err := t.checkLeafIndex(leafIdx); err != nil {
		return nil, err
	}

	size := t.size()
	pos := mtindex.LeafPosition(uint(leafIdx))

	var route []step
	for p, ok := mtindex.LPBTParent(pos, size); ok; p, ok = mtindex.LPBTParent(p, size) {
		l, _ := mtindex.PBTLeftChild(p)
		if l == pos {
			r, _ := mtindex.LPBTRightChild(p, size)
			route = append(route, step{sibling: r, dir: Right})
		} else {
			route = append(route, step{sibling: l, dir: Left})
		}
		pos = p
	}

	return t.materialize(route), nil
}

// materialize copies the sibling hashes named in route into a new Proof.
// All the hashes share one backing allocation.
func (t *Tree) materialize(route []step) Proof {
	p := make(Proof, len(route))
	mem := make([]byte, len(route)*t.n)
	for i, st := range route {
		h := mem[i*t.n : (i+1)*t.n : (i+1)*t.n]
		copy(h, t.slot(st.sibling))
		p[i] = ProofElement{
			Hash:      h,
			Direction: st.dir,
		}
	}
	return p
}

// VerifyProof reports whether proof shows that data is committed to by root,
// using t's hasher. See the package-level [VerifyProof].
func (t *Tree) VerifyProof(data []byte, proof Proof, root []byte) bool {
	return VerifyProof(t.hasher, data, proof, root)
}
