// Package mtindex contains the positional arithmetic
// for a binary tree flattened in-order into a single slice.
//
// Positions in a perfect binary tree (PBT) laid out in-order
// have a convenient bit pattern: leaves are at even positions,
// and the height of a node is the number of trailing one bits.
// For example, the 15-slot tree:
//
//	                 7
//	        3                 11
//	    1       5        9         13
//	  0   2   4   6    8   10   12    14
//
// The tree maintained by the root package only grows by appending
// two slots at a time, so most of the time it is not perfect.
// The "left-packed" binary tree (LPBT) functions here
// treat the tree as if it were embedded in the smallest enclosing PBT,
// redirecting any reference past the end of the slice
// to the subtree that was most recently appended.
// With 9 slots, for example:
//
//	           7
//	      3         8
//	    1   5
//	  0  2 4  6
//
// Node 7 would have right child 11 in the PBT,
// but 11 is out of range, so the right child is redirected to 8.
//
// Every function in this package is pure;
// no parent or child references are ever stored.
package mtindex

import (
	"fmt"
	"math/bits"
)

// LastSetBit isolates the lowest set bit of n.
// LastSetBit(0) is 0.
func LastSetBit(n uint) uint {
	return n - ((n - 1) & n)
}

// LastZeroBit isolates the lowest unset bit of n.
func LastZeroBit(n uint) uint {
	return LastSetBit(n + 1)
}

// NextPowerOfTwo returns the smallest power of two that is >= x.
// NextPowerOfTwo(0) is 1.
func NextPowerOfTwo(x uint) uint {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len(x-1)
}

// PBTParent returns the parent of n in an unbounded perfect binary tree.
func PBTParent(n uint) uint {
	z := LastZeroBit(n)
	return (z | n) &^ (z << 1)
}

// PBTLeftChild returns the left child of n in a perfect binary tree.
// Leaves, which are the even positions, have no children.
func PBTLeftChild(n uint) (uint, bool) {
	if n&1 == 0 {
		return 0, false
	}
	return n &^ (LastZeroBit(n) >> 1), true
}

// PBTRightChild returns the right child of n in a perfect binary tree.
// Leaves, which are the even positions, have no children.
func PBTRightChild(n uint) (uint, bool) {
	if n&1 == 0 {
		return 0, false
	}
	z := LastZeroBit(n)
	return (n | z) &^ (z >> 1), true
}

// PBTLeftmostLeaf returns the first leaf position covered by the subtree rooted at n.
func PBTLeftmostLeaf(n uint) uint {
	return n & (n + 1)
}

// LPBTRoot returns the root position of a left-packed tree with size slots.
func LPBTRoot(size uint) uint {
	return (NextPowerOfTwo(size+1) - 1) >> 1
}

// LPBTParent returns the parent of n in a left-packed tree with size slots.
// It reports false when n is the root.
//
// When the perfect-tree parent lies beyond the end of the slice,
// the slot immediately before n's leftmost leaf holds the real ancestor.
// That slot is the ancestor reserved by the append that created n's subtree.
func LPBTParent(n, size uint) (uint, bool) {
	if n == LPBTRoot(size) {
		return 0, false
	}

	if p := PBTParent(n); p < size {
		return p, true
	}

	l := PBTLeftmostLeaf(n)
	if l == 0 {
		panic(fmt.Errorf(
			"BUG: position %d is not the root of a tree of size %d but has no redirected parent",
			n, size,
		))
	}
	return l - 1, true
}

// LPBTRightChild returns the right child of n in a left-packed tree with size slots.
// Leaves have no children.
//
// When the perfect-tree right child lies beyond the end of the slice,
// the right subtree is whatever was appended after n,
// so the child is the root of the left-packed tree occupying that tail.
func LPBTRightChild(n, size uint) (uint, bool) {
	r, ok := PBTRightChild(n)
	if !ok {
		return 0, false
	}

	if r < size {
		return r, true
	}

	if n+1 >= size {
		// Nothing was appended after n, so there is no right subtree to redirect to.
		return 0, false
	}
	return n + 1 + LPBTRoot(size-n-1), true
}

// LeafPosition returns the slot position of the leaf with the given insertion index.
func LeafPosition(leafIdx uint) uint {
	return leafIdx << 1
}

// SizeForLeaves returns the number of slots used by a tree with nLeaves leaves.
func SizeForLeaves(nLeaves uint) uint {
	if nLeaves == 0 {
		return 0
	}
	return 2*nLeaves - 1
}

// LeafCount returns the number of leaves held in a tree with size slots.
func LeafCount(size uint) uint {
	return (size + 1) >> 1
}
