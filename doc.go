// Package merkletree is an append-only Merkle tree
// that lives in a single flat slice of fixed-width hash slots.
//
// Leaves are appended one at a time.
// After k appends the tree holds exactly 2k-1 slots,
// arranged as an in-order flattening of a binary tree:
// leaf i sits at slot 2i, and the odd slots hold internal nodes.
// When the leaf count is not a power of two,
// the tree is "left-packed": the perfect left subtree stays where it is,
// and the most recently appended leaves form a smaller tree on the right.
// Parent and child positions are always computed from
// the slot position and the current slice length;
// no pointers are stored and no slot ever moves.
//
// Leaves and internal nodes are hashed in separate domains
// (see [mthash.LeafTag] and [mthash.NodeTag]),
// so leaf data can never be mistaken for an internal node.
//
// An inclusion [Proof] lists sibling hashes from the leaf up to the root.
// [VerifyProof] needs only the hasher configuration, the leaf data,
// the proof, and a trusted root, so it can run on a remote party
// that never saw the tree.
//
// A [Tree] has no internal synchronization.
// Append must not run concurrently with any other method on the same Tree;
// the read-only methods may run concurrently with each other.
// VerifyProof and [VerifyBatch] are safe for unrestricted concurrent use.
package merkletree
