package merkletree_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	merkletree "github.com/vwxi/merkle-tree"
	"github.com/vwxi/merkle-tree/mtdigest"
	"github.com/vwxi/merkle-tree/mthash"
)

func TestDirection_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Left", merkletree.Left.String())
	require.Equal(t, "Right", merkletree.Right.String())
	require.Equal(t, "Direction(0)", merkletree.Direction(0).String())
	require.Equal(t, "Direction(9)", merkletree.Direction(9).String())
}

func TestProof_Validate(t *testing.T) {
	t.Parallel()

	good := merkletree.Proof{
		{Hash: bytes.Repeat([]byte{1}, 32), Direction: merkletree.Left},
		{Hash: bytes.Repeat([]byte{2}, 32), Direction: merkletree.Right},
	}
	require.NoError(t, good.Validate(32))
	require.NoError(t, merkletree.Proof(nil).Validate(32))

	require.ErrorIs(t, good.Validate(16), merkletree.ErrProofHashSize)

	badDir := good.Clone()
	badDir[1].Direction = 0
	require.ErrorIs(t, badDir.Validate(32), merkletree.ErrProofDirection)

	short := good.Clone()
	short[0].Hash = short[0].Hash[:31]
	require.ErrorIs(t, short.Validate(32), merkletree.ErrProofHashSize)
}

func TestProof_Clone(t *testing.T) {
	t.Parallel()

	require.Nil(t, merkletree.Proof(nil).Clone())

	orig := merkletree.Proof{
		{Hash: []byte{1, 2, 3}, Direction: merkletree.Right},
	}
	c := orig.Clone()
	require.Equal(t, orig, c)

	c[0].Hash[0] = 0xff
	c[0].Direction = merkletree.Left
	require.Equal(t, byte(1), orig[0].Hash[0])
	require.Equal(t, merkletree.Right, orig[0].Direction)
}

func TestProof_String(t *testing.T) {
	t.Parallel()

	p := merkletree.Proof{
		{Hash: []byte{0xab, 0xcd}, Direction: merkletree.Left},
		{Hash: []byte{0x01}, Direction: merkletree.Right},
		{Hash: []byte{0x00}, Direction: 7},
	}
	require.Equal(t, "[L:abcd R:01 ?:00]", p.String())
	require.Equal(t, "[]", merkletree.Proof(nil).String())
}

func TestVerifyProof_malformed(t *testing.T) {
	t.Parallel()

	tree := NewTestTree(t)
	appendAll(t, tree, fixtureLeafData[:7])
	root := mustRoot(t, tree)

	leaf := fixtureLeafData[3]
	proof, err := tree.ProofAt(3)
	require.NoError(t, err)
	require.True(t, tree.VerifyProof(leaf, proof, root))

	t.Run("short hash", func(t *testing.T) {
		t.Parallel()

		p := proof.Clone()
		p[0].Hash = p[0].Hash[:len(p[0].Hash)-1]
		require.False(t, tree.VerifyProof(leaf, p, root))
	})

	t.Run("long hash", func(t *testing.T) {
		t.Parallel()

		p := proof.Clone()
		p[0].Hash = append(p[0].Hash, 0)
		require.False(t, tree.VerifyProof(leaf, p, root))
	})

	t.Run("invalid direction", func(t *testing.T) {
		t.Parallel()

		p := proof.Clone()
		p[len(p)-1].Direction = 0
		require.False(t, tree.VerifyProof(leaf, p, root))
	})

	t.Run("extra element", func(t *testing.T) {
		t.Parallel()

		p := append(proof.Clone(), merkletree.ProofElement{
			Hash:      make([]byte, tree.HashSize()),
			Direction: merkletree.Right,
		})
		require.False(t, tree.VerifyProof(leaf, p, root))
	})

	t.Run("truncated root", func(t *testing.T) {
		t.Parallel()

		require.False(t, tree.VerifyProof(leaf, proof, root[:len(root)-1]))
	})

	t.Run("different hasher", func(t *testing.T) {
		t.Parallel()

		h := mthash.MustNew(mtdigest.SHA3_256, 0, 0)
		require.False(t, merkletree.VerifyProof(h, leaf, proof, root))
	})
}

func TestVerifyProof_emptyProof(t *testing.T) {
	t.Parallel()

	h := mthash.MustNew(mtdigest.SHA256, 0, 0)
	data := []byte("lonely")

	require.True(t, merkletree.VerifyProof(h, data, nil, h.Leaf(data, nil)))
	require.False(t, merkletree.VerifyProof(h, data, nil, h.Leaf([]byte("other"), nil)))
}
