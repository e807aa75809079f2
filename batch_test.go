package merkletree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	merkletree "github.com/vwxi/merkle-tree"
	"github.com/vwxi/merkle-tree/internal/mttest"
)

func TestVerifyBatch(t *testing.T) {
	t.Parallel()

	leaves := mttest.DistinctLeavesForTest(t, 25, 16)

	tree := NewTestTree(t)
	appendAll(t, tree, leaves)
	root := mustRoot(t, tree)

	items := make([]merkletree.BatchItem, len(leaves))
	for i, leaf := range leaves {
		proof, err := tree.ProofAt(i)
		require.NoError(t, err)
		items[i] = merkletree.BatchItem{Data: leaf, Proof: proof}
	}

	// Break every third item, each in a different way.
	items[0].Data = []byte("not a leaf")
	items[3].Proof = items[4].Proof
	items[6].Proof = items[6].Proof[:len(items[6].Proof)-1]
	items[9].Proof = nil

	for _, workers := range []int{0, 1, 4} {
		bs, err := merkletree.VerifyBatch(
			context.Background(), tree.Hasher(), root, items,
			merkletree.BatchConfig{Workers: workers},
		)
		require.NoError(t, err)
		require.Equal(t, uint(len(items)), bs.Len())

		for i := range items {
			want := i != 0 && i != 3 && i != 6 && i != 9
			require.Equalf(t, want, bs.Test(uint(i)), "item %d with %d workers", i, workers)
		}
		require.Equal(t, uint(len(items)-4), bs.Count())
	}
}

func TestVerifyBatch_empty(t *testing.T) {
	t.Parallel()

	tree := NewTestTree(t)
	appendAll(t, tree, fixtureLeafData[:2])

	bs, err := merkletree.VerifyBatch(
		context.Background(), tree.Hasher(), mustRoot(t, tree), nil, merkletree.BatchConfig{},
	)
	require.NoError(t, err)
	require.Zero(t, bs.Count())
}

func TestVerifyBatch_cancelled(t *testing.T) {
	t.Parallel()

	tree := NewTestTree(t)
	appendAll(t, tree, fixtureLeafData)
	root := mustRoot(t, tree)

	items := make([]merkletree.BatchItem, len(fixtureLeafData))
	for i, leaf := range fixtureLeafData {
		proof, err := tree.ProofAt(i)
		require.NoError(t, err)
		items[i] = merkletree.BatchItem{Data: leaf, Proof: proof}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bs, err := merkletree.VerifyBatch(ctx, tree.Hasher(), root, items, merkletree.BatchConfig{Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, bs)
}
