package merkletree

import (
	"context"
	"runtime"

	"github.com/bits-and-blooms/bitset"
	"github.com/vwxi/merkle-tree/mthash"
	"golang.org/x/sync/errgroup"
)

// BatchItem is one leaf and its proof, for [VerifyBatch].
type BatchItem struct {
	Data  []byte
	Proof Proof
}

// BatchConfig is the configuration for [VerifyBatch].
type BatchConfig struct {
	// Maximum number of goroutines verifying proofs at once.
	// Zero or negative selects runtime.GOMAXPROCS(0).
	Workers int
}

// VerifyBatch verifies every item against the same root.
//
// The returned bitset has one bit per item;
// bit i is set if and only if items[i] verified.
//
// If ctx is cancelled before every item has been checked,
// VerifyBatch returns nil and the context's error.
func VerifyBatch(
	ctx context.Context,
	h mthash.Hasher,
	root []byte,
	items []BatchItem,
	cfg BatchConfig,
) (*bitset.BitSet, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Bitset words are shared between items,
	// so goroutines write only their own index here
	// and the bitset is filled in after Wait.
	ok := make([]bool, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range items {
		if gCtx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			ok[i] = VerifyProof(h, items[i].Data, items[i].Proof, root)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := bitset.MustNew(uint(len(items)))
	for i, v := range ok {
		if v {
			out.Set(uint(i))
		}
	}
	return out, nil
}
