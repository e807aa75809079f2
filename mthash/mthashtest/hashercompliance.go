// Package mthashtest contains a compliance suite
// that any [mthash.Hasher] implementation should pass.
package mthashtest

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vwxi/merkle-tree/mthash"
)

type HasherFactory func() mthash.Hasher

func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("size is positive", func(t *testing.T) {
		t.Parallel()

		require.Positive(t, f().Size())
	})

	t.Run("leaf is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		dst01 := h.Leaf([]byte("deterministic_data"), nil)
		dst02 := h.Leaf([]byte("deterministic_data"), nil)

		require.Equal(t, dst01, dst02)
		require.Len(t, dst01, h.Size())
	})

	t.Run("leaf appends to dst", func(t *testing.T) {
		t.Parallel()

		h := f()

		prefix := []byte("prefix")
		out := h.Leaf([]byte("data"), bytes.Clone(prefix))

		require.Len(t, out, len(prefix)+h.Size())
		require.Equal(t, prefix, out[:len(prefix)])
		require.Equal(t, h.Leaf([]byte("data"), nil), out[len(prefix):])
	})

	t.Run("leaf respects content", func(t *testing.T) {
		t.Parallel()

		h := f()

		require.NotEqual(
			t,
			h.Leaf([]byte("hello"), nil),
			h.Leaf([]byte("hellp"), nil),
		)
	})

	t.Run("node is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()
		l := h.Leaf([]byte("left"), nil)
		r := h.Leaf([]byte("right"), nil)

		require.Equal(t, h.Node(l, r, nil), h.Node(l, r, nil))
		require.Len(t, h.Node(l, r, nil), h.Size())
	})

	t.Run("node respects order", func(t *testing.T) {
		t.Parallel()

		h := f()
		l := h.Leaf([]byte("left"), nil)
		r := h.Leaf([]byte("right"), nil)

		require.NotEqual(t, h.Node(l, r, nil), h.Node(r, l, nil))
	})

	t.Run("leaf and node domains are separate", func(t *testing.T) {
		t.Parallel()

		h := f()
		l := h.Leaf([]byte("left"), nil)
		r := h.Leaf([]byte("right"), nil)

		// Presenting the concatenated children as leaf data
		// must not reproduce the node commitment.
		joined := append(bytes.Clone(l), r...)
		require.NotEqual(t, h.Node(l, r, nil), h.Leaf(joined, nil))
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		h := f()
		want := h.Leaf([]byte("concurrent"), nil)

		var wg sync.WaitGroup
		results := make([][]byte, 16)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = h.Leaf([]byte("concurrent"), nil)
			}()
		}
		wg.Wait()

		for _, got := range results {
			require.Equal(t, want, got)
		}
	})
}
