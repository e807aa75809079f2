package merkletree

import (
	"errors"
	"fmt"
)

// ErrStructural is matched by every [*StructuralError] through [errors.Is].
var ErrStructural = errors.New("merkle tree structural invariant violated")

// ErrLeafIndexOutOfRange is returned when a leaf index
// does not refer to a leaf that has been appended.
var ErrLeafIndexOutOfRange = errors.New("leaf index out of range")

// StructuralError is returned from [*Tree.Append]
// when the tree's positional invariants do not hold.
// With the built-in hasher a correctly functioning tree never returns it;
// seeing it means either the slot slice has been corrupted
// or a custom [mthash.Hasher] did not write exactly one slot.
type StructuralError struct {
	// The operation that detected the problem.
	Op string

	// The slot position being processed, and the slot count at the time.
	Pos, Size uint

	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf(
		"%s: %s (position %d, size %d)", e.Op, e.Reason, e.Pos, e.Size,
	)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}
