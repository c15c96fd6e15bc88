// Package height provides a cumulative height index over paragraph heights.
//
// Index is a Fenwick (binary indexed) tree that answers "how tall is
// everything above paragraph N" and "which paragraph sits at pixel Y" in
// O(log n). Index is not safe for concurrent use.
package height

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an index is beyond the valid bounds.
var ErrOutOfRange = errors.New("index out of range")

// RangeError describes a failed operation on an invalid index.
type RangeError struct {
	Op    string
	Index int
	Size  int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("height: %s: index %d out of range [0,%d)", e.Op, e.Index, e.Size)
}

// Unwrap returns ErrOutOfRange.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// Index is a prefix-sum structure over per-paragraph heights.
type Index struct {
	heights []float64 // 0-indexed
	tree    []float64 // 1-indexed, len(heights)+1
}

// New creates an index of n entries, each of defaultHeight.
func New(n int, defaultHeight float64) *Index {
	idx := &Index{}
	idx.Resize(n, defaultHeight)
	return idx
}

// Resize resets the index to n entries of defaultHeight.
func (x *Index) Resize(n int, defaultHeight float64) {
	if n < 0 {
		n = 0
	}
	x.heights = make([]float64, n)
	for i := range x.heights {
		x.heights[i] = defaultHeight
	}
	x.rebuild()
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.heights)
}

// Clear removes all entries.
func (x *Index) Clear() {
	x.heights = nil
	x.tree = nil
}

// SetHeight replaces the height at index and propagates the delta.
func (x *Index) SetHeight(index int, height float64) error {
	if index < 0 || index >= len(x.heights) {
		return &RangeError{Op: "set height", Index: index, Size: len(x.heights)}
	}
	delta := height - x.heights[index]
	x.heights[index] = height
	x.update(index, delta)
	return nil
}

// Height returns the height stored at index.
func (x *Index) Height(index int) (float64, error) {
	if index < 0 || index >= len(x.heights) {
		return 0, &RangeError{Op: "height", Index: index, Size: len(x.heights)}
	}
	return x.heights[index], nil
}

// PrefixSum returns the sum of heights in [0, index).
// index is clamped to [0, Len()].
func (x *Index) PrefixSum(index int) float64 {
	if index <= 0 {
		return 0
	}
	if index > len(x.heights) {
		index = len(x.heights)
	}
	// Sum from the largest block down, the order FindIndexForY adds them.
	pos := 0
	var sum float64
	for mask := highestBit(index); mask > 0; mask >>= 1 {
		if index&mask != 0 {
			pos += mask
			sum += x.tree[pos]
		}
	}
	return sum
}

// Y returns the top edge of the paragraph at index.
func (x *Index) Y(index int) float64 {
	return x.PrefixSum(index)
}

// TotalHeight returns the sum of all heights.
func (x *Index) TotalHeight() float64 {
	return x.PrefixSum(len(x.heights))
}

// FindIndexForY returns the index of the paragraph whose span contains y.
// Negative y yields 0; y at or past the total height yields Len().
func (x *Index) FindIndexForY(y float64) int {
	n := len(x.heights)
	if n == 0 || y < 0 {
		return 0
	}
	if y >= x.TotalHeight() {
		return n
	}

	pos := 0
	var sum float64
	for mask := highestBit(n); mask > 0; mask >>= 1 {
		next := pos + mask
		if next <= n && sum+x.tree[next] <= y {
			pos = next
			sum += x.tree[next]
		}
	}
	return pos
}

// Insert adds an entry at index, shifting later entries up.
// index == Len() appends.
func (x *Index) Insert(index int, height float64) error {
	if index < 0 || index > len(x.heights) {
		return &RangeError{Op: "insert", Index: index, Size: len(x.heights)}
	}
	x.heights = append(x.heights, 0)
	copy(x.heights[index+1:], x.heights[index:])
	x.heights[index] = height
	x.rebuild()
	return nil
}

// Remove deletes the entry at index, shifting later entries down.
func (x *Index) Remove(index int) error {
	if index < 0 || index >= len(x.heights) {
		return &RangeError{Op: "remove", Index: index, Size: len(x.heights)}
	}
	x.heights = append(x.heights[:index], x.heights[index+1:]...)
	x.rebuild()
	return nil
}

// Heights returns a copy of the stored heights.
func (x *Index) Heights() []float64 {
	out := make([]float64, len(x.heights))
	copy(out, x.heights)
	return out
}

// rebuild recomputes the tree from heights in O(n).
func (x *Index) rebuild() {
	n := len(x.heights)
	if cap(x.tree) >= n+1 {
		x.tree = x.tree[:n+1]
	} else {
		x.tree = make([]float64, n+1)
	}
	x.tree[0] = 0
	copy(x.tree[1:], x.heights)
	for i := 1; i <= n; i++ {
		if j := i + lowbit(i); j <= n {
			x.tree[j] += x.tree[i]
		}
	}
}

func (x *Index) update(index int, delta float64) {
	for i := index + 1; i <= len(x.heights); i += lowbit(i) {
		x.tree[i] += delta
	}
}

func lowbit(i int) int {
	return i & -i
}

// highestBit returns the largest power of two <= n, or 0 for n == 0.
func highestBit(n int) int {
	bit := 1
	for bit <= n {
		bit <<= 1
	}
	return bit >> 1
}
