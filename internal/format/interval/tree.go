// Package interval provides an augmented interval tree over half-open
// ranges of character offsets.
//
// The tree is a height-balanced (AVL) binary search tree ordered by range
// start and augmented with the maximum range end of every subtree, which
// lets point and overlap queries skip whole subtrees. Every structural
// change is expressed through join, so bulk removal in a single post-order
// pass leaves the tree balanced. Tree is not safe for concurrent use.
package interval

// Range is a half-open interval [Start, End) carrying a value.
type Range[V any] struct {
	Start int
	End   int
	Value V
}

// IsEmpty reports whether the range covers no offsets.
func (r Range[V]) IsEmpty() bool {
	return r.Start >= r.End
}

// Len returns the number of offsets covered.
func (r Range[V]) Len() int {
	if r.Start >= r.End {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether pos lies in [Start, End).
func (r Range[V]) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// Overlaps reports whether the range intersects [start, end).
func (r Range[V]) Overlaps(start, end int) bool {
	return r.Start < end && r.End > start
}

type node[V any] struct {
	rng    Range[V]
	maxEnd int
	height int
	left   *node[V]
	right  *node[V]
}

// Tree stores ranges ordered by start. Ranges with equal starts keep
// insertion order.
type Tree[V any] struct {
	root *node[V]
	size int
}

// New creates an empty tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Len returns the number of stored ranges.
func (t *Tree[V]) Len() int {
	return t.size
}

// Clear removes every range.
func (t *Tree[V]) Clear() {
	t.root = nil
	t.size = 0
}

// Insert adds a range. Empty ranges are ignored.
func (t *Tree[V]) Insert(r Range[V]) {
	if r.IsEmpty() {
		return
	}
	t.root = insert(t.root, &node[V]{rng: r})
	t.size++
}

// RemoveIf removes every range matching pred and returns how many were
// removed. pred is called once per stored range in post-order.
func (t *Tree[V]) RemoveIf(pred func(Range[V]) bool) int {
	removed := 0
	t.root = removeIf(t.root, pred, &removed)
	t.size -= removed
	return removed
}

// FindAt returns every range containing pos, in ascending start order.
func (t *Tree[V]) FindAt(pos int) []Range[V] {
	var out []Range[V]
	collectAt(t.root, pos, &out)
	return out
}

// FindOverlapping returns every range intersecting [start, end), in
// ascending start order.
func (t *Tree[V]) FindOverlapping(start, end int) []Range[V] {
	if start >= end {
		return nil
	}
	var out []Range[V]
	collectOverlapping(t.root, start, end, &out)
	return out
}

// All returns every range in ascending start order.
func (t *Tree[V]) All() []Range[V] {
	out := make([]Range[V], 0, t.size)
	collectAll(t.root, &out)
	return out
}

// ShiftRanges adjusts stored ranges for |delta| characters inserted
// (delta > 0) or deleted (delta < 0) at position.
//
// Ranges ending at or before position are untouched. Ranges straddling
// position move only their end, which never moves before position. Ranges
// starting at or after position translate; on deletion both bounds are
// clamped to position. Ranges left empty are removed.
func (t *Tree[V]) ShiftRanges(position, delta int) {
	if delta == 0 || t.root == nil {
		return
	}
	empty := shift(t.root, position, delta)
	if empty > 0 {
		t.RemoveIf(func(r Range[V]) bool { return r.IsEmpty() })
	}
}

// shiftRange applies an edit at position to a single range.
func shiftRange[V any](r *Range[V], position, delta int) {
	if delta > 0 {
		switch {
		case r.Start >= position:
			r.Start += delta
			r.End += delta
		case r.End > position:
			r.End += delta
		}
		return
	}

	n := -delta
	switch {
	case r.Start >= position:
		r.Start = max(r.Start-n, position)
		r.End = max(r.End-n, position)
	case r.End > position:
		if r.End <= position+n {
			r.End = position
		} else {
			r.End -= n
		}
	}
}

// shift updates every range below n and returns how many became empty.
// The start mapping is monotone, so node order is preserved.
func shift[V any](n *node[V], position, delta int) int {
	if n == nil {
		return 0
	}
	empty := shift(n.left, position, delta) + shift(n.right, position, delta)
	shiftRange(&n.rng, position, delta)
	if n.rng.IsEmpty() {
		empty++
	}
	update(n)
	return empty
}

func collectAt[V any](n *node[V], pos int, out *[]Range[V]) {
	if n == nil || n.maxEnd <= pos {
		return
	}
	collectAt(n.left, pos, out)
	if n.rng.Contains(pos) {
		*out = append(*out, n.rng)
	}
	if n.rng.Start <= pos {
		collectAt(n.right, pos, out)
	}
}

func collectOverlapping[V any](n *node[V], start, end int, out *[]Range[V]) {
	if n == nil || n.maxEnd <= start {
		return
	}
	collectOverlapping(n.left, start, end, out)
	if n.rng.Overlaps(start, end) {
		*out = append(*out, n.rng)
	}
	if n.rng.Start < end {
		collectOverlapping(n.right, start, end, out)
	}
}

func collectAll[V any](n *node[V], out *[]Range[V]) {
	if n == nil {
		return
	}
	collectAll(n.left, out)
	*out = append(*out, n.rng)
	collectAll(n.right, out)
}

func insert[V any](t, n *node[V]) *node[V] {
	if t == nil {
		n.left, n.right = nil, nil
		update(n)
		return n
	}
	if n.rng.Start < t.rng.Start {
		return join(insert(t.left, n), t, t.right)
	}
	return join(t.left, t, insert(t.right, n))
}

func removeIf[V any](n *node[V], pred func(Range[V]) bool, removed *int) *node[V] {
	if n == nil {
		return nil
	}
	l := removeIf(n.left, pred, removed)
	r := removeIf(n.right, pred, removed)
	if pred(n.rng) {
		*removed++
		return join2(l, r)
	}
	return join(l, n, r)
}

// join returns a balanced tree holding l, then n, then r. Every range in l
// must order before n and every range in r after it.
func join[V any](l, n, r *node[V]) *node[V] {
	switch {
	case height(l) > height(r)+1:
		return joinRight(l, n, r)
	case height(r) > height(l)+1:
		return joinLeft(l, n, r)
	}
	n.left, n.right = l, r
	update(n)
	return n
}

// joinRight attaches n and r along the right spine of the taller l.
func joinRight[V any](l, n, r *node[V]) *node[V] {
	c := l.right
	if height(c) <= height(r)+1 {
		n.left, n.right = c, r
		update(n)
		if height(n) <= height(l.left)+1 {
			l.right = n
			update(l)
			return l
		}
		l.right = rotateRight(n)
		update(l)
		return rotateLeft(l)
	}
	t := joinRight(c, n, r)
	l.right = t
	update(l)
	if height(t) <= height(l.left)+1 {
		return l
	}
	return rotateLeft(l)
}

// joinLeft attaches l and n along the left spine of the taller r.
func joinLeft[V any](l, n, r *node[V]) *node[V] {
	c := r.left
	if height(c) <= height(l)+1 {
		n.left, n.right = l, c
		update(n)
		if height(n) <= height(r.right)+1 {
			r.left = n
			update(r)
			return r
		}
		r.left = rotateLeft(n)
		update(r)
		return rotateRight(r)
	}
	t := joinLeft(l, n, c)
	r.left = t
	update(r)
	if height(t) <= height(r.right)+1 {
		return r
	}
	return rotateRight(r)
}

// join2 concatenates two trees without a middle node.
func join2[V any](l, r *node[V]) *node[V] {
	if l == nil {
		return r
	}
	rest, last := splitLast(l)
	return join(rest, last, r)
}

// splitLast detaches the rightmost node of t.
func splitLast[V any](t *node[V]) (*node[V], *node[V]) {
	if t.right == nil {
		return t.left, t
	}
	rest, last := splitLast(t.right)
	return join(t.left, t, rest), last
}

func rotateLeft[V any](n *node[V]) *node[V] {
	r := n.right
	n.right = r.left
	update(n)
	r.left = n
	update(r)
	return r
}

func rotateRight[V any](n *node[V]) *node[V] {
	l := n.left
	n.left = l.right
	update(n)
	l.right = n
	update(l)
	return l
}

func height[V any](n *node[V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

// update recomputes height and maxEnd from the children.
func update[V any](n *node[V]) {
	n.height = 1 + max(height(n.left), height(n.right))
	n.maxEnd = n.rng.End
	if n.left != nil && n.left.maxEnd > n.maxEnd {
		n.maxEnd = n.left.maxEnd
	}
	if n.right != nil && n.right.maxEnd > n.maxEnd {
		n.maxEnd = n.right.maxEnd
	}
}
