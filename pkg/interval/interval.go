// SPDX-License-Identifier: MIT

// Package interval merges half-open intervals [lo, hi) over any
// totally-ordered, copyable key into the minimal set of disjoint intervals
// covering the same points (spec.md §4.1).
package interval

// Ordered is the constraint a key type must satisfy to be used in an
// Interval: a total order expressed as a three-way Compare, the same shape
// netip.Addr and the package's own ipmath.U64/ipmath.Endpoint types use.
// A native ordered type like uint64 doesn't implement this directly — wrap
// it (see ipmath.U64) — which is what lets the same merge code run over
// both the v4 (U64) and v6 (Endpoint) address-interval key spaces.
type Ordered[T any] interface {
	Compare(T) int
}

// Interval is a half-open range [Lo, Hi). Constructing one with Lo >= Hi is
// the caller's error to avoid; the merge functions below assume Lo < Hi for
// every input.
type Interval[T Ordered[T]] struct {
	Lo, Hi T
}

func less[T Ordered[T]](a, b T) bool { return a.Compare(b) < 0 }

func max[T Ordered[T]](a, b T) T {
	if less(a, b) {
		return b
	}
	return a
}

// sortByLoThenHi sorts a copy of in ascending by (Lo, Hi) — the tie-break
// spec.md §4.1 requires ("prefer the larger Hi; merging subsumes the
// shorter") falls out naturally from extending Hi with max() during the
// walk below, regardless of which of the tied elements sorts first.
func sortByLoThenHi[T Ordered[T]](in []Interval[T]) []Interval[T] {
	out := make([]Interval[T], len(in))
	copy(out, in)
	// Insertion sort: the merge's own walk is O(n), and these input sizes
	// (prefix counts, interval counts) are small enough that a dependency
	// on sort.Slice buys nothing a hand-rolled comparator doesn't already
	// give for a Compare-based key with no natural less-than operator.
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && lessPair(out[j], out[j-1]) {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}

func lessPair[T Ordered[T]](a, b Interval[T]) bool {
	c := a.Lo.Compare(b.Lo)
	if c != 0 {
		return c < 0
	}
	return a.Hi.Compare(b.Hi) < 0
}

// Merge is the canonical merge implementation: sort by (Lo, Hi) ascending,
// then walk once, extending the current output interval whenever the next
// input's Lo does not exceed the running Hi (adjacency through a shared
// endpoint counts as overlap, because the representation is half-open).
func Merge[T Ordered[T]](in []Interval[T]) []Interval[T] {
	return MergeForwardCopy(in)
}

// MergeForwardCopy merges by walking the sorted input forward and copying
// surviving intervals into a fresh output slice.
func MergeForwardCopy[T Ordered[T]](in []Interval[T]) []Interval[T] {
	if len(in) == 0 {
		return nil
	}
	sorted := sortByLoThenHi(in)
	out := make([]Interval[T], 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if less(cur.Hi, next.Lo) {
			out = append(out, cur)
			cur = next
			continue
		}
		cur.Hi = max(cur.Hi, next.Hi)
	}
	out = append(out, cur)
	return out
}

// MergeForwardInPlace merges by walking forward and compacting survivors
// into the front of a copy of the input slice's backing array, trimming the
// result at the end. Produces the same multiset as MergeForwardCopy.
func MergeForwardInPlace[T Ordered[T]](in []Interval[T]) []Interval[T] {
	if len(in) == 0 {
		return nil
	}
	work := append([]Interval[T](nil), sortByLoThenHi(in)...)
	w := 0
	for r := 1; r < len(work); r++ {
		if less(work[w].Hi, work[r].Lo) {
			w++
			work[w] = work[r]
			continue
		}
		work[w].Hi = max(work[w].Hi, work[r].Hi)
	}
	return work[:w+1]
}

// MergeBackwardCopy merges by walking the sorted input in reverse and
// copying survivors into a fresh output slice, then reversing the result
// back to ascending order (callers must see ascending-by-Lo regardless of
// which internal direction a variant walks — spec.md §4.1).
func MergeBackwardCopy[T Ordered[T]](in []Interval[T]) []Interval[T] {
	if len(in) == 0 {
		return nil
	}
	sorted := sortByLoThenHi(in)
	// reach[i] is the largest Hi among sorted[0..i]: an earlier interval
	// with a long Hi can overlap cur even when its direct predecessor does not.
	reach := make([]T, len(sorted))
	reach[0] = sorted[0].Hi
	for i := 1; i < len(sorted); i++ {
		reach[i] = max(reach[i-1], sorted[i].Hi)
	}
	var out []Interval[T]
	cur := sorted[len(sorted)-1]
	for i := len(sorted) - 2; i >= 0; i-- {
		prev := sorted[i]
		if less(reach[i], cur.Lo) {
			out = append(out, cur)
			cur = prev
			continue
		}
		cur.Lo = prev.Lo
		cur.Hi = max(cur.Hi, prev.Hi)
	}
	out = append(out, cur)
	reverse(out)
	return out
}

// MergeBackwardInPlace is MergeBackwardCopy's in-place-compaction sibling:
// same reverse walk, but survivors are compacted into a copy of the
// backing array's tail instead of a separately grown slice.
func MergeBackwardInPlace[T Ordered[T]](in []Interval[T]) []Interval[T] {
	if len(in) == 0 {
		return nil
	}
	work := append([]Interval[T](nil), sortByLoThenHi(in)...)
	reach := make([]T, len(work))
	reach[0] = work[0].Hi
	for i := 1; i < len(work); i++ {
		reach[i] = max(reach[i-1], work[i].Hi)
	}
	w := len(work) - 1
	cur := work[len(work)-1]
	for i := len(work) - 2; i >= 0; i-- {
		prev := work[i]
		if less(reach[i], cur.Lo) {
			work[w] = cur
			w--
			cur = prev
			continue
		}
		cur.Lo = prev.Lo
		cur.Hi = max(cur.Hi, prev.Hi)
	}
	work[w] = cur
	return work[w:]
}

// Coalesce merges via a left fold over the sorted input, threading the
// accumulated output slice through each step. Equivalent in output to the
// other four variants; written in a reduce/fold style rather than an
// explicit index walk.
func Coalesce[T Ordered[T]](in []Interval[T]) []Interval[T] {
	sorted := sortByLoThenHi(in)
	return fold(sorted, nil, func(acc []Interval[T], next Interval[T]) []Interval[T] {
		if len(acc) == 0 {
			return append(acc, next)
		}
		last := &acc[len(acc)-1]
		if less(last.Hi, next.Lo) {
			return append(acc, next)
		}
		last.Hi = max(last.Hi, next.Hi)
		return acc
	})
}

func fold[T Ordered[T]](in []Interval[T], init []Interval[T], f func([]Interval[T], Interval[T]) []Interval[T]) []Interval[T] {
	acc := init
	for _, v := range in {
		acc = f(acc, v)
	}
	return acc
}

func reverse[T Ordered[T]](s []Interval[T]) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
