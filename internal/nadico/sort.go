package nadico

import "sort"

// CompareCount orders expressions by instance count; unset counts are zero.
func CompareCount(a, b *Expression) int {
	switch ca, cb := a.CountValue(), b.CountValue(); {
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	}
	return 0
}

// SortByCount stably sorts xs by count, keeping the relative order of equal
// counts.
func SortByCount(xs []*Expression, ascending bool) {
	sort.SliceStable(xs, func(i, j int) bool {
		c := CompareCount(xs[i], xs[j])
		if ascending {
			return c < 0
		}
		return c > 0
	})
}
