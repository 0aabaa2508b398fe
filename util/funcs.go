package util

import (
	"iter"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

func MapIter[A, B any](iter iter.Seq[A], f func(A) B) iter.Seq[B] {
	return func(yield func(B) bool) {
		for v := range iter {
			if !yield(f(v)) {
				return
			}
		}
	}
}

func SetFromSeq[V comparable](s iter.Seq[V], size int) *set.Set[V] {
	newSet := set.New[V](size)
	for item := range s {
		newSet.Insert(item)
	}
	return newSet
}

// AppendMissing appends a copy of every element of src whose key is not yet
// in dst, keeping the order of both. It returns the new slice and how many
// elements were added.
func AppendMissing[A any, K comparable](dst, src []A, key func(A) K, copyOf func(A) A) ([]A, int) {
	keys := SetFromSeq(MapIter(slices.Values(dst), key), len(dst))
	added := 0
	for _, elem := range src {
		if !keys.Insert(key(elem)) {
			continue
		}
		dst = append(dst, copyOf(elem))
		added++
	}
	return dst, added
}
