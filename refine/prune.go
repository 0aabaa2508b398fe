package refine

import (
	"slices"
	"sort"

	"github.com/cottand/palletgen/metadata"
	"github.com/xtgo/set"
)

type idSlice []metadata.TypeID

func (s idSlice) Len() int           { return len(s) }
func (s idSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s idSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// referenced returns every id referenced by a node or module of s, sorted and unique
func referenced(s *metadata.Snapshot) idSlice {
	var ids idSlice
	for _, id := range metadata.SortedTypeIDs(s.Types) {
		ids = append(ids, s.Types[id].References()...)
	}
	for _, idx := range metadata.SortedModuleIndexes(s.Modules) {
		ids = append(ids, s.Modules[idx].References()...)
	}
	sort.Sort(ids)
	return ids[:set.Uniq(ids)]
}

// PruneOrphans deletes the wrapper sources of rewrites that nothing in s
// references anymore, and returns the deleted ids in ascending order.
// Nodes which are not wrapper sources are never removed, even if unreferenced.
func PruneOrphans(s *metadata.Snapshot, rewrites metadata.Mapping) []metadata.TypeID {
	refs := referenced(s)
	var pruned []metadata.TypeID
	for _, id := range rewrites.Keys() {
		if _, stillThere := s.Types[id]; !stillThere {
			continue
		}
		if _, found := slices.BinarySearch(refs, id); found {
			continue
		}
		delete(s.Types, id)
		pruned = append(pruned, id)
	}
	return pruned
}
