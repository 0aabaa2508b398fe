package align

import (
	"cmp"
	"slices"

	"github.com/cottand/palletgen/metadata"
)

// Duplicate is a snapshot dropped by Distinct
type Duplicate struct {
	SpecVersion uint32
	BlockNumber *uint32
	// KeptBlock is the block number of the snapshot kept for this spec version
	KeptBlock *uint32
	// SameContent reports whether the dropped snapshot had the same fingerprint as the kept one
	SameContent bool
}

// Distinct keeps the first snapshot of every spec version, in the given order
func Distinct(snapshots []*metadata.Snapshot) ([]*metadata.Snapshot, []Duplicate) {
	kept := make(map[uint32]*metadata.Snapshot)
	var out []*metadata.Snapshot
	var dups []Duplicate
	for _, s := range snapshots {
		if first, ok := kept[s.SpecVersion]; ok {
			dup := Duplicate{
				SpecVersion: s.SpecVersion,
				BlockNumber: s.BlockNumber,
				KeptBlock:   first.BlockNumber,
				SameContent: first.Fingerprint() == s.Fingerprint(),
			}
			dups = append(dups, dup)
			logger.Warn("snapshot has a spec version already seen, skipping it",
				"specVersion", s.SpecVersion,
				"block", blockAttr(s.BlockNumber),
				"keptBlock", blockAttr(first.BlockNumber),
				"sameContent", dup.SameContent)
			continue
		}
		kept[s.SpecVersion] = s
		out = append(out, s)
	}
	return out, dups
}

// SortByVersion orders snapshots by ascending spec version, stably
func SortByVersion(snapshots []*metadata.Snapshot) {
	slices.SortStableFunc(snapshots, func(a, b *metadata.Snapshot) int {
		return cmp.Compare(a.SpecVersion, b.SpecVersion)
	})
}

func blockAttr(b *uint32) any {
	if b == nil {
		return "latest"
	}
	return *b
}
