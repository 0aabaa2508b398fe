// Package align makes the type ids of successive snapshots disjoint so
// their graphs can be merged
package align

import (
	"fmt"
	"math"

	"github.com/cottand/palletgen/internal/log"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/schemaerr"
)

var logger = log.DefaultLogger.With("section", "align")

// Shift records the offset applied to one snapshot and the id range it
// occupies afterwards
type Shift struct {
	SpecVersion uint32
	Offset      metadata.TypeID
	Low, High   metadata.TypeID
}

// Align shifts every snapshot after the first so that its ids are greater
// than every id of the snapshots before it. Snapshots are processed in the
// given order, because each offset depends on the running maximum.
func Align(snapshots []*metadata.Snapshot) ([]Shift, error) {
	shifts := make([]Shift, 0, len(snapshots))
	var priorHighest metadata.TypeID
	seen := false
	for _, s := range snapshots {
		currentMax, ok := metadata.MaxTypeID(s.Types)
		if !ok {
			shifts = append(shifts, Shift{SpecVersion: s.SpecVersion})
			continue
		}
		low := minTypeID(s.Types)
		if !seen {
			shifts = append(shifts, Shift{SpecVersion: s.SpecVersion, Low: low, High: currentMax})
			priorHighest = currentMax
			seen = true
			continue
		}

		wide := max(uint64(currentMax), uint64(priorHighest)) + 1
		if wide+uint64(currentMax) > math.MaxUint32 {
			return shifts, schemaerr.New(schemaerr.NewInvalidSnapshot{
				Source: fmt.Sprintf("spec version %d", s.SpecVersion),
				Reason: fmt.Sprintf("shifting ids by %d overflows the type id range", wide),
			})
		}
		offset := metadata.TypeID(wide)
		Offset(s, offset)
		shift := Shift{
			SpecVersion: s.SpecVersion,
			Offset:      offset,
			Low:         low + offset,
			High:        currentMax + offset,
		}
		shifts = append(shifts, shift)
		priorHighest = shift.High
		logger.Debug("aligned snapshot",
			"specVersion", s.SpecVersion,
			"offset", offset,
			"low", shift.Low,
			"high", shift.High)
	}
	return shifts, nil
}

// Offset adds offset to every node id of s and every reference to one,
// in nodes and in modules. The map is re-keyed to the shifted ids only.
func Offset(s *metadata.Snapshot, offset metadata.TypeID) {
	shifted := make(map[metadata.TypeID]*metadata.Node, len(s.Types))
	for _, id := range metadata.SortedTypeIDs(s.Types) {
		n := s.Types[id]
		metadata.ShiftNode(n, offset)
		shifted[n.ID] = n
	}
	s.Types = shifted
	for _, idx := range metadata.SortedModuleIndexes(s.Modules) {
		metadata.ShiftModule(s.Modules[idx], offset)
	}
}

func minTypeID(types map[metadata.TypeID]*metadata.Node) metadata.TypeID {
	ids := metadata.SortedTypeIDs(types)
	return ids[0]
}
