package align

import (
	"math"
	"testing"

	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func versionedSnapshot(version uint32, maxID metadata.TypeID) *metadata.Snapshot {
	s := metadata.NewSnapshot(version)
	s.Add(
		metadata.NewPrimitive(0, "u32"),
		metadata.NewComposite(5, []string{"m", "Foo"}, metadata.NamedField("a", 0)),
		metadata.NewSequence(maxID, 5),
	)
	s.AddModule(&metadata.Module{
		Index: 3,
		Name:  "M",
		Storage: &metadata.Storage{Prefix: "M", Entries: []metadata.Entry{
			metadata.MapEntry("Foos", 0, 5),
		}},
	})
	return s
}

func TestAlignMakesRangesDisjoint(t *testing.T) {
	v1 := versionedSnapshot(1, 99)
	v2 := versionedSnapshot(2, 99)
	v3 := versionedSnapshot(3, 20)

	shifts, err := Align([]*metadata.Snapshot{v1, v2, v3})
	require.NoError(t, err)
	require.Len(t, shifts, 3)

	assert.Equal(t, Shift{SpecVersion: 1, Offset: 0, Low: 0, High: 99}, shifts[0])
	assert.Equal(t, Shift{SpecVersion: 2, Offset: 100, Low: 100, High: 199}, shifts[1])
	// the running maximum dominates the snapshot's own size
	assert.Equal(t, Shift{SpecVersion: 3, Offset: 200, Low: 200, High: 220}, shifts[2])

	assert.ElementsMatch(t, []metadata.TypeID{0, 5, 99}, metadata.SortedTypeIDs(v1.Types))
	assert.ElementsMatch(t, []metadata.TypeID{100, 105, 199}, metadata.SortedTypeIDs(v2.Types))
	assert.ElementsMatch(t, []metadata.TypeID{200, 205, 220}, metadata.SortedTypeIDs(v3.Types))
}

func TestAlignShiftsReferences(t *testing.T) {
	v1 := versionedSnapshot(1, 99)
	v2 := versionedSnapshot(2, 99)
	_, err := Align([]*metadata.Snapshot{v1, v2})
	require.NoError(t, err)

	foo := v2.Types[105]
	require.NotNil(t, foo)
	assert.Equal(t, metadata.TypeID(105), foo.ID)
	assert.Equal(t, []metadata.TypeID{100}, foo.References())
	assert.Equal(t, []metadata.TypeID{105}, v2.Types[199].References())

	entry := v2.Modules[3].Storage.Entries[0]
	assert.Equal(t, metadata.TypeID(100), entry.Map.Key)
	assert.Equal(t, metadata.TypeID(105), entry.Map.Value)

	// the first snapshot keeps its ids
	assert.Equal(t, []metadata.TypeID{0}, v1.Types[5].References())
}

func TestAlignSkipsEmptySnapshots(t *testing.T) {
	empty := metadata.NewSnapshot(1)
	v2 := versionedSnapshot(2, 9)
	v3 := versionedSnapshot(3, 9)

	shifts, err := Align([]*metadata.Snapshot{empty, v2, v3})
	require.NoError(t, err)
	assert.Equal(t, metadata.TypeID(0), shifts[1].Offset)
	assert.Equal(t, metadata.TypeID(10), shifts[2].Offset)
}

func TestAlignRejectsIdOverflow(t *testing.T) {
	v1 := versionedSnapshot(1, math.MaxUint32-10)
	v2 := versionedSnapshot(2, 99)

	_, err := Align([]*metadata.Snapshot{v1, v2})
	require.Error(t, err)
	assert.True(t, schemaerr.IsFatal(err))
}

func TestAlignRejectsOffsetPastHighestId(t *testing.T) {
	testCases := []struct {
		name   string
		first  metadata.TypeID
		second metadata.TypeID
	}{
		{name: "prior snapshot at the last id", first: math.MaxUint32, second: 5},
		{name: "later snapshot at the last id", first: 9, second: math.MaxUint32},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v1 := versionedSnapshot(1, tc.first)
			v2 := versionedSnapshot(2, tc.second)

			shifts, err := Align([]*metadata.Snapshot{v1, v2})
			require.Error(t, err)
			se, ok := schemaerr.As(err)
			require.True(t, ok)
			assert.Equal(t, schemaerr.InvalidSnapshot, se.Code())
			assert.Len(t, shifts, 1)
			// the rejected snapshot is left unshifted
			assert.Contains(t, v2.Types, metadata.TypeID(5))
		})
	}
}

func TestDistinct(t *testing.T) {
	block := func(b uint32) *uint32 { return &b }
	a := versionedSnapshot(1, 9)
	a.BlockNumber = block(10)
	b := versionedSnapshot(1, 9)
	b.BlockNumber = block(20)
	c := versionedSnapshot(2, 9)
	d := versionedSnapshot(1, 12)

	kept, dups := Distinct([]*metadata.Snapshot{a, b, c, d})
	assert.Equal(t, []*metadata.Snapshot{a, c}, kept)
	require.Len(t, dups, 2)
	assert.True(t, dups[0].SameContent)
	assert.Equal(t, uint32(10), *dups[0].KeptBlock)
	assert.False(t, dups[1].SameContent)
}

func TestSortByVersion(t *testing.T) {
	snapshots := []*metadata.Snapshot{metadata.NewSnapshot(3), metadata.NewSnapshot(1), metadata.NewSnapshot(2)}
	SortByVersion(snapshots)
	assert.Equal(t, uint32(1), snapshots[0].SpecVersion)
	assert.Equal(t, uint32(2), snapshots[1].SpecVersion)
	assert.Equal(t, uint32(3), snapshots[2].SpecVersion)
}
