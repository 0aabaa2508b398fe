package resolve

import (
	"testing"

	"github.com/cottand/palletgen/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func types(nodes ...*metadata.Node) map[metadata.TypeID]*metadata.Node {
	return metadata.NewSnapshot(0).Add(nodes...).Types
}

func TestNames(t *testing.T) {
	graph := types(
		metadata.NewPrimitive(0, "u8"),
		metadata.NewSequence(1, 0),
		metadata.NewArray(2, 0, 32),
		metadata.NewCompact(3, 0),
		metadata.NewTuple(4, 0, 1),
		metadata.NewTuple(5),
		metadata.NewBitSequence(6, 0, 0),
		metadata.NewComposite(7, []string{"sp_core", "crypto", "AccountId32"}, metadata.UnnamedField(2)),
		metadata.NewVariant(8, []string{"pallet", "Call"}),
		metadata.NewComposite(9, nil),
		metadata.NewSequence(10, 7),
	)
	testCases := []struct {
		id      metadata.TypeID
		noTag   string
		withTag string
	}{
		{0, "u8", "u8"},
		{1, "Vec<u8>", "Vec<u8>"},
		{2, "types.base.Arr32u8", "v9.types.base.Arr32u8"},
		{3, "Compact<u8>", "Compact<u8>"},
		{4, "Tuple<u8,Vec<u8>>", "Tuple<u8,Vec<u8>>"},
		{5, "Unit", "Unit"},
		{6, "BitSeq", "BitSeq"},
		{7, "sp_core.crypto.AccountId32", "v9.sp_core.crypto.AccountId32"},
		{8, "pallet.Call", "v9.pallet.Call"},
		{9, "Type9", "v9.Type9"},
	}

	version := uint32(9)
	plain := New("node", "Runtime", graph, nil)
	tagged := New("node", "Runtime", graph, &version)
	for _, tc := range testCases {
		t.Run(tc.noTag, func(t *testing.T) {
			r, ok := plain.Get(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.noTag, r.DisplayName())

			r, ok = tagged.Get(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.withTag, r.DisplayName())
			assert.Equal(t, tc.noTag, tagged.BaseName(r))
		})
	}

	// inline names embed the tagged name of what they contain
	r, ok := tagged.Get(10)
	require.True(t, ok)
	assert.Equal(t, "Vec<v9.sp_core.crypto.AccountId32>", r.DisplayName())
}

func TestSharedPathsGetCounterSuffix(t *testing.T) {
	r := New("node", "Runtime", types(
		metadata.NewPrimitive(0, "u8"),
		metadata.NewComposite(3, []string{"B", "Bounded"}, metadata.UnnamedField(0)),
		metadata.NewComposite(1, []string{"B", "Bounded"}, metadata.UnnamedField(0)),
		metadata.NewComposite(2, []string{"B", "Unique"}, metadata.UnnamedField(0)),
	), nil)

	names := map[metadata.TypeID]string{}
	for id, resolved := range r.All() {
		names[id] = resolved.DisplayName()
	}
	assert.Equal(t, map[metadata.TypeID]string{
		0: "u8",
		1: "B.BoundedT1",
		2: "B.Unique",
		3: "B.BoundedT2",
	}, names)
}

func TestAllIsOrdered(t *testing.T) {
	r := New("node", "Runtime", types(
		metadata.NewPrimitive(30, "u8"),
		metadata.NewPrimitive(2, "u16"),
		metadata.NewPrimitive(17, "u32"),
	), nil)
	var ids []metadata.TypeID
	for id := range r.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []metadata.TypeID{2, 17, 30}, ids)
	assert.Equal(t, 3, r.Len())
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name, in, tag, expected string
	}{
		{"leading tag", "v12.pallet.Foo", "v12", "pallet.Foo"},
		{"no tag", "pallet.Foo", "", "pallet.Foo"},
		{"other version kept", "v13.pallet.Foo", "v12", "v13.pallet.Foo"},
		{"only whole segments", "v12x.Foo", "v12", "v12x.Foo"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.in, tc.tag))
		})
	}
}

func TestFromTable(t *testing.T) {
	version := uint32(4)
	src := New("node", "Runtime", types(metadata.NewPrimitive(1, "bool")), &version)
	v, ok := src.SpecVersion()
	require.True(t, ok)
	assert.Equal(t, uint32(4), v)
	assert.Equal(t, "v4", src.SpecVersionTag())

	r := FromTable(src.Runtime(), src.Project(), src.Table())
	_, ok = r.SpecVersion()
	assert.False(t, ok)
	assert.Empty(t, r.SpecVersionTag())
	resolved, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "bool", resolved.DisplayName())

	assert.Equal(t, 0, FromTable("node", "Runtime", nil).Len())
}

func TestGenerated(t *testing.T) {
	assert.True(t, Generated(metadata.NewComposite(0, []string{"a", "B"})))
	assert.True(t, Generated(metadata.NewVariant(0, []string{"a", "B"})))
	assert.True(t, Generated(metadata.NewArray(0, 1, 2)))
	assert.False(t, Generated(metadata.NewSequence(0, 1)))
	assert.False(t, Generated(metadata.NewPrimitive(0, "u8")))
}
