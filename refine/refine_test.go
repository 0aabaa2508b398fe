package refine

import (
	"testing"

	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boundedSnapshot has two instantiations of B.Bounded (10 and 11) wrapping
// the sequence 20, and one node or module slot of every kind pointing at them
func boundedSnapshot() *metadata.Snapshot {
	s := metadata.NewSnapshot(1)
	s.Add(
		metadata.NewComposite(10, []string{"B", "Bounded"}, metadata.UnnamedField(20)),
		metadata.NewComposite(11, []string{"B", "Bounded"}, metadata.UnnamedField(20)),
		metadata.NewSequence(20, 30),
		metadata.NewPrimitive(30, "u8"),
		metadata.NewComposite(40, []string{"x", "Holder"},
			metadata.NamedField("a", 10),
			metadata.NamedField("b", 11)),
		metadata.NewTuple(41, 10, 11),
		metadata.NewVariant(42, []string{"x", "Choice"},
			metadata.NewCase("One", 0, metadata.UnnamedField(10)),
			metadata.NewCase("Two", 1)),
		metadata.NewSequence(43, 11),
		metadata.NewArray(44, 10, 4),
		metadata.NewCompact(45, 10),
		metadata.NewBitSequence(46, 10, 11),
	)
	s.AddModule(&metadata.Module{
		Index:     0,
		Name:      "Pallet",
		Calls:     &metadata.VariantRef{TypeID: 42},
		Constants: []metadata.Constant{{Name: "Max", TypeID: 11}},
		Storage: &metadata.Storage{
			Prefix: "Pallet",
			Entries: []metadata.Entry{
				metadata.PlainEntry("Plain", 10),
				metadata.MapEntry("Map", 10, 11, "Blake2_128Concat"),
			},
		},
	})
	return s
}

func allReferences(s *metadata.Snapshot) []metadata.TypeID {
	var refs []metadata.TypeID
	for _, n := range s.Types {
		refs = append(refs, n.References()...)
	}
	for _, m := range s.Modules {
		refs = append(refs, m.References()...)
	}
	return refs
}

func TestDetect(t *testing.T) {
	testCases := []struct {
		name     string
		nodes    []*metadata.Node
		expected metadata.Mapping
	}{
		{
			name: "two instantiations sharing a path",
			nodes: []*metadata.Node{
				metadata.NewComposite(1, []string{"B", "Vec"}, metadata.UnnamedField(3)),
				metadata.NewComposite(2, []string{"B", "Vec"}, metadata.UnnamedField(4)),
				metadata.NewSequence(3, 5),
				metadata.NewSequence(4, 5),
				metadata.NewPrimitive(5, "u8"),
			},
			expected: metadata.Mapping{1: 3, 2: 4},
		},
		{
			name: "unique path is not a wrapper",
			nodes: []*metadata.Node{
				metadata.NewComposite(1, []string{"B", "Vec"}, metadata.UnnamedField(3)),
				metadata.NewSequence(3, 5),
				metadata.NewPrimitive(5, "u8"),
			},
			expected: metadata.Mapping{},
		},
		{
			name: "only single-field members of the group",
			nodes: []*metadata.Node{
				metadata.NewComposite(1, []string{"B", "Vec"}, metadata.UnnamedField(3)),
				metadata.NewComposite(2, []string{"B", "Vec"}, metadata.UnnamedField(3), metadata.UnnamedField(5)),
				metadata.NewSequence(3, 5),
				metadata.NewPrimitive(5, "u8"),
			},
			expected: metadata.Mapping{1: 3},
		},
		{
			name: "field must reference a sequence",
			nodes: []*metadata.Node{
				metadata.NewComposite(1, []string{"B", "Vec"}, metadata.UnnamedField(5)),
				metadata.NewComposite(2, []string{"B", "Vec"}, metadata.UnnamedField(6)),
				metadata.NewPrimitive(5, "u8"),
				metadata.NewArray(6, 5, 2),
			},
			expected: metadata.Mapping{},
		},
		{
			name: "dangling field reference is ignored",
			nodes: []*metadata.Node{
				metadata.NewComposite(1, []string{"B", "Vec"}, metadata.UnnamedField(99)),
				metadata.NewComposite(2, []string{"B", "Vec"}, metadata.UnnamedField(99)),
			},
			expected: metadata.Mapping{},
		},
		{
			name: "path-less composites never group",
			nodes: []*metadata.Node{
				metadata.NewComposite(1, nil, metadata.UnnamedField(3)),
				metadata.NewComposite(2, nil, metadata.UnnamedField(3)),
				metadata.NewSequence(3, 5),
				metadata.NewPrimitive(5, "u8"),
			},
			expected: metadata.Mapping{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := metadata.NewSnapshot(1).Add(tc.nodes...)
			assert.Equal(t, tc.expected, Detect(s.Types))
		})
	}
}

func TestRefineScenarioA(t *testing.T) {
	s := boundedSnapshot()
	res, err := Refine(s, Options{})
	require.NoError(t, err)

	assert.Equal(t, metadata.Mapping{10: 20, 11: 20}, res.Rewrites)
	for _, ref := range allReferences(s) {
		assert.NotEqual(t, metadata.TypeID(10), ref)
		assert.NotEqual(t, metadata.TypeID(11), ref)
	}

	holder := s.Types[40].Def.(*metadata.Composite)
	assert.Equal(t, metadata.TypeID(20), holder.Fields[0].TypeID)
	assert.Equal(t, metadata.TypeID(20), holder.Fields[1].TypeID)
	assert.Equal(t, []metadata.TypeID{20, 20}, s.Types[41].References())
	assert.Equal(t, []metadata.TypeID{20}, s.Types[42].References())
	assert.Equal(t, []metadata.TypeID{20}, s.Types[43].References())
	assert.Equal(t, []metadata.TypeID{20}, s.Types[44].References())
	assert.Equal(t, []metadata.TypeID{20}, s.Types[45].References())
	assert.Equal(t, []metadata.TypeID{20, 20}, s.Types[46].References())

	module := s.Modules[0]
	assert.Equal(t, metadata.TypeID(42), module.Calls.TypeID)
	assert.Equal(t, metadata.TypeID(20), module.Constants[0].TypeID)
	assert.Equal(t, metadata.TypeID(20), module.Storage.Entries[0].Plain)
	assert.Equal(t, metadata.TypeID(20), module.Storage.Entries[1].Map.Key)
	assert.Equal(t, metadata.TypeID(20), module.Storage.Entries[1].Map.Value)

	// wrappers stay in the graph unless pruning is asked for
	assert.Contains(t, s.Types, metadata.TypeID(10))
	assert.Contains(t, s.Types, metadata.TypeID(11))
	assert.Empty(t, res.Pruned)
}

func TestRefineIsIdempotent(t *testing.T) {
	s := boundedSnapshot()
	_, err := Refine(s, Options{})
	require.NoError(t, err)
	before := s.Fingerprint()

	res, err := Refine(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, before, s.Fingerprint())
	assert.False(t, metadata.RemapTypes(s.Types, Detect(s.Types)))
}

func TestRefineModuleOnlyReference(t *testing.T) {
	s := metadata.NewSnapshot(1).Add(
		metadata.NewComposite(10, []string{"B", "Bounded"}, metadata.UnnamedField(20)),
		metadata.NewComposite(11, []string{"B", "Bounded"}, metadata.UnnamedField(20)),
		metadata.NewSequence(20, 30),
		metadata.NewPrimitive(30, "u8"),
	)
	s.AddModule(&metadata.Module{Name: "Only", Constants: []metadata.Constant{{Name: "C", TypeID: 11}}})

	_, err := Refine(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, metadata.TypeID(20), s.Modules[0].Constants[0].TypeID)
}

func TestRefinePrunesOrphanedWrappers(t *testing.T) {
	s := boundedSnapshot()
	// 50 is unreferenced but not a wrapper, so it survives
	s.Add(metadata.NewPrimitive(50, "bool"))

	res, err := Refine(s, Options{PruneOrphans: true})
	require.NoError(t, err)

	assert.Equal(t, []metadata.TypeID{10, 11}, res.Pruned)
	assert.NotContains(t, s.Types, metadata.TypeID(10))
	assert.NotContains(t, s.Types, metadata.TypeID(11))
	assert.Contains(t, s.Types, metadata.TypeID(20))
	assert.Contains(t, s.Types, metadata.TypeID(50))
}

func TestPruneKeepsReferencedWrappers(t *testing.T) {
	s := boundedSnapshot()
	// a reference the rewrite never saw keeps the wrapper alive
	pruned := PruneOrphans(s, metadata.Mapping{10: 20, 11: 20})
	assert.Empty(t, pruned)
	assert.Contains(t, s.Types, metadata.TypeID(10))
}

func TestRefineIterationCap(t *testing.T) {
	s := boundedSnapshot()
	_, err := Refine(s, Options{MaxIterations: 1})
	require.Error(t, err)
	assert.True(t, schemaerr.IsFatal(err))
	se, ok := schemaerr.As(err)
	require.True(t, ok)
	assert.Equal(t, schemaerr.NoConvergence, se.Code())
}

func TestRefineUnwrapsNestedWrappers(t *testing.T) {
	s := metadata.NewSnapshot(1).Add(
		metadata.NewComposite(1, []string{"B", "Outer"}, metadata.UnnamedField(10)),
		metadata.NewComposite(2, []string{"B", "Outer"}, metadata.UnnamedField(11)),
		metadata.NewComposite(10, []string{"B", "Inner"}, metadata.UnnamedField(20)),
		metadata.NewComposite(11, []string{"B", "Inner"}, metadata.UnnamedField(20)),
		metadata.NewSequence(20, 30),
		metadata.NewPrimitive(30, "u8"),
		metadata.NewComposite(40, []string{"x", "Holder"},
			metadata.NamedField("a", 1),
			metadata.NamedField("b", 2)),
	)

	res, err := Refine(s, Options{})
	require.NoError(t, err)
	// inner wrappers first, then the outer ones they exposed, then a pass with no change
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, metadata.Mapping{1: 20, 2: 20, 10: 20, 11: 20}, res.Rewrites)

	assert.Equal(t, []metadata.TypeID{20, 20}, s.Types[40].References())
	for _, ref := range allReferences(s) {
		assert.NotContains(t, []metadata.TypeID{1, 2, 10, 11}, ref)
	}
}
