// Package resolve assigns display names to type ids.
//
// A Resolver is built per snapshot and answers id → ResolvedType lookups.
// After cross-version unification a single Resolver is rebuilt from the
// merged table so emission sees the whole graph uniformly.
package resolve

import (
	"cmp"
	"fmt"
	"iter"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/palletgen/metadata"
)

// VersionPlaceholder replaces the spec version tag when computing the
// version-independent base name of a type. It is empty so the tag segment
// collapses entirely: "v12.pallet.Foo" and "v13.pallet.Foo" both become
// "pallet.Foo".
const VersionPlaceholder = ""

type Name struct {
	Namespace []string
	ClassName string
}

func (n Name) String() string {
	if len(n.Namespace) == 0 {
		return n.ClassName
	}
	return strings.Join(n.Namespace, ".") + "." + n.ClassName
}

type ResolvedType struct {
	ID   metadata.TypeID
	Name Name
	Node *metadata.Node
}

func (r ResolvedType) DisplayName() string {
	return r.Name.String()
}

type idComparer struct{}

func (idComparer) Compare(a, b metadata.TypeID) int { return cmp.Compare(a, b) }

// Table is an ordered, immutable id → ResolvedType map
type Table = *immutable.SortedMap[metadata.TypeID, ResolvedType]

func NewTable() Table {
	return immutable.NewSortedMap[metadata.TypeID, ResolvedType](idComparer{})
}

type Resolver struct {
	runtime    string
	project    string
	version    *uint32
	versionTag string
	table      Table
}

// New resolves every node of types. version is nil for single-version
// runs, in which case names carry no version tag.
func New(runtime, project string, types map[metadata.TypeID]*metadata.Node, version *uint32) *Resolver {
	r := &Resolver{
		runtime: runtime,
		project: project,
		table:   NewTable(),
	}
	if version != nil {
		v := *version
		r.version = &v
		r.versionTag = VersionTag(v)
	}
	namer := newNamer(types, r.versionTag)
	for _, id := range metadata.SortedTypeIDs(types) {
		r.table = r.table.Set(id, ResolvedType{
			ID:   id,
			Name: namer.name(id),
			Node: types[id],
		})
	}
	return r
}

// FromTable rebuilds a Resolver around an externally supplied table.
// The resulting Resolver carries no version tag.
func FromTable(runtime, project string, table Table) *Resolver {
	if table == nil {
		table = NewTable()
	}
	return &Resolver{runtime: runtime, project: project, table: table}
}

func VersionTag(specVersion uint32) string {
	return fmt.Sprintf("v%d", specVersion)
}

func (r *Resolver) Runtime() string { return r.runtime }
func (r *Resolver) Project() string { return r.project }

// SpecVersion is the version this resolver was built for, if any
func (r *Resolver) SpecVersion() (uint32, bool) {
	if r.version == nil {
		return 0, false
	}
	return *r.version, true
}

// SpecVersionTag is the literal token naming this resolver's version, or
// the empty string
func (r *Resolver) SpecVersionTag() string { return r.versionTag }

func (r *Resolver) Get(id metadata.TypeID) (ResolvedType, bool) {
	return r.table.Get(id)
}

func (r *Resolver) Len() int { return r.table.Len() }

func (r *Resolver) Table() Table { return r.table }

// All yields every resolved type in ascending id order
func (r *Resolver) All() iter.Seq2[metadata.TypeID, ResolvedType] {
	return func(yield func(metadata.TypeID, ResolvedType) bool) {
		itr := r.table.Iterator()
		for !itr.Done() {
			id, resolved, _ := itr.Next()
			if !yield(id, resolved) {
				return
			}
		}
	}
}

// BaseName returns the display name of resolved with every occurrence of
// this resolver's version tag replaced by VersionPlaceholder
func (r *Resolver) BaseName(resolved ResolvedType) string {
	return Normalize(resolved.DisplayName(), r.versionTag)
}

// Normalize replaces every dotted segment equal to tag in displayName
func Normalize(displayName, tag string) string {
	if tag == "" {
		return displayName
	}
	segments := strings.Split(displayName, ".")
	out := segments[:0]
	for _, s := range segments {
		if s == tag {
			if VersionPlaceholder == "" {
				continue
			}
			s = VersionPlaceholder
		}
		out = append(out, s)
	}
	return strings.Join(out, ".")
}

// Generated reports whether a type is emitted as its own definition rather
// than being inlined where it is referenced
func Generated(n *metadata.Node) bool {
	switch n.Kind() {
	case metadata.KindComposite, metadata.KindVariant, metadata.KindArray:
		return true
	default:
		return false
	}
}
