// Package unify merges the composite types that recur across snapshots.
//
// Every composite child is grouped with the children of other versions that
// share its version-independent name. Each group gets a synthesized mother
// whose fields are the union of its members' fields, renamed where a field
// changed type between versions.
package unify

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/palletgen/internal/log"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/resolve"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/cottand/palletgen/util"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "unify")

// MaxResidualIterations caps the pass pointing mother fields at other mothers
const MaxResidualIterations = 64

// MotherSuffix is appended to the last path segment of a group to name its mother
const MotherSuffix = "Base"

type Result struct {
	// Mothers in allocation order, which is also ascending id order
	Mothers []*Mother
	// ChildToMother maps every linked child id to its mother id
	ChildToMother metadata.Mapping
	// Resolver resolves every child and mother
	Resolver *resolve.Resolver
	// Nodes is every child and mother, in ascending id order
	Nodes []RefinedType
}

type group struct {
	base    string
	members []*Child
}

// Unify links every composite of children to a mother. The children's
// snapshots must have been aligned so their ids are disjoint; their nodes
// are read but never mutated.
func Unify(children []*Child) (Result, error) {
	res := Result{ChildToMother: make(metadata.Mapping)}
	if len(children) == 0 {
		res.Resolver = resolve.FromTable("", "", nil)
		return res, nil
	}

	known, err := knownNodes(children)
	if err != nil {
		return res, err
	}
	maxKnown, _ := metadata.MaxTypeID(known)

	for _, g := range groupByBase(children) {
		maxKnown++
		mother := seed(g, maxKnown)
		for _, c := range g.members[1:] {
			mergeInto(mother, c, known)
		}
		for _, c := range g.members {
			c.LinkedTo = mother
			res.ChildToMother[c.ID()] = mother.ID()
		}
		res.Mothers = append(res.Mothers, mother)
		logger.Debug("allocated mother",
			"name", mother.resolved.DisplayName(),
			"id", mother.ID(),
			"members", len(g.members),
			"fields", len(mother.Fields()))
	}

	if err := resolveResiduals(res.Mothers, res.ChildToMother); err != nil {
		return res, err
	}

	first := children[0].Resolver()
	table := resolve.NewTable()
	for _, c := range children {
		table = table.Set(c.ID(), c.Resolved())
		res.Nodes = append(res.Nodes, c)
	}
	for _, m := range res.Mothers {
		table = table.Set(m.ID(), m.Resolved())
		res.Nodes = append(res.Nodes, m)
	}
	res.Resolver = resolve.FromTable(first.Runtime(), first.Project(), table)
	for _, n := range res.Nodes {
		n.rebind(res.Resolver)
	}
	slices.SortStableFunc(res.Nodes, func(a, b RefinedType) int {
		return cmp.Compare(a.ID(), b.ID())
	})

	logger.Debug("unified types",
		"children", len(children),
		"mothers", len(res.Mothers),
		"linked", len(res.ChildToMother))
	return res, nil
}

// knownNodes merges every node visible to the children's resolvers
func knownNodes(children []*Child) (map[metadata.TypeID]*metadata.Node, error) {
	known := make(map[metadata.TypeID]*metadata.Node)
	owner := make(map[metadata.TypeID]*resolve.Resolver)
	seen := make(map[*resolve.Resolver]bool)
	for _, c := range children {
		r := c.Resolver()
		if seen[r] {
			continue
		}
		seen[r] = true
		for id, resolved := range r.All() {
			if prev, ok := owner[id]; ok && prev != r {
				return nil, schemaerr.New(schemaerr.NewInvalidSnapshot{
					Source: fmt.Sprintf("resolver for %q", r.SpecVersionTag()),
					Reason: fmt.Sprintf("type id %d is also declared by %q, snapshots must be aligned before unification", id, prev.SpecVersionTag()),
				})
			}
			owner[id] = r
			known[id] = resolved.Node
		}
	}
	for _, c := range children {
		if _, ok := known[c.ID()]; !ok {
			known[c.ID()] = c.Resolved().Node
		}
	}
	return known, nil
}

// groupByBase groups composite children by base name, groups in first-seen
// order and members in the order given
func groupByBase(children []*Child) []*group {
	var groups []*group
	byBase := make(map[string]*group)
	for _, c := range children {
		if c.Resolved().Node.Kind() != metadata.KindComposite {
			continue
		}
		base := c.Resolver().BaseName(c.Resolved())
		g, ok := byBase[base]
		if !ok {
			g = &group{base: base}
			byBase[base] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, c)
	}
	return groups
}

// seed builds the mother of g from a copy of its first member
func seed(g *group, id metadata.TypeID) *Mother {
	first := g.members[0]
	src := first.Resolved().Node
	node := &metadata.Node{
		ID:         id,
		Path:       motherPath(src.Path, g.base),
		TypeParams: metadata.CopyTypeParams(src.TypeParams),
		Docs:       slices.Clone(src.Docs),
		Def:        &metadata.Composite{Fields: metadata.CopyFields(src.Def.(*metadata.Composite).Fields)},
	}
	mother := &Mother{
		resolved: resolve.ResolvedType{ID: id, Name: motherName(g.base), Node: node},
		resolver: first.Resolver(),
		Members:  []*Child{first},
	}
	first.FieldNames = make([]string, len(mother.Fields()))
	for i, f := range mother.Fields() {
		first.FieldNames[i] = f.FieldName()
	}
	return mother
}

func motherPath(childPath []string, base string) []string {
	if len(childPath) == 0 {
		_, class := splitBase(base)
		return []string{class + MotherSuffix}
	}
	path := slices.Clone(childPath)
	path[len(path)-1] += MotherSuffix
	return path
}

func motherName(base string) resolve.Name {
	namespace, class := splitBase(base)
	return resolve.Name{Namespace: namespace, ClassName: class + MotherSuffix}
}

func splitBase(base string) ([]string, string) {
	segments := strings.Split(base, ".")
	return segments[:len(segments)-1], segments[len(segments)-1]
}

// mergeInto adds the fields of c that mother does not already hold, and
// records under which mother field every field of c is stored. No two
// fields of c are stored under the same mother field.
func mergeInto(mother *Mother, c *Child, known map[metadata.TypeID]*metadata.Node) {
	fields := c.Resolved().Node.Def.(*metadata.Composite).Fields
	c.FieldNames = make([]string, len(fields))
	claimed := set.New[string](len(fields))
	for i, f := range fields {
		if f.Name == nil {
			c.FieldNames[i] = mergePositional(mother, i, f, known)
			continue
		}
		c.FieldNames[i] = mergeNamed(mother, f, known, claimed)
		claimed.Insert(c.FieldNames[i])
	}
	mother.Members = append(mother.Members, c)
}

func mergePositional(mother *Mother, pos int, f metadata.Field, known map[metadata.TypeID]*metadata.Node) string {
	if pos >= len(mother.Fields()) {
		mother.appendField(f.Clone())
		return ""
	}
	existing := mother.Fields()[pos]
	if changed(existing.TypeID, f.TypeID, known) {
		logger.Warn("unnamed field changed type, keeping the first version's type",
			"mother", mother.ID(),
			"position", pos,
			"existing", existing.TypeID,
			"incoming", f.TypeID)
	}
	return existing.FieldName()
}

// mergeNamed walks the rename chain of f's name (x, x1, x2, ...) until it
// finds an unclaimed mother field of the same type, or a free name to store
// f under
func mergeNamed(mother *Mother, f metadata.Field, known map[metadata.TypeID]*metadata.Node, claimed *set.Set[string]) string {
	idx := mother.field(*f.Name)
	if idx < 0 {
		mother.appendField(f.Clone())
		return *f.Name
	}
	for {
		existing := mother.Fields()[idx]
		if !claimed.Contains(existing.FieldName()) && !changed(existing.TypeID, f.TypeID, known) {
			return existing.FieldName()
		}
		candidate := util.IncrementTrailingNumber(existing.FieldName())
		next := mother.field(candidate)
		if next < 0 {
			renamed := f.Clone()
			renamed.Name = &candidate
			mother.appendField(renamed)
			return candidate
		}
		idx = next
	}
}

// changed reports whether two field types are different enough for the
// fields to need distinct slots on the mother
func changed(existingID, incomingID metadata.TypeID, known map[metadata.TypeID]*metadata.Node) bool {
	existing, okE := known[existingID]
	incoming, okI := known[incomingID]
	if !okE || !okI {
		return existingID != incomingID
	}
	if existing.Kind() != incoming.Kind() {
		return true
	}
	if len(existing.Path) > 0 && len(incoming.Path) > 0 && existing.JoinedPath() != incoming.JoinedPath() {
		return true
	}
	if p, ok := existing.Def.(*metadata.Primitive); ok {
		return p.Name != incoming.Def.(*metadata.Primitive).Name
	}
	return false
}

// resolveResiduals points mother fields still referencing a linked child at
// that child's mother
func resolveResiduals(mothers []*Mother, childToMother metadata.Mapping) error {
	for i := 0; ; i++ {
		if i >= MaxResidualIterations {
			return schemaerr.New(schemaerr.NewNoConvergence{
				Pass:       "mother reference resolution",
				Iterations: i,
			})
		}
		changed := false
		for _, m := range mothers {
			if metadata.RemapNode(m.resolved.Node, childToMother) {
				changed = true
			}
		}
		if !changed {
			logger.Debug("resolved residual references", "iterations", i+1)
			return nil
		}
	}
}
