// Package emit plans the definitions an emitter generates from a resolved
// graph: one item per struct, enum and fixed-size array, one per module.
//
// Planning validates the graph on the emitter's behalf. Items referencing a
// type their resolver does not know are skipped with a recoverable
// diagnostic, as are items that would overwrite an output already planned.
package emit

import (
	"cmp"
	"path"
	"slices"

	"github.com/cottand/palletgen/internal/log"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/resolve"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/cottand/palletgen/unify"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "emit")

// OutputPath is the slash separated file an item is emitted to
type OutputPath string

type ItemKind uint8

const (
	_ ItemKind = iota
	ItemStruct
	ItemEnum
	ItemArray
)

func (k ItemKind) String() string {
	switch k {
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemArray:
		return "array"
	default:
		return "invalid"
	}
}

func (k ItemKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

type FieldItem struct {
	Name     string          `yaml:"name,omitempty"`
	TypeID   metadata.TypeID `yaml:"typeId"`
	TypeName string          `yaml:"typeName"`
	// Slot is the mother field a child field is stored in
	Slot string `yaml:"slot,omitempty"`
}

type CaseItem struct {
	Name   string      `yaml:"name"`
	Index  uint8       `yaml:"index"`
	Fields []FieldItem `yaml:"fields,omitempty"`
}

// VersionedType is one entry of a mother's version dispatch
type VersionedType struct {
	SpecVersion uint32          `yaml:"specVersion"`
	TypeID      metadata.TypeID `yaml:"typeId"`
	Name        string          `yaml:"name"`
}

type TypeItem struct {
	ID     metadata.TypeID `yaml:"id"`
	Kind   ItemKind        `yaml:"kind"`
	Name   string          `yaml:"name"`
	Output OutputPath      `yaml:"output"`
	Docs   []string        `yaml:"docs,omitempty"`

	Fields []FieldItem `yaml:"fields,omitempty"`

	// Mother is the id of the mother a child struct extends
	Mother *metadata.TypeID `yaml:"mother,omitempty"`
	// Dispatch lists the children of a mother by ascending version; the last
	// one serves every version not listed
	Dispatch []VersionedType `yaml:"dispatch,omitempty"`

	Variant VariantClass `yaml:"variant,omitempty"`
	Cases   []CaseItem   `yaml:"cases,omitempty"`

	Elem string `yaml:"elem,omitempty"`
	Len  uint32 `yaml:"len,omitempty"`
}

type Plan struct {
	Types   []TypeItem   `yaml:"types"`
	Modules []ModuleItem `yaml:"modules,omitempty"`
	// Outputs holds the output path of every planned item
	Outputs *set.Set[OutputPath] `yaml:"-"`
}

func NewPlan() *Plan {
	return &Plan{Outputs: set.New[OutputPath](0)}
}

// claim records out as planned, and reports a collision if it already was
func (p *Plan) claim(out OutputPath, id metadata.TypeID) schemaerr.SchemaError {
	if !p.Outputs.Insert(out) {
		return schemaerr.New(schemaerr.NewOutputCollision{Path: string(out), ID: id})
	}
	return nil
}

// SortedOutputs returns every planned output path in lexical order
func (p *Plan) SortedOutputs() []OutputPath {
	out := p.Outputs.Slice()
	slices.Sort(out)
	return out
}

func outputOf(project string, name resolve.Name) OutputPath {
	segments := append([]string{project}, name.Namespace...)
	segments = append(segments, name.ClassName+".go")
	return OutputPath(path.Join(segments...))
}

// PlanTypes plans every Composite, enum Variant and Array of nodes, in the
// order given. Each node is resolved through its own resolver.
func PlanTypes(nodes []unify.RefinedType) (*Plan, *schemaerr.Errors, error) {
	p := NewPlan()
	var errs *schemaerr.Errors
	for _, n := range nodes {
		diag, err := p.addType(n.Resolved(), n.Resolver(), n)
		errs = errs.Merge(diag)
		if err != nil {
			return p, errs, err
		}
	}
	logger.Debug("planned types", "nodes", len(nodes), "items", len(p.Types), "diagnostics", len(errs.Errors()))
	return p, errs, nil
}

// PlanSnapshot plans every type of a single version resolver
func PlanSnapshot(resolver *resolve.Resolver) (*Plan, *schemaerr.Errors, error) {
	p := NewPlan()
	var errs *schemaerr.Errors
	for _, resolved := range resolver.All() {
		diag, err := p.addType(resolved, resolver, nil)
		errs = errs.Merge(diag)
		if err != nil {
			return p, errs, err
		}
	}
	logger.Debug("planned types", "nodes", resolver.Len(), "items", len(p.Types), "diagnostics", len(errs.Errors()))
	return p, errs, nil
}

// addType plans resolved, linked to its mother or children if refined is
// set. Recoverable problems skip the item and are returned as diagnostics.
func (p *Plan) addType(resolved resolve.ResolvedType, resolver *resolve.Resolver, refined unify.RefinedType) (*schemaerr.Errors, error) {
	item, ok, err := planNode(resolved, resolver)
	if err != nil {
		se, isSchema := schemaerr.As(err)
		if !isSchema || se.Fatal() {
			return nil, err
		}
		logger.Warn("skipping type", "id", resolved.ID, "error", err)
		return new(schemaerr.Errors).With(se), nil
	}
	if !ok {
		return nil, nil
	}
	if refined != nil {
		linkRefined(&item, refined)
	}
	if se := p.claim(item.Output, item.ID); se != nil {
		logger.Warn("skipping type", "id", resolved.ID, "error", se)
		return new(schemaerr.Errors).With(se), nil
	}
	p.Types = append(p.Types, item)
	return nil, nil
}

// planNode returns the item of resolved, or false if its kind is inlined
// where it is referenced
func planNode(resolved resolve.ResolvedType, resolver *resolve.Resolver) (TypeItem, bool, error) {
	n := resolved.Node
	item := TypeItem{
		ID:     resolved.ID,
		Name:   resolved.DisplayName(),
		Output: outputOf(resolver.Project(), resolved.Name),
		Docs:   slices.Clone(n.Docs),
	}
	switch def := n.Def.(type) {
	case *metadata.Composite:
		item.Kind = ItemStruct
		fields, err := planFields(resolver, resolved.DisplayName(), def.Fields)
		if err != nil {
			return item, false, err
		}
		item.Fields = fields
	case *metadata.Variant:
		class, err := ClassifyVariant(n)
		if err != nil {
			return item, false, err
		}
		if class != VariantEnum {
			logger.Debug("variant maps onto a library type", "id", n.ID, "class", class)
			return item, false, nil
		}
		item.Kind = ItemEnum
		item.Variant = class
		for _, c := range def.Cases {
			fields, err := planFields(resolver, resolved.DisplayName(), c.Fields)
			if err != nil {
				return item, false, err
			}
			item.Cases = append(item.Cases, CaseItem{Name: c.Name, Index: c.Index, Fields: fields})
		}
	case *metadata.Array:
		item.Kind = ItemArray
		elem, err := typeName(resolver, resolved.DisplayName(), def.Elem)
		if err != nil {
			return item, false, err
		}
		item.Elem = elem
		item.Len = def.Len
	default:
		return item, false, nil
	}
	for _, ref := range typeParamRefs(n) {
		if _, err := typeName(resolver, resolved.DisplayName(), ref); err != nil {
			return item, false, err
		}
	}
	return item, true, nil
}

func typeParamRefs(n *metadata.Node) []metadata.TypeID {
	var refs []metadata.TypeID
	for _, p := range n.TypeParams {
		if p.TypeID != nil {
			refs = append(refs, *p.TypeID)
		}
	}
	return refs
}

func planFields(resolver *resolve.Resolver, owner string, fields []metadata.Field) ([]FieldItem, error) {
	items := make([]FieldItem, 0, len(fields))
	for _, f := range fields {
		name, err := typeName(resolver, owner, f.TypeID)
		if err != nil {
			return nil, err
		}
		items = append(items, FieldItem{Name: f.FieldName(), TypeID: f.TypeID, TypeName: name})
	}
	return items, nil
}

func typeName(resolver *resolve.Resolver, owner string, id metadata.TypeID) (string, error) {
	resolved, ok := resolver.Get(id)
	if !ok {
		return "", schemaerr.New(schemaerr.NewUnresolvedReference{Owner: owner, ID: id})
	}
	return resolved.DisplayName(), nil
}

// linkRefined adds the mother/child relationship of n to its struct item
func linkRefined(item *TypeItem, n unify.RefinedType) {
	if item.Kind != ItemStruct {
		return
	}
	switch r := n.(type) {
	case *unify.Child:
		if r.LinkedTo == nil {
			return
		}
		mother := r.LinkedTo.ID()
		item.Mother = &mother
		for i := range item.Fields {
			if i < len(r.FieldNames) {
				item.Fields[i].Slot = r.FieldNames[i]
			}
		}
	case *unify.Mother:
		for _, c := range r.Members {
			v, _ := c.Version()
			item.Dispatch = append(item.Dispatch, VersionedType{
				SpecVersion: v,
				TypeID:      c.ID(),
				Name:        c.Resolved().DisplayName(),
			})
		}
		slices.SortStableFunc(item.Dispatch, func(a, b VersionedType) int {
			return cmp.Compare(a.SpecVersion, b.SpecVersion)
		})
	}
}
