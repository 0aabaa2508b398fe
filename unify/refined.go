package unify

import (
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/resolve"
)

type Level uint8

const (
	_ Level = iota
	// LevelMother is a synthesized base type shared by every version of a type
	LevelMother
	// LevelChild is a type as declared by one snapshot
	LevelChild
)

func (l Level) String() string {
	switch l {
	case LevelMother:
		return "mother"
	case LevelChild:
		return "child"
	default:
		return "invalid"
	}
}

// RefinedType is either a *Mother or a *Child
type RefinedType interface {
	ID() metadata.TypeID
	Level() Level
	Resolved() resolve.ResolvedType
	Resolver() *resolve.Resolver
	// Version is the spec version a child was declared in; mothers have none
	Version() (uint32, bool)

	rebind(*resolve.Resolver)
}

var (
	_ RefinedType = (*Mother)(nil)
	_ RefinedType = (*Child)(nil)
)

type Child struct {
	resolved resolve.ResolvedType
	resolver *resolve.Resolver
	// version is taken from the resolver the child was created with, since
	// rebinding points it at one without a version
	version   uint32
	versioned bool

	// LinkedTo is the mother this child was unified into, or nil for
	// children that are not composites
	LinkedTo *Mother
	// FieldNames holds, for every field of the child's node in order, the
	// name of the mother field it is stored in
	FieldNames []string
}

func NewChild(resolved resolve.ResolvedType, resolver *resolve.Resolver) *Child {
	c := &Child{resolved: resolved, resolver: resolver}
	c.version, c.versioned = resolver.SpecVersion()
	return c
}

// ChildrenOf returns one child per type of every resolver, resolvers in the
// given order and types in ascending id order
func ChildrenOf(resolvers ...*resolve.Resolver) []*Child {
	var children []*Child
	for _, r := range resolvers {
		for _, resolved := range r.All() {
			children = append(children, NewChild(resolved, r))
		}
	}
	return children
}

func (c *Child) ID() metadata.TypeID            { return c.resolved.ID }
func (c *Child) Level() Level                   { return LevelChild }
func (c *Child) Resolved() resolve.ResolvedType { return c.resolved }
func (c *Child) Resolver() *resolve.Resolver    { return c.resolver }
func (c *Child) Version() (uint32, bool)        { return c.version, c.versioned }
func (c *Child) rebind(r *resolve.Resolver)     { c.resolver = r }

type Mother struct {
	resolved resolve.ResolvedType
	resolver *resolve.Resolver

	// Members are the children linked to this mother, in the order they were merged
	Members []*Child
}

func (m *Mother) ID() metadata.TypeID            { return m.resolved.ID }
func (m *Mother) Level() Level                   { return LevelMother }
func (m *Mother) Resolved() resolve.ResolvedType { return m.resolved }
func (m *Mother) Resolver() *resolve.Resolver    { return m.resolver }
func (m *Mother) Version() (uint32, bool)        { return 0, false }
func (m *Mother) rebind(r *resolve.Resolver)     { m.resolver = r }

// Fields returns the merged fields of the mother's composite node
func (m *Mother) Fields() []metadata.Field {
	return m.resolved.Node.Def.(*metadata.Composite).Fields
}

func (m *Mother) field(name string) int {
	for i, f := range m.Fields() {
		if f.FieldName() == name {
			return i
		}
	}
	return -1
}

func (m *Mother) appendField(f metadata.Field) {
	c := m.resolved.Node.Def.(*metadata.Composite)
	c.Fields = append(c.Fields, f)
}
