// Package metadata holds the canonical shape of a runtime metadata snapshot:
// a graph of numbered type nodes plus the pallet descriptors referencing them.
package metadata

import (
	"strings"
)

type TypeID = uint32

type ModuleIndex = uint8

type Kind uint8

const (
	_ Kind = iota
	KindComposite
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindCompact
	KindBitSequence
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	case KindSequence:
		return "sequence"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindCompact:
		return "compact"
	case KindBitSequence:
		return "bitsequence"
	case KindPrimitive:
		return "primitive"
	default:
		return "invalid"
	}
}

// KindFromString is the inverse of Kind.String, used by the decoder
func KindFromString(s string) (Kind, bool) {
	for k := KindComposite; k <= KindPrimitive; k++ {
		if k.String() == strings.ToLower(s) {
			return k, true
		}
	}
	return 0, false
}

// Node is a single entry of the type graph
type Node struct {
	ID         TypeID
	Path       []string
	TypeParams []TypeParam
	Docs       []string
	Def        TypeDef
}

func (n *Node) Kind() Kind {
	if n == nil || n.Def == nil {
		return 0
	}
	return n.Def.Kind()
}

// JoinedPath returns the dotted path, or the empty string for path-less nodes
func (n *Node) JoinedPath() string {
	return strings.Join(n.Path, ".")
}

type TypeParam struct {
	Name string
	// TypeID is nil for parameters erased by the metadata producer
	TypeID *TypeID
}

// TypeDef is the closed set of node shapes
type TypeDef interface {
	Kind() Kind
	// refs returns pointers to every reference slot of this definition
	refs() []*TypeID
	clone() TypeDef
}

var (
	_ TypeDef = (*Composite)(nil)
	_ TypeDef = (*Variant)(nil)
	_ TypeDef = (*Sequence)(nil)
	_ TypeDef = (*Array)(nil)
	_ TypeDef = (*Tuple)(nil)
	_ TypeDef = (*Compact)(nil)
	_ TypeDef = (*BitSequence)(nil)
	_ TypeDef = (*Primitive)(nil)
)

type Field struct {
	// Name is nil for tuple-style composites
	Name     *string
	TypeID   TypeID
	TypeName *string
	Docs     []string
}

// FieldName returns the name of f, or the empty string if it is unnamed
func (f Field) FieldName() string {
	if f.Name == nil {
		return ""
	}
	return *f.Name
}

type Composite struct {
	Fields []Field
}

func (c *Composite) Kind() Kind { return KindComposite }
func (c *Composite) refs() []*TypeID {
	refs := make([]*TypeID, 0, len(c.Fields))
	for i := range c.Fields {
		refs = append(refs, &c.Fields[i].TypeID)
	}
	return refs
}

type VariantCase struct {
	Name   string
	Index  uint8
	Fields []Field
	Docs   []string
}

type Variant struct {
	Cases []VariantCase
}

func (v *Variant) Kind() Kind { return KindVariant }
func (v *Variant) refs() []*TypeID {
	var refs []*TypeID
	for i := range v.Cases {
		for j := range v.Cases[i].Fields {
			refs = append(refs, &v.Cases[i].Fields[j].TypeID)
		}
	}
	return refs
}

// Case returns the case called name, if any
func (v *Variant) Case(name string) (VariantCase, bool) {
	for _, c := range v.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return VariantCase{}, false
}

type Sequence struct {
	Elem TypeID
}

func (s *Sequence) Kind() Kind      { return KindSequence }
func (s *Sequence) refs() []*TypeID { return []*TypeID{&s.Elem} }

type Array struct {
	Elem TypeID
	Len  uint32
}

func (a *Array) Kind() Kind      { return KindArray }
func (a *Array) refs() []*TypeID { return []*TypeID{&a.Elem} }

type Tuple struct {
	Elems []TypeID
}

func (t *Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) refs() []*TypeID {
	refs := make([]*TypeID, len(t.Elems))
	for i := range t.Elems {
		refs[i] = &t.Elems[i]
	}
	return refs
}

type Compact struct {
	Inner TypeID
}

func (c *Compact) Kind() Kind      { return KindCompact }
func (c *Compact) refs() []*TypeID { return []*TypeID{&c.Inner} }

type BitSequence struct {
	Store TypeID
	Order TypeID
}

func (b *BitSequence) Kind() Kind      { return KindBitSequence }
func (b *BitSequence) refs() []*TypeID { return []*TypeID{&b.Store, &b.Order} }

// Primitive is a leaf type such as u32, bool or str
type Primitive struct {
	Name string
}

func (p *Primitive) Kind() Kind      { return KindPrimitive }
func (p *Primitive) refs() []*TypeID { return nil }

// References returns every type id n points at, in slot order
func (n *Node) References() []TypeID {
	var ids []TypeID
	for _, ref := range n.refSlots() {
		ids = append(ids, *ref)
	}
	return ids
}

func (n *Node) refSlots() []*TypeID {
	var slots []*TypeID
	if n.Def != nil {
		slots = n.Def.refs()
	}
	for i := range n.TypeParams {
		if n.TypeParams[i].TypeID != nil {
			slots = append(slots, n.TypeParams[i].TypeID)
		}
	}
	return slots
}
