package metadata

import "slices"

// Clone returns a deep copy of n. Merging across versions never aliases
// one version's nodes, so every consumer that keeps a node beyond the
// lifetime of its snapshot should hold a Clone.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:         n.ID,
		Path:       slices.Clone(n.Path),
		TypeParams: CopyTypeParams(n.TypeParams),
		Docs:       slices.Clone(n.Docs),
	}
	if n.Def != nil {
		c.Def = n.Def.clone()
	}
	return c
}

func (f Field) Clone() Field {
	return Field{
		Name:     clonePtr(f.Name),
		TypeID:   f.TypeID,
		TypeName: clonePtr(f.TypeName),
		Docs:     slices.Clone(f.Docs),
	}
}

func CopyFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

func CopyTypeParams(params []TypeParam) []TypeParam {
	if params == nil {
		return nil
	}
	out := make([]TypeParam, len(params))
	for i, p := range params {
		out[i] = TypeParam{Name: p.Name, TypeID: clonePtr(p.TypeID)}
	}
	return out
}

func (c VariantCase) Clone() VariantCase {
	return VariantCase{
		Name:   c.Name,
		Index:  c.Index,
		Fields: CopyFields(c.Fields),
		Docs:   slices.Clone(c.Docs),
	}
}

func CopyCases(cases []VariantCase) []VariantCase {
	if cases == nil {
		return nil
	}
	out := make([]VariantCase, len(cases))
	for i, c := range cases {
		out[i] = c.Clone()
	}
	return out
}

func (c *Composite) clone() TypeDef { return &Composite{Fields: CopyFields(c.Fields)} }
func (v *Variant) clone() TypeDef   { return &Variant{Cases: CopyCases(v.Cases)} }
func (s *Sequence) clone() TypeDef  { return &Sequence{Elem: s.Elem} }
func (a *Array) clone() TypeDef     { return &Array{Elem: a.Elem, Len: a.Len} }
func (t *Tuple) clone() TypeDef     { return &Tuple{Elems: slices.Clone(t.Elems)} }
func (c *Compact) clone() TypeDef   { return &Compact{Inner: c.Inner} }
func (b *BitSequence) clone() TypeDef {
	return &BitSequence{Store: b.Store, Order: b.Order}
}
func (p *Primitive) clone() TypeDef { return &Primitive{Name: p.Name} }

func (c Constant) Clone() Constant {
	return Constant{
		Name:   c.Name,
		TypeID: c.TypeID,
		Value:  slices.Clone(c.Value),
		Docs:   slices.Clone(c.Docs),
	}
}

func (e Entry) Clone() Entry {
	c := Entry{
		Name:     e.Name,
		Modifier: e.Modifier,
		Kind:     e.Kind,
		Plain:    e.Plain,
		Default:  slices.Clone(e.Default),
		Docs:     slices.Clone(e.Docs),
	}
	if e.Map != nil {
		c.Map = &MapType{
			Hashers: slices.Clone(e.Map.Hashers),
			Key:     e.Map.Key,
			Value:   e.Map.Value,
		}
	}
	return c
}

func (s *Storage) Clone() *Storage {
	if s == nil {
		return nil
	}
	c := &Storage{Prefix: s.Prefix}
	if s.Entries != nil {
		c.Entries = make([]Entry, len(s.Entries))
		for i, e := range s.Entries {
			c.Entries[i] = e.Clone()
		}
	}
	return c
}

func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	c := &Module{
		Index:   m.Index,
		Name:    m.Name,
		Calls:   cloneRef(m.Calls),
		Errors:  cloneRef(m.Errors),
		Events:  cloneRef(m.Events),
		Storage: m.Storage.Clone(),
	}
	if m.Constants != nil {
		c.Constants = make([]Constant, len(m.Constants))
		for i, k := range m.Constants {
			c.Constants[i] = k.Clone()
		}
	}
	return c
}

func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		SpecVersion: s.SpecVersion,
		BlockNumber: clonePtr(s.BlockNumber),
		Types:       make(map[TypeID]*Node, len(s.Types)),
		Modules:     make(map[ModuleIndex]*Module, len(s.Modules)),
	}
	for id, n := range s.Types {
		c.Types[id] = n.Clone()
	}
	for idx, m := range s.Modules {
		c.Modules[idx] = m.Clone()
	}
	return c
}

func cloneRef(r *VariantRef) *VariantRef {
	if r == nil {
		return nil
	}
	return &VariantRef{TypeID: r.TypeID}
}

func clonePtr[A any](p *A) *A {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
