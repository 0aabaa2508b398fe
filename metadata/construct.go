package metadata

// Constructors for building graphs by hand, mostly in tests

func NewComposite(id TypeID, path []string, fields ...Field) *Node {
	return &Node{ID: id, Path: path, Def: &Composite{Fields: fields}}
}

func NewVariant(id TypeID, path []string, cases ...VariantCase) *Node {
	return &Node{ID: id, Path: path, Def: &Variant{Cases: cases}}
}

func NewSequence(id, elem TypeID) *Node {
	return &Node{ID: id, Def: &Sequence{Elem: elem}}
}

func NewArray(id, elem TypeID, length uint32) *Node {
	return &Node{ID: id, Def: &Array{Elem: elem, Len: length}}
}

func NewTuple(id TypeID, elems ...TypeID) *Node {
	return &Node{ID: id, Def: &Tuple{Elems: elems}}
}

func NewCompact(id, inner TypeID) *Node {
	return &Node{ID: id, Def: &Compact{Inner: inner}}
}

func NewBitSequence(id, store, order TypeID) *Node {
	return &Node{ID: id, Def: &BitSequence{Store: store, Order: order}}
}

func NewPrimitive(id TypeID, name string) *Node {
	return &Node{ID: id, Def: &Primitive{Name: name}}
}

func NamedField(name string, typeID TypeID) Field {
	return Field{Name: &name, TypeID: typeID}
}

func UnnamedField(typeID TypeID) Field {
	return Field{TypeID: typeID}
}

func NewCase(name string, index uint8, fields ...Field) VariantCase {
	return VariantCase{Name: name, Index: index, Fields: fields}
}

func PlainEntry(name string, value TypeID) Entry {
	return Entry{Name: name, Modifier: "Default", Kind: StoragePlain, Plain: value}
}

func MapEntry(name string, key, value TypeID, hashers ...string) Entry {
	return Entry{
		Name:     name,
		Modifier: "Default",
		Kind:     StorageMap,
		Map:      &MapType{Hashers: hashers, Key: key, Value: value},
	}
}
