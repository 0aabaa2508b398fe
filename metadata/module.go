package metadata

// VariantRef points a pallet's calls, errors or events at a Variant node
type VariantRef struct {
	TypeID TypeID
}

type Constant struct {
	Name   string
	TypeID TypeID
	Value  []byte
	Docs   []string
}

type StorageKind uint8

const (
	StoragePlain StorageKind = iota
	StorageMap
)

func (k StorageKind) String() string {
	if k == StorageMap {
		return "map"
	}
	return "plain"
}

type MapType struct {
	Hashers []string
	Key     TypeID
	Value   TypeID
}

type Entry struct {
	Name     string
	Modifier string
	Kind     StorageKind
	// Plain is the value type of a StoragePlain entry
	Plain   TypeID
	Map     *MapType
	Default []byte
	Docs    []string
}

// ValueID is the value type of e regardless of its kind
func (e *Entry) ValueID() TypeID {
	if e.Kind == StorageMap && e.Map != nil {
		return e.Map.Value
	}
	return e.Plain
}

type Storage struct {
	Prefix  string
	Entries []Entry
}

// Entry returns the entry called name, if any
func (s *Storage) Entry(name string) (*Entry, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Entries {
		if s.Entries[i].Name == name {
			return &s.Entries[i], true
		}
	}
	return nil, false
}

// Module is a pallet descriptor
type Module struct {
	Index     ModuleIndex
	Name      string
	Calls     *VariantRef
	Errors    *VariantRef
	Events    *VariantRef
	Constants []Constant
	Storage   *Storage
}

func (m *Module) refSlots() []*TypeID {
	var slots []*TypeID
	for _, ref := range []*VariantRef{m.Calls, m.Errors, m.Events} {
		if ref != nil {
			slots = append(slots, &ref.TypeID)
		}
	}
	for i := range m.Constants {
		slots = append(slots, &m.Constants[i].TypeID)
	}
	if m.Storage != nil {
		for i := range m.Storage.Entries {
			slots = append(slots, m.Storage.Entries[i].refSlots()...)
		}
	}
	return slots
}

func (e *Entry) refSlots() []*TypeID {
	if e.Kind == StorageMap && e.Map != nil {
		return []*TypeID{&e.Map.Key, &e.Map.Value}
	}
	return []*TypeID{&e.Plain}
}

// References returns every type id m points at
func (m *Module) References() []TypeID {
	var ids []TypeID
	for _, slot := range m.refSlots() {
		ids = append(ids, *slot)
	}
	return ids
}

type Snapshot struct {
	SpecVersion uint32
	BlockNumber *uint32
	Types       map[TypeID]*Node
	Modules     map[ModuleIndex]*Module
}

func NewSnapshot(specVersion uint32) *Snapshot {
	return &Snapshot{
		SpecVersion: specVersion,
		Types:       make(map[TypeID]*Node),
		Modules:     make(map[ModuleIndex]*Module),
	}
}

// Add inserts nodes keyed by their own id, replacing existing entries
func (s *Snapshot) Add(nodes ...*Node) *Snapshot {
	for _, n := range nodes {
		s.Types[n.ID] = n
	}
	return s
}

func (s *Snapshot) AddModule(modules ...*Module) *Snapshot {
	for _, m := range modules {
		s.Modules[m.Index] = m
	}
	return s
}
