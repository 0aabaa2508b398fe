package aggregate

import (
	"fmt"

	"github.com/cottand/palletgen/metadata"
)

// EntryCompat tells whether a storage entry can be read through one
// version-independent accessor
type EntryCompat struct {
	// Versions is the number of versions declaring the entry
	Versions int
	Value    bool
	// Key is always true for plain entries
	Key bool
}

func (c EntryCompat) Compatible() bool { return c.Value && c.Key }

type entryCompat struct {
	versions       int
	value, key     string
	valueOK, keyOK bool
}

func (c *entryCompat) result() EntryCompat {
	return EntryCompat{Versions: c.versions, Value: c.valueOK, Key: c.keyOK}
}

func (c *entryCompat) observe(value, key string) {
	c.versions++
	if c.versions == 1 {
		c.value, c.key = value, key
		c.valueOK, c.keyOK = true, true
		return
	}
	c.valueOK = c.valueOK && c.value == value
	c.keyOK = c.keyOK && c.key == key
}

// typeSignature is equal for two types iff they are interchangeable across
// versions: composites linked to the same mother, primitives of the same
// name, or any other two types of the same kind
func typeSignature(id metadata.TypeID, types map[metadata.TypeID]*metadata.Node, childToMother metadata.Mapping) string {
	n, ok := types[id]
	if !ok {
		return fmt.Sprintf("missing:%d", id)
	}
	switch def := n.Def.(type) {
	case *metadata.Composite:
		if mother, ok := childToMother[id]; ok {
			return fmt.Sprintf("mother:%d", mother)
		}
		return fmt.Sprintf("composite:%d", id)
	case *metadata.Primitive:
		return "primitive:" + def.Name
	default:
		return "kind:" + n.Kind().String()
	}
}

func (a *ModuleAggregate) observeStorage(s *metadata.Storage, types map[metadata.TypeID]*metadata.Node, childToMother metadata.Mapping) {
	if s == nil {
		return
	}
	for i := range s.Entries {
		e := &s.Entries[i]
		c, ok := a.compat[e.Name]
		if !ok {
			c = &entryCompat{}
			a.compat[e.Name] = c
		}
		key := ""
		if e.Kind == metadata.StorageMap && e.Map != nil {
			key = typeSignature(e.Map.Key, types, childToMother)
		}
		c.observe(typeSignature(e.ValueID(), types, childToMother), key)
	}
}
