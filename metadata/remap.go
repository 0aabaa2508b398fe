package metadata

import (
	"cmp"
	"maps"
	"slices"
)

// Mapping rewrites type ids: every reference to a key becomes its value
type Mapping map[TypeID]TypeID

// Apply rewrites *id if it is a key of m, and reports whether it did
func (m Mapping) Apply(id *TypeID) bool {
	if dst, ok := m[*id]; ok && dst != *id {
		*id = dst
		return true
	}
	return false
}

// Merge copies every entry of other into m
func (m Mapping) Merge(other Mapping) Mapping {
	if m == nil {
		m = make(Mapping, len(other))
	}
	maps.Copy(m, other)
	return m
}

// Keys returns the source ids of m in ascending order
func (m Mapping) Keys() []TypeID {
	return slices.Sorted(maps.Keys(m))
}

// RemapNode rewrites every reference slot of n through mapping.
// The node's own id is left untouched.
func RemapNode(n *Node, mapping Mapping) bool {
	changed := false
	for _, slot := range n.refSlots() {
		if mapping.Apply(slot) {
			changed = true
		}
	}
	return changed
}

// RemapTypes rewrites every reference slot of every node in types and
// reports whether anything changed
func RemapTypes(types map[TypeID]*Node, mapping Mapping) bool {
	if len(mapping) == 0 {
		return false
	}
	changed := false
	for _, id := range SortedTypeIDs(types) {
		if RemapNode(types[id], mapping) {
			changed = true
		}
	}
	return changed
}

// RemapModule rewrites the calls, errors and events references, every
// constant and every storage entry of m
func RemapModule(m *Module, mapping Mapping) bool {
	changed := false
	for _, slot := range m.refSlots() {
		if mapping.Apply(slot) {
			changed = true
		}
	}
	return changed
}

func RemapModules(modules map[ModuleIndex]*Module, mapping Mapping) bool {
	if len(mapping) == 0 {
		return false
	}
	changed := false
	for _, idx := range SortedModuleIndexes(modules) {
		if RemapModule(modules[idx], mapping) {
			changed = true
		}
	}
	return changed
}

// ShiftNode adds offset to the id of n and to every one of its references
func ShiftNode(n *Node, offset TypeID) {
	n.ID += offset
	for _, slot := range n.refSlots() {
		*slot += offset
	}
}

func ShiftModule(m *Module, offset TypeID) {
	for _, slot := range m.refSlots() {
		*slot += offset
	}
}

func SortedTypeIDs(types map[TypeID]*Node) []TypeID {
	return slices.Sorted(maps.Keys(types))
}

func SortedModuleIndexes(modules map[ModuleIndex]*Module) []ModuleIndex {
	return slices.Sorted(maps.Keys(modules))
}

// MaxTypeID returns the greatest key of types, and false if types is empty
func MaxTypeID(types map[TypeID]*Node) (TypeID, bool) {
	if len(types) == 0 {
		return 0, false
	}
	return slices.MaxFunc(slices.Collect(maps.Keys(types)), cmp.Compare[TypeID]), true
}
