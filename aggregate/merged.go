package aggregate

import (
	"iter"

	"github.com/cottand/palletgen/metadata"
)

// MergedVariant is the union of the cases of one of a module's calls,
// errors or events across versions
type MergedVariant struct {
	// TypeID is the variant node of the first version declaring it
	TypeID metadata.TypeID
	Cases  []metadata.VariantCase
}

func (v *MergedVariant) CaseNames() []string {
	if v == nil {
		return nil
	}
	names := make([]string, len(v.Cases))
	for i, c := range v.Cases {
		names[i] = c.Name
	}
	return names
}

type MergedModule struct {
	// Index is the index of the first version declaring the module
	Index     metadata.ModuleIndex
	Name      string
	Calls     *MergedVariant
	Errors    *MergedVariant
	Events    *MergedVariant
	Constants []metadata.Constant
	Storage   *metadata.Storage
}

func (m *MergedModule) variants() []*MergedVariant {
	return []*MergedVariant{m.Calls, m.Errors, m.Events}
}

func (m *MergedModule) refSlots() []*metadata.TypeID {
	var slots []*metadata.TypeID
	for _, v := range m.variants() {
		if v == nil {
			continue
		}
		slots = append(slots, &v.TypeID)
		for i := range v.Cases {
			for j := range v.Cases[i].Fields {
				slots = append(slots, &v.Cases[i].Fields[j].TypeID)
			}
		}
	}
	for i := range m.Constants {
		slots = append(slots, &m.Constants[i].TypeID)
	}
	if m.Storage != nil {
		for i := range m.Storage.Entries {
			e := &m.Storage.Entries[i]
			if e.Kind == metadata.StorageMap && e.Map != nil {
				slots = append(slots, &e.Map.Key, &e.Map.Value)
			} else {
				slots = append(slots, &e.Plain)
			}
		}
	}
	return slots
}

// References returns every type id m points at
func (m *MergedModule) References() []metadata.TypeID {
	var ids []metadata.TypeID
	for _, slot := range m.refSlots() {
		ids = append(ids, *slot)
	}
	return ids
}

// RemapMerged rewrites every reference of m through mapping
func RemapMerged(m *MergedModule, mapping metadata.Mapping) bool {
	changed := false
	for _, slot := range m.refSlots() {
		if mapping.Apply(slot) {
			changed = true
		}
	}
	return changed
}

func (m *MergedModule) ConstantNames() []string {
	names := make([]string, len(m.Constants))
	for i, c := range m.Constants {
		names[i] = c.Name
	}
	return names
}

func (m *MergedModule) EntryNames() []string {
	if m.Storage == nil {
		return nil
	}
	names := make([]string, len(m.Storage.Entries))
	for i, e := range m.Storage.Entries {
		names[i] = e.Name
	}
	return names
}

// ModuleVersion is a module as declared by one snapshot
type ModuleVersion struct {
	SpecVersion uint32
	Module      *metadata.Module
}

type ModuleAggregate struct {
	Merged     MergedModule
	PerVersion []ModuleVersion

	compat map[string]*entryCompat
}

// Compat reports, for the storage entry called name, whether its value and
// key types are common to every version declaring it
func (a *ModuleAggregate) Compat(name string) (EntryCompat, bool) {
	c, ok := a.compat[name]
	if !ok {
		return EntryCompat{}, false
	}
	return c.result(), true
}

// Aggregates holds one ModuleAggregate per module name, in first-seen order
type Aggregates struct {
	order  []*ModuleAggregate
	byName map[string]*ModuleAggregate
}

func newAggregates() *Aggregates {
	return &Aggregates{byName: make(map[string]*ModuleAggregate)}
}

func (a *Aggregates) add(agg *ModuleAggregate) {
	a.order = append(a.order, agg)
	a.byName[agg.Merged.Name] = agg
}

func (a *Aggregates) All() iter.Seq[*ModuleAggregate] {
	return func(yield func(*ModuleAggregate) bool) {
		for _, agg := range a.order {
			if !yield(agg) {
				return
			}
		}
	}
}

func (a *Aggregates) Get(name string) (*ModuleAggregate, bool) {
	agg, ok := a.byName[name]
	return agg, ok
}

// ByIndex returns the first aggregate whose merged module has index idx
func (a *Aggregates) ByIndex(idx metadata.ModuleIndex) (*ModuleAggregate, bool) {
	for _, agg := range a.order {
		if agg.Merged.Index == idx {
			return agg, true
		}
	}
	return nil, false
}

func (a *Aggregates) Len() int { return len(a.order) }
