package emit

import (
	"fmt"
	"slices"

	"github.com/cottand/palletgen/aggregate"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/resolve"
	"github.com/cottand/palletgen/schemaerr"
)

type ConstantItem struct {
	Name     string `yaml:"name"`
	TypeName string `yaml:"typeName"`
	Value    string `yaml:"value,omitempty"`
}

type StorageItem struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Modifier string   `yaml:"modifier,omitempty"`
	Hashers  []string `yaml:"hashers,omitempty"`
	Key      string   `yaml:"key,omitempty"`
	Value    string   `yaml:"value"`
	// Compatible reports whether every version declares the entry with
	// interchangeable key and value types
	Compatible bool `yaml:"compatible"`
}

type ModuleItem struct {
	Name      string         `yaml:"name"`
	Index     uint8          `yaml:"index"`
	Output    OutputPath     `yaml:"output"`
	Versions  []uint32       `yaml:"versions,omitempty"`
	Calls     []string       `yaml:"calls,omitempty"`
	Errors    []string       `yaml:"errors,omitempty"`
	Events    []string       `yaml:"events,omitempty"`
	Constants []ConstantItem `yaml:"constants,omitempty"`
	Storage   []StorageItem  `yaml:"storage,omitempty"`
}

// PlanModules adds one item per aggregate to p, in first-seen order.
// Constants and storage entries with an unresolved type are left out of
// their module with a recoverable diagnostic.
func PlanModules(p *Plan, aggs *aggregate.Aggregates, resolver *resolve.Resolver) *schemaerr.Errors {
	var errs *schemaerr.Errors
	for agg := range aggs.All() {
		m := &agg.Merged
		item := ModuleItem{
			Name:   m.Name,
			Index:  m.Index,
			Output: OutputPath(fmt.Sprintf("%s/modules/%sCalls.go", resolver.Project(), m.Name)),
			Calls:  m.Calls.CaseNames(),
			Errors: m.Errors.CaseNames(),
			Events: m.Events.CaseNames(),
		}
		for _, pv := range agg.PerVersion {
			item.Versions = append(item.Versions, pv.SpecVersion)
		}

		for _, c := range m.Constants {
			name, err := typeName(resolver, "constant "+m.Name+"."+c.Name, c.TypeID)
			if err != nil {
				errs = errs.With(mustSchema(err))
				logger.Warn("skipping constant", "module", m.Name, "constant", c.Name, "error", err)
				continue
			}
			item.Constants = append(item.Constants, ConstantItem{Name: c.Name, TypeName: name, Value: hexBytes(c.Value)})
		}

		if m.Storage != nil {
			for _, e := range m.Storage.Entries {
				entry, err := planEntry(resolver, m.Name, e)
				if err != nil {
					errs = errs.With(mustSchema(err))
					logger.Warn("skipping storage entry", "module", m.Name, "entry", e.Name, "error", err)
					continue
				}
				if compat, ok := agg.Compat(e.Name); ok {
					entry.Compatible = compat.Compatible()
				}
				item.Storage = append(item.Storage, entry)
			}
		}

		if se := p.claim(item.Output, metadata.TypeID(m.Index)); se != nil {
			errs = errs.With(se)
			logger.Warn("skipping module", "module", m.Name, "error", se)
			continue
		}
		p.Modules = append(p.Modules, item)
	}
	logger.Debug("planned modules", "modules", len(p.Modules), "diagnostics", len(errs.Errors()))
	return errs
}

func planEntry(resolver *resolve.Resolver, module string, e metadata.Entry) (StorageItem, error) {
	owner := "storage " + module + "." + e.Name
	item := StorageItem{Name: e.Name, Kind: e.Kind.String(), Modifier: e.Modifier}
	value, err := typeName(resolver, owner, e.ValueID())
	if err != nil {
		return item, err
	}
	item.Value = value
	if e.Kind == metadata.StorageMap && e.Map != nil {
		key, err := typeName(resolver, owner, e.Map.Key)
		if err != nil {
			return item, err
		}
		item.Key = key
		item.Hashers = slices.Clone(e.Map.Hashers)
	}
	return item, nil
}

// mustSchema unwraps an error produced by typeName, which is always a SchemaError
func mustSchema(err error) schemaerr.SchemaError {
	se, ok := schemaerr.As(err)
	if !ok {
		panic(fmt.Sprintf("unexpected error type %T", err))
	}
	return se
}
