// Package aggregate merges the modules of several snapshots by name.
//
// The merged module of an aggregate declares every call, error, event,
// constant and storage entry any version declared, so one accessor surface
// can be generated for all versions.
package aggregate

import (
	"fmt"

	"github.com/cottand/palletgen/internal/log"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/cottand/palletgen/util"
)

var logger = log.DefaultLogger.With("section", "aggregate")

// MaxRemapIterations caps the pass pointing merged modules at mothers
const MaxRemapIterations = 64

// Aggregate merges the modules of snapshots, in the order given. Merged
// references to a linked child are rewritten to its mother in childToMother.
// Neither snapshots nor their modules are mutated.
func Aggregate(snapshots []*metadata.Snapshot, childToMother metadata.Mapping) (*Aggregates, *schemaerr.Errors, error) {
	aggs := newAggregates()
	var errs *schemaerr.Errors
	for _, s := range snapshots {
		for _, idx := range metadata.SortedModuleIndexes(s.Modules) {
			m := s.Modules[idx]
			agg, ok := aggs.Get(m.Name)
			if !ok {
				agg = &ModuleAggregate{
					Merged: MergedModule{Index: m.Index, Name: m.Name},
					compat: make(map[string]*entryCompat),
				}
				aggs.add(agg)
			}
			added, diags, err := agg.merge(s, m)
			errs = errs.Merge(diags)
			if err != nil {
				return aggs, errs, err
			}
			agg.observeStorage(m.Storage, s.Types, childToMother)
			agg.PerVersion = append(agg.PerVersion, ModuleVersion{SpecVersion: s.SpecVersion, Module: m.Clone()})
			logger.Debug("merged module",
				"module", m.Name,
				"specVersion", s.SpecVersion,
				"added", added)
		}
	}

	for agg := range aggs.All() {
		if err := remapToFixpoint(&agg.Merged, childToMother); err != nil {
			return aggs, errs, err
		}
	}
	logger.Debug("aggregated modules", "modules", aggs.Len(), "snapshots", len(snapshots))
	return aggs, errs, nil
}

// merge adds to a every item of m it does not declare yet, and returns how
// many items were added
func (a *ModuleAggregate) merge(s *metadata.Snapshot, m *metadata.Module) (int, *schemaerr.Errors, error) {
	var errs *schemaerr.Errors
	added := 0
	targets := []struct {
		what   string
		ref    *metadata.VariantRef
		merged **MergedVariant
	}{
		{"calls", m.Calls, &a.Merged.Calls},
		{"errors", m.Errors, &a.Merged.Errors},
		{"events", m.Events, &a.Merged.Events},
	}
	for _, t := range targets {
		if t.ref == nil {
			continue
		}
		cases, err := variantCases(s, m, t.what, t.ref)
		if err != nil {
			if !schemaerr.IsFatal(err) {
				se, _ := schemaerr.As(err)
				errs = errs.With(se)
				logger.Warn("skipping module variant", "module", m.Name, "specVersion", s.SpecVersion, "error", err)
				if *t.merged == nil {
					*t.merged = &MergedVariant{TypeID: t.ref.TypeID}
				}
				continue
			}
			return added, errs, err
		}
		if *t.merged == nil {
			*t.merged = &MergedVariant{TypeID: t.ref.TypeID}
		}
		added += unionCases(*t.merged, cases)
	}

	added += a.unionConstants(m.Constants)
	added += a.unionStorage(m.Storage)
	return added, errs, nil
}

func variantCases(s *metadata.Snapshot, m *metadata.Module, what string, ref *metadata.VariantRef) ([]metadata.VariantCase, error) {
	n, ok := s.Types[ref.TypeID]
	if !ok {
		return nil, schemaerr.New(schemaerr.NewUnresolvedReference{
			Owner: fmt.Sprintf("module %s %s (spec version %d)", m.Name, what, s.SpecVersion),
			ID:    ref.TypeID,
		})
	}
	v, ok := n.Def.(*metadata.Variant)
	if !ok {
		return nil, schemaerr.New(schemaerr.NewUnsupportedShape{
			ID:     ref.TypeID,
			Shape:  n.Kind().String(),
			Reason: fmt.Sprintf("module %s %s must reference a variant", m.Name, what),
		})
	}
	return v.Cases, nil
}

func unionCases(merged *MergedVariant, cases []metadata.VariantCase) int {
	var added int
	merged.Cases, added = util.AppendMissing(merged.Cases, cases, func(c metadata.VariantCase) string { return c.Name }, metadata.VariantCase.Clone)
	return added
}

func (a *ModuleAggregate) unionConstants(constants []metadata.Constant) int {
	var added int
	a.Merged.Constants, added = util.AppendMissing(a.Merged.Constants, constants, func(c metadata.Constant) string { return c.Name }, metadata.Constant.Clone)
	return added
}

func (a *ModuleAggregate) unionStorage(s *metadata.Storage) int {
	if s == nil {
		return 0
	}
	if a.Merged.Storage == nil {
		a.Merged.Storage = s.Clone()
		return len(s.Entries)
	}
	var added int
	a.Merged.Storage.Entries, added = util.AppendMissing(a.Merged.Storage.Entries, s.Entries, func(e metadata.Entry) string { return e.Name }, metadata.Entry.Clone)
	return added
}

func remapToFixpoint(m *MergedModule, mapping metadata.Mapping) error {
	if len(mapping) == 0 {
		return nil
	}
	for i := 0; ; i++ {
		if i >= MaxRemapIterations {
			return schemaerr.New(schemaerr.NewNoConvergence{
				Pass:       fmt.Sprintf("module %s reference resolution", m.Name),
				Iterations: i,
			})
		}
		if !RemapMerged(m, mapping) {
			return nil
		}
	}
}
