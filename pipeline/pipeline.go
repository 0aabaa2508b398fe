// Package pipeline runs the refine, align, unify and aggregate passes over
// decoded snapshots and plans the resulting definitions.
//
// Snapshots handed to a pipeline are refined and aligned in place.
package pipeline

import (
	"github.com/cottand/palletgen/aggregate"
	"github.com/cottand/palletgen/align"
	"github.com/cottand/palletgen/emit"
	"github.com/cottand/palletgen/internal/log"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/refine"
	"github.com/cottand/palletgen/resolve"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/cottand/palletgen/unify"
)

var logger = log.DefaultLogger.With("section", "pipeline")

type Options struct {
	Runtime string
	Project string
	// Prune removes wrapper nodes left unreferenced by refinement
	Prune bool
	// SortByVersion orders snapshots by spec version before aligning them;
	// otherwise they are merged in the order given
	SortByVersion bool
	// MaxIterations caps every fixpoint loop of refinement, see refine.DefaultMaxIterations
	MaxIterations int
}

func (o Options) refineOptions() refine.Options {
	return refine.Options{MaxIterations: o.MaxIterations, PruneOrphans: o.Prune}
}

type SingleResult struct {
	Snapshot   *metadata.Snapshot
	Refinement refine.Result
	Resolver   *resolve.Resolver
	Aggregates *aggregate.Aggregates
	Plan       *emit.Plan
	// Diagnostics holds the recoverable errors of the run
	Diagnostics *schemaerr.Errors
}

// Single refines one snapshot and plans its definitions without version tags
func Single(s *metadata.Snapshot, opts Options) (*SingleResult, error) {
	res := &SingleResult{Snapshot: s}
	logger.Info("refining snapshot", "specVersion", s.SpecVersion, "types", len(s.Types), "modules", len(s.Modules))

	refined, err := refine.Refine(s, opts.refineOptions())
	res.Refinement = refined
	if err != nil {
		return res, err
	}
	res.Resolver = resolve.New(opts.Runtime, opts.Project, s.Types, nil)

	aggs, diags, err := aggregate.Aggregate([]*metadata.Snapshot{s}, nil)
	res.Aggregates = aggs
	res.Diagnostics = res.Diagnostics.Merge(diags)
	if err != nil {
		return res, err
	}

	plan, diags, err := emit.PlanSnapshot(res.Resolver)
	res.Plan = plan
	res.Diagnostics = res.Diagnostics.Merge(diags)
	if err != nil {
		return res, err
	}
	res.Diagnostics = res.Diagnostics.Merge(emit.PlanModules(plan, aggs, res.Resolver))

	logResult("planned snapshot", res.Plan, res.Diagnostics, "specVersion", s.SpecVersion)
	return res, nil
}

type MultiResult struct {
	// Snapshots are the snapshots merged, after dropping duplicate versions
	Snapshots   []*metadata.Snapshot
	Duplicates  []align.Duplicate
	Refinements []refine.Result
	Shifts      []align.Shift

	Nodes         []unify.RefinedType
	Mothers       []*unify.Mother
	Resolver      *resolve.Resolver
	ChildToMother metadata.Mapping
	Aggregates    *aggregate.Aggregates
	Plan          *emit.Plan
	// Diagnostics holds the recoverable errors of the run
	Diagnostics *schemaerr.Errors
}

// Multi merges several versions of a runtime into mother and child types
// and one aggregate per module
func Multi(snapshots []*metadata.Snapshot, opts Options) (*MultiResult, error) {
	res := &MultiResult{}
	res.Snapshots, res.Duplicates = align.Distinct(snapshots)
	if opts.SortByVersion {
		align.SortByVersion(res.Snapshots)
	}
	logger.Info("merging snapshots", "snapshots", len(res.Snapshots), "duplicates", len(res.Duplicates))

	for _, s := range res.Snapshots {
		logger.Debug("refining snapshot", "specVersion", s.SpecVersion, "fingerprint", s.Fingerprint())
		refined, err := refine.Refine(s, opts.refineOptions())
		res.Refinements = append(res.Refinements, refined)
		if err != nil {
			return res, err
		}
	}

	shifts, err := align.Align(res.Snapshots)
	res.Shifts = shifts
	if err != nil {
		return res, err
	}

	resolvers := make([]*resolve.Resolver, len(res.Snapshots))
	for i, s := range res.Snapshots {
		resolvers[i] = resolve.New(opts.Runtime, opts.Project, s.Types, &s.SpecVersion)
	}
	unified, err := unify.Unify(unify.ChildrenOf(resolvers...))
	if err != nil {
		return res, err
	}
	res.Nodes = unified.Nodes
	res.Mothers = unified.Mothers
	res.Resolver = unified.Resolver
	res.ChildToMother = unified.ChildToMother

	aggs, diags, err := aggregate.Aggregate(res.Snapshots, res.ChildToMother)
	res.Aggregates = aggs
	res.Diagnostics = res.Diagnostics.Merge(diags)
	if err != nil {
		return res, err
	}

	plan, diags, err := emit.PlanTypes(res.Nodes)
	res.Plan = plan
	res.Diagnostics = res.Diagnostics.Merge(diags)
	if err != nil {
		return res, err
	}
	res.Diagnostics = res.Diagnostics.Merge(emit.PlanModules(plan, aggs, res.Resolver))

	logResult("planned snapshots", res.Plan, res.Diagnostics,
		"mothers", len(res.Mothers),
		"modules", res.Aggregates.Len())
	return res, nil
}

func logResult(msg string, plan *emit.Plan, diags *schemaerr.Errors, args ...any) {
	args = append(args, "types", len(plan.Types), "outputs", plan.Outputs.Size())
	if diags.HasError() {
		logger.Warn(msg+" with diagnostics", append(args, "diagnostics", diags)...)
		return
	}
	logger.Info(msg, args...)
}
