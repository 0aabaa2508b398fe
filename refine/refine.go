// Package refine removes single-field wrapper composites from a snapshot.
//
// Bounded collection types are commonly encoded as a composite with a single
// sequence field, instantiated once per bound. Those wrappers carry no
// information once decoded, so every reference to one is pointed at the
// sequence it wraps instead.
package refine

import (
	"github.com/cottand/palletgen/internal/log"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/schemaerr"
)

var logger = log.DefaultLogger.With("section", "refine")

// DefaultMaxIterations caps the detect/rewrite loop when Options.MaxIterations is unset
const DefaultMaxIterations = 64

type Options struct {
	MaxIterations int
	// PruneOrphans removes wrapper nodes that are no longer referenced once the fixpoint is reached
	PruneOrphans bool
}

type Result struct {
	// Iterations is the number of detect/rewrite passes run, including the last one which changed nothing
	Iterations int
	// Rewrites is every wrapper id detected and the sequence id that replaces it
	Rewrites metadata.Mapping
	Pruned   []metadata.TypeID
}

// Refine rewrites s in place until no wrapper reference is left
func Refine(s *metadata.Snapshot, opts Options) (Result, error) {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	res := Result{Rewrites: make(metadata.Mapping)}
	for {
		if res.Iterations >= maxIter {
			return res, schemaerr.New(schemaerr.NewNoConvergence{
				Pass:       "wrapper refinement",
				Iterations: res.Iterations,
			})
		}
		res.Iterations++

		wrappers := Detect(s.Types)
		changed := metadata.RemapTypes(s.Types, wrappers)
		// modules can reference a wrapper that no node references, so they
		// are rewritten on every pass, including the last one
		modulesChanged := metadata.RemapModules(s.Modules, wrappers)
		res.Rewrites.Merge(wrappers)
		if changed || modulesChanged {
			logger.Debug("rewrote wrapper references",
				"specVersion", s.SpecVersion,
				"iteration", res.Iterations,
				"wrappers", len(wrappers))
		}
		if !changed {
			break
		}
	}

	if opts.PruneOrphans {
		res.Pruned = PruneOrphans(s, res.Rewrites)
	}
	logger.Debug("refined snapshot",
		"specVersion", s.SpecVersion,
		"iterations", res.Iterations,
		"rewrites", len(res.Rewrites),
		"pruned", len(res.Pruned))
	return res, nil
}

// Detect returns sourceID → destinationID for every wrapper in types.
// A wrapper is a composite that shares its path with at least one other
// composite and has exactly one field, which references a sequence.
func Detect(types map[metadata.TypeID]*metadata.Node) metadata.Mapping {
	byPath := make(map[string][]*metadata.Node)
	for _, id := range metadata.SortedTypeIDs(types) {
		n := types[id]
		if n.Kind() != metadata.KindComposite || len(n.Path) == 0 {
			continue
		}
		key := n.JoinedPath()
		byPath[key] = append(byPath[key], n)
	}

	wrappers := make(metadata.Mapping)
	for _, group := range byPath {
		if len(group) < 2 {
			continue
		}
		for _, n := range group {
			fields := n.Def.(*metadata.Composite).Fields
			if len(fields) != 1 {
				continue
			}
			dst, ok := types[fields[0].TypeID]
			if !ok || dst.Kind() != metadata.KindSequence {
				continue
			}
			wrappers[n.ID] = dst.ID
		}
	}
	return wrappers
}
