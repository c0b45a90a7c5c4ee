package postprocess

import (
	"sort"
	"strings"

	"github.com/oxhq/apidocs/internal/model"
	"github.com/oxhq/apidocs/internal/resolver"
)

// ReexportProcessor implements §4.5: for each Module whose all_exports is
// set, every listed name that resolves (via import) to an entity whose
// canonical parent is a different module gets an alias at this module's
// qname, and the entity's canonical qname is relocated to the innermost
// (shortest, tie-broken lexicographically) re-export site. A wildcard
// import into a module with no all_exports is treated as re-exporting
// every non-underscore-prefixed name of the source module as it stood
// when the wildcard was processed.
type ReexportProcessor struct {
	Resolver *resolver.Resolver
}

func NewReexportProcessor(r *resolver.Resolver) *ReexportProcessor {
	return &ReexportProcessor{Resolver: r}
}

func (p *ReexportProcessor) Name() string  { return "reexport-relocate" }
func (p *ReexportProcessor) Priority() int { return 90 }

type reexportCandidate struct {
	module *model.Documentable
	name   string
}

func (p *ReexportProcessor) PostProcess(sys *model.System, sink *model.Sink) {
	var modules []*model.Documentable
	for _, d := range sys.All() {
		if d.Module != nil {
			modules = append(modules, d)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })

	// Gather every (module, exported name) candidate in a stable order
	// before relocating anything, so "first encountered in processing
	// order" (§4.5) is well defined across modules.
	var candidates []reexportCandidate
	for _, mod := range modules {
		for _, name := range p.exportedNames(sys, mod) {
			candidates = append(candidates, reexportCandidate{module: mod, name: name})
		}
	}

	// innermost[entityID] tracks the current best (shortest, then
	// lexicographically-first) re-export qname for that entity.
	innermost := make(map[model.ID]string)

	for _, c := range candidates {
		target := p.Resolver.Resolve(c.module, c.name)
		if target.Kind != resolver.ResultInternal {
			continue
		}
		entity := target.Target
		if !entity.HasParent {
			continue
		}
		canonicalParent := sys.Get(entity.ParentID)
		if canonicalParent == nil || canonicalParent.ID == c.module.ID {
			continue // already native to this module
		}

		candidateQName := model.ChildQName(c.module.FQName, c.name)
		existing, has := innermost[entity.ID]
		if has && candidateQName != existing && len(candidateQName) == len(existing) {
			sink.Warn(model.Warning{
				Kind:     model.WarnDuplicateReExport,
				Message:  "ambiguous re-export of " + entity.FQName + " at equally-short qname " + candidateQName,
				Location: c.module.Loc,
			})
		}
		if !has || isInnermost(candidateQName, existing) {
			innermost[entity.ID] = candidateQName
		}
	}

	for entityID, qname := range innermost {
		entity := sys.Get(entityID)
		if entity == nil {
			continue
		}
		oldQName := entity.FQName
		entity.FQName = qname
		sys.Rebind(qname, entityID)
		if oldQName != qname {
			sys.Unbind(oldQName)
		}
	}
}

// isInnermost reports whether candidate is a strictly shorter qname than
// current, or equally short but lexicographically first.
func isInnermost(candidate, current string) bool {
	if len(candidate) != len(current) {
		return len(candidate) < len(current)
	}
	return candidate < current
}

// exportedNames returns the names mod's all_exports declares, or, absent
// an explicit all_exports, every non-underscore-prefixed name introduced
// by a wildcard import into mod.
func (p *ReexportProcessor) exportedNames(sys *model.System, mod *model.Documentable) []string {
	if mod.Module.HasAllExports {
		return mod.Module.AllExports
	}
	var names []string
	for _, imp := range mod.Module.Imports {
		if !imp.Wildcard {
			continue
		}
		src, ok := sys.Lookup(imp.SourceModule)
		if !ok {
			continue
		}
		for _, id := range src.ChildrenIDs {
			child := sys.Get(id)
			if child != nil && !strings.HasPrefix(child.Name, "_") {
				names = append(names, child.Name)
			}
		}
	}
	return names
}
