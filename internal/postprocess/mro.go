// Package postprocess implements the §4.4–§4.8 stages — MRO linearization,
// re-export relocation, privacy assignment, and docformat inheritance
// (overload grouping happens in internal/astbuild) — each as an extension.PostProcessor so that
// driver-registered extensions interleave with them by priority (ties
// broken by insertion order, §4.2.6).
package postprocess

import (
	"sort"

	"github.com/oxhq/apidocs/internal/model"
	"github.com/oxhq/apidocs/internal/resolver"
)

// MROProcessor resolves each class's raw base list and computes its MRO
// via C3 linearization (§4.4), falling back to a depth-first,
// left-to-right, de-duplicated order when C3 fails.
type MROProcessor struct {
	Resolver *resolver.Resolver
}

func NewMROProcessor(r *resolver.Resolver) *MROProcessor {
	return &MROProcessor{Resolver: r}
}

func (p *MROProcessor) Name() string { return "mro-linearize" }
func (p *MROProcessor) Priority() int { return 100 }

func (p *MROProcessor) PostProcess(sys *model.System, sink *model.Sink) {
	var classes []*model.Documentable
	for _, d := range sys.All() {
		if d.Kind.IsClassLike() && d.Class != nil {
			classes = append(classes, d)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })

	for _, cls := range classes {
		p.resolveBases(sys, cls)
	}
	for _, cls := range classes {
		p.computeMRO(sys, sink, cls)
	}
	for _, cls := range classes {
		p.populateSubclasses(sys, cls)
	}
}

func (p *MROProcessor) resolveBases(sys *model.System, cls *model.Documentable) {
	cls.Class.ResolvedBases = cls.Class.ResolvedBases[:0]
	for _, raw := range cls.Class.RawBases {
		res := p.Resolver.Resolve(cls, raw)
		switch res.Kind {
		case resolver.ResultInternal:
			cls.Class.ResolvedBases = append(cls.Class.ResolvedBases, model.BaseRef{
				Raw: raw, ResolvedID: res.Target.ID, Resolved: true,
			})
		case resolver.ResultExternal:
			cls.Class.ResolvedBases = append(cls.Class.ResolvedBases, model.BaseRef{
				Raw: raw, External: true, ExternalName: res.QName,
			})
		default:
			cls.Class.ResolvedBases = append(cls.Class.ResolvedBases, model.BaseRef{
				Raw: raw, Resolved: false, ExternalName: raw,
			})
		}
	}
}

func (p *MROProcessor) computeMRO(sys *model.System, sink *model.Sink, cls *model.Documentable) {
	internalParents := internalParentIDs(cls)
	mro, ok := c3Linearize(sys, cls.ID, internalParents)
	if !ok {
		mro = dfsLinearize(sys, cls.ID, internalParents)
		cls.Class.MROFailed = true
		sink.Warn(model.Warning{
			Kind:     model.WarnMROFailure,
			Message:  "C3 linearization failed for " + cls.FQName + "; falling back to depth-first order",
			Location: cls.Loc,
		})
	}
	cls.Class.MRO = mro
}

func internalParentIDs(cls *model.Documentable) []model.ID {
	var ids []model.ID
	for _, b := range cls.Class.ResolvedBases {
		if b.Resolved {
			ids = append(ids, b.ResolvedID)
		}
	}
	return ids
}

// c3Linearize computes the C3 merge of classID's parent linearizations
// plus the parent list itself, per the standard Python MRO algorithm.
func c3Linearize(sys *model.System, classID model.ID, parentIDs []model.ID) ([]model.ID, bool) {
	if len(parentIDs) == 0 {
		return []model.ID{classID, model.RootObjectID}, true
	}

	var sequences [][]model.ID
	for _, pid := range parentIDs {
		parent := sys.Get(pid)
		if parent == nil || parent.Class == nil {
			sequences = append(sequences, []model.ID{pid})
			continue
		}
		if len(parent.Class.MRO) > 0 {
			seq := make([]model.ID, len(parent.Class.MRO))
			copy(seq, parent.Class.MRO)
			sequences = append(sequences, seq)
		} else {
			grandParents := internalParentIDs(parent)
			seq, ok := c3Linearize(sys, pid, grandParents)
			if !ok {
				return nil, false
			}
			sequences = append(sequences, seq)
		}
	}
	sequences = append(sequences, append([]model.ID{}, parentIDs...))

	result := []model.ID{classID}
	for {
		allEmpty := true
		for _, seq := range sequences {
			if len(seq) > 0 {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			return result, true
		}

		var head model.ID
		found := false
		for _, seq := range sequences {
			if len(seq) == 0 {
				continue
			}
			candidate := seq[0]
			if appearsInTail(sequences, candidate) {
				continue
			}
			head = candidate
			found = true
			break
		}
		if !found {
			return nil, false
		}

		result = append(result, head)
		for i, seq := range sequences {
			sequences[i] = removeFirstOccurrence(seq, head)
		}
	}
}

func appearsInTail(sequences [][]model.ID, id model.ID) bool {
	for _, seq := range sequences {
		for i := 1; i < len(seq); i++ {
			if seq[i] == id {
				return true
			}
		}
	}
	return false
}

func removeFirstOccurrence(seq []model.ID, id model.ID) []model.ID {
	for i, v := range seq {
		if v == id {
			return append(append([]model.ID{}, seq[:i]...), seq[i+1:]...)
		}
	}
	return seq
}

// dfsLinearize is the §4.4 fallback: depth-first, left-to-right,
// de-duplicated base traversal.
func dfsLinearize(sys *model.System, classID model.ID, parentIDs []model.ID) []model.ID {
	seen := map[model.ID]bool{classID: true}
	result := []model.ID{classID}
	var visit func(id model.ID)
	visit = func(id model.ID) {
		if seen[id] {
			return
		}
		seen[id] = true
		result = append(result, id)
		parent := sys.Get(id)
		if parent == nil || parent.Class == nil {
			return
		}
		for _, pid := range internalParentIDs(parent) {
			visit(pid)
		}
	}
	for _, pid := range parentIDs {
		visit(pid)
	}
	return append(result, model.RootObjectID)
}

func (p *MROProcessor) populateSubclasses(sys *model.System, cls *model.Documentable) {
	for _, ancestorID := range cls.Class.MRO {
		if ancestorID == cls.ID {
			continue
		}
		ancestor := sys.Get(ancestorID)
		if ancestor == nil || ancestor.Class == nil {
			continue
		}
		if !containsID(ancestor.Class.SubclassIDs, cls.ID) {
			ancestor.Class.SubclassIDs = append(ancestor.Class.SubclassIDs, cls.ID)
		}
	}
}

func containsID(ids []model.ID, target model.ID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
