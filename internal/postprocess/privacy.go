package postprocess

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/apidocs/internal/model"
)

// PrivacyProcessor implements §4.6: default name-shape rules, then the
// System's ordered glob override table (last match wins, except an
// exact-qname rule always beats a glob), then transitive propagation of
// HIDDEN from a Module/Package/Class down to every descendant.
type PrivacyProcessor struct{}

func NewPrivacyProcessor() *PrivacyProcessor { return &PrivacyProcessor{} }

func (p *PrivacyProcessor) Name() string  { return "privacy-assign" }
func (p *PrivacyProcessor) Priority() int { return 80 }

func (p *PrivacyProcessor) PostProcess(sys *model.System, sink *model.Sink) {
	var all []*model.Documentable
	for _, d := range sys.All() {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	rules := sys.PrivacyRules()
	for _, d := range all {
		base := defaultPrivacy(d.Name)
		if listedInAllExports(sys, d) {
			base = model.PUBLIC
		}
		d.Privacy = applyRules(base, d.FQName, rules)
	}

	propagateHidden(sys, all)
}

func defaultPrivacy(name string) model.Privacy {
	switch {
	case isDunder(name):
		return model.PUBLIC
	case len(name) > 0 && name[0] == '_':
		return model.PRIVATE
	default:
		return model.PUBLIC
	}
}

// listedInAllExports reports whether d's owning module/package declared an
// __all__ and named d in it: an explicit __all__ entry always wins over
// name-shape inference, so a leading-underscore name listed in __all__ is
// still PUBLIC (spec.md §4.6).
func listedInAllExports(sys *model.System, d *model.Documentable) bool {
	if !d.HasParent {
		return false
	}
	owner := sys.Get(d.ParentID)
	if owner == nil || owner.Module == nil || !owner.Module.HasAllExports {
		return false
	}
	for _, name := range owner.Module.AllExports {
		if name == d.Name {
			return true
		}
	}
	return false
}

func isDunder(name string) bool {
	return len(name) >= 4 && name[:2] == "__" && name[len(name)-2:] == "__"
}

// applyRules walks rules in registration order so the last matching one
// wins, except that an exact (non-glob) qname match always beats a glob
// match regardless of position.
func applyRules(base model.Privacy, qname string, rules []model.PrivacyRule) model.Privacy {
	result := base
	exactMatched := false
	for _, rule := range rules {
		if rule.Pattern == qname {
			result = rule.Privacy
			exactMatched = true
			continue
		}
		if exactMatched {
			continue
		}
		if ok, _ := doublestar.Match(rule.Pattern, qname); ok {
			result = rule.Privacy
		}
	}
	return result
}

// propagateHidden implements "a HIDDEN Module/Package/Class transitively
// hides all descendants": any Documentable with a HIDDEN ancestor is
// itself HIDDEN, regardless of what its own rule match computed.
func propagateHidden(sys *model.System, all []*model.Documentable) {
	memo := make(map[model.ID]bool)
	var hasHiddenAncestor func(d *model.Documentable) bool
	hasHiddenAncestor = func(d *model.Documentable) bool {
		if !d.HasParent {
			return false
		}
		if v, ok := memo[d.ParentID]; ok {
			return v
		}
		parent := sys.Get(d.ParentID)
		if parent == nil {
			memo[d.ParentID] = false
			return false
		}
		v := parent.Privacy == model.HIDDEN || hasHiddenAncestor(parent)
		memo[d.ParentID] = v
		return v
	}
	for _, d := range all {
		if hasHiddenAncestor(d) {
			d.Privacy = model.HIDDEN
		}
	}
}
