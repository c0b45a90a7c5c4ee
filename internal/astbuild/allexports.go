package astbuild

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/apidocs/internal/model"
)

// handleAllExportsAssignment implements §4.2.4: the only supported form
// is a literal ordered sequence of string literals; anything else warns
// and leaves all_exports unset. An empty literal sequence means "export
// nothing", distinct from "not set".
func (b *Builder) handleAllExportsAssignment(st *fillState, right *sitter.Node, owner *model.Documentable) {
	if right == nil {
		b.warnMalformedAllExports(st, owner, "missing value")
		return
	}
	switch right.Type() {
	case "list", "tuple":
		names, ok := b.stringLiteralSequence(st, right)
		if !ok {
			b.warnMalformedAllExports(st, owner, "non-literal element")
			return
		}
		owner.Module.AllExports = names
		owner.Module.HasAllExports = true
	default:
		b.warnMalformedAllExports(st, owner, "not a literal list/tuple of strings")
	}
}

func (b *Builder) stringLiteralSequence(st *fillState, seq *sitter.Node) ([]string, bool) {
	n := int(seq.NamedChildCount())
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		elem := seq.NamedChild(i)
		if elem.Type() != "string" {
			return nil, false
		}
		names = append(names, b.stringLiteralText(st, elem))
	}
	return names, true
}

func (b *Builder) warnMalformedAllExports(st *fillState, owner *model.Documentable, reason string) {
	owner.Module.HasAllExports = false
	st.sink.Warn(model.Warning{
		Kind:     model.WarnMalformedAllExports,
		Message:  "malformed " + b.opts.AllExportsVar + " assignment: " + reason,
		Location: owner.Loc,
	})
}
