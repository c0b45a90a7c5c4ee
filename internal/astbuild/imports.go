package astbuild

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/apidocs/internal/model"
)

// handleImportStatement handles `import a.b.c` / `import a.b.c as x, d as y`.
func (b *Builder) handleImportStatement(st *fillState, node *sitter.Node, owner *model.Documentable) {
	loc := b.locOf(st, node)
	n := int(node.NamedChildCount())
	for i := 0; i < n; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name", "identifier":
			mod := b.text(st, child)
			owner.Module.Imports = append(owner.Module.Imports, model.Import{
				SourceModule: mod,
				Names:        []model.ImportedName{{Original: mod, Alias: lastDotSegment(mod)}},
				Location:     loc,
			})
		case "aliased_import":
			orig, alias := b.aliasedImportParts(st, child)
			owner.Module.Imports = append(owner.Module.Imports, model.Import{
				SourceModule: orig,
				Names:        []model.ImportedName{{Original: orig, Alias: alias}},
				Location:     loc,
			})
		}
	}
}

// handleImportFromStatement handles `from a.b import c, d as e` and
// `from . import x` / `from .. import y` and `from a.b import *`.
func (b *Builder) handleImportFromStatement(st *fillState, node *sitter.Node, owner *model.Documentable) {
	loc := b.locOf(st, node)
	imp := model.Import{Location: loc}

	n := int(node.ChildCount())
	sawImportKw := false
	for i := 0; i < n; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import":
			sawImportKw = true
		case ".", "...":
			if !sawImportKw {
				imp.RelativeDots += len([]rune(b.text(st, child)))
			}
		case "relative_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				part := child.NamedChild(j)
				switch part.Type() {
				case "import_prefix":
					imp.RelativeDots += strings.Count(b.text(st, part), ".")
				case "dotted_name":
					imp.SourceModule = b.text(st, part)
				}
			}
		case "dotted_name":
			if !sawImportKw {
				imp.SourceModule = b.text(st, child)
			} else {
				name := b.text(st, child)
				imp.Names = append(imp.Names, model.ImportedName{Original: name, Alias: name})
			}
		case "aliased_import":
			orig, alias := b.aliasedImportParts(st, child)
			imp.Names = append(imp.Names, model.ImportedName{Original: orig, Alias: alias})
		case "wildcard_import":
			imp.Wildcard = true
		case "identifier":
			if sawImportKw {
				name := b.text(st, child)
				imp.Names = append(imp.Names, model.ImportedName{Original: name, Alias: name})
			}
		}
	}

	owner.Module.Imports = append(owner.Module.Imports, imp)
}

func (b *Builder) aliasedImportParts(st *fillState, node *sitter.Node) (orig, alias string) {
	n := int(node.NamedChildCount())
	var names []string
	for i := 0; i < n; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name", "identifier":
			names = append(names, b.text(st, child))
		}
	}
	if len(names) == 2 {
		return names[0], names[1]
	}
	if len(names) == 1 {
		return names[0], names[0]
	}
	return "", ""
}

func lastDotSegment(dotted string) string {
	idx := strings.LastIndex(dotted, ".")
	if idx < 0 {
		return dotted
	}
	return dotted[idx+1:]
}
