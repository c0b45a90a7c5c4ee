package astbuild

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/apidocs/internal/model"
)

// handleClassDefinition builds a Class Documentable (or Exception, when
// a raw base names an exception-like convention is left to post-
// processing/extensions; the builder always tags KindClass and lets
// extensions reclassify) and recurses into its body.
func (b *Builder) handleClassDefinition(st *fillState, node *sitter.Node, owner *model.Documentable, decorators []model.Decorator) *model.Documentable {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := b.text(st, nameNode)
	loc := b.locOf(st, node)

	d := b.allocChild(st, owner, name, model.KindClass, loc)
	d.Class = &model.ClassData{Decorators: decorators}

	if bases := node.ChildByFieldName("superclasses"); bases != nil {
		n := int(bases.NamedChildCount())
		for i := 0; i < n; i++ {
			arg := bases.NamedChild(i)
			if arg.Type() == "keyword_argument" {
				continue // e.g. metaclass=...; not a base
			}
			d.Class.RawBases = append(d.Class.RawBases, b.text(st, arg))
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		if body.ChildCount() > 0 {
			if doc, ok := b.bareStringLiteral(st, body.Child(0)); ok {
				d.Doc = &model.Docstring{Text: doc}
			}
		}
		b.walkClassBody(st, body, d)
	}

	b.runVisitors(st, findModuleAncestor(st, owner), d, node)
	return d
}

func (b *Builder) walkClassBody(st *fillState, body *sitter.Node, class *model.Documentable) {
	b.walkBody(st, body, class, class)
}

// handleDecoratedDefinition unwraps a decorated_definition's "decorator"
// fields and dispatches to the wrapped class_definition/function_definition.
func (b *Builder) handleDecoratedDefinition(st *fillState, node *sitter.Node, owner, class *model.Documentable) *model.Documentable {
	decorators := b.extractDecorators(st, node)
	def := node.ChildByFieldName("definition")
	if def == nil {
		n := int(node.ChildCount())
		for i := n - 1; i >= 0; i-- {
			c := node.Child(i)
			if c.Type() == "class_definition" || c.Type() == "function_definition" {
				def = c
				break
			}
		}
	}
	if def == nil {
		return nil
	}
	switch def.Type() {
	case "class_definition":
		return b.handleClassDefinition(st, def, owner, decorators)
	case "function_definition":
		return b.handleFunctionDefinition(st, def, owner, class, decorators)
	}
	return nil
}

func (b *Builder) extractDecorators(st *fillState, node *sitter.Node) []model.Decorator {
	var decs []model.Decorator
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		child := node.Child(i)
		if child == nil || child.Type() != "decorator" {
			continue
		}
		decs = append(decs, b.parseDecorator(st, child))
	}
	return decs
}

func (b *Builder) parseDecorator(st *fillState, dec *sitter.Node) model.Decorator {
	if dec.NamedChildCount() == 0 {
		return model.Decorator{}
	}
	value := dec.NamedChild(0)
	if value.Type() == "call" {
		fn := value.ChildByFieldName("function")
		args := value.ChildByFieldName("arguments")
		return model.Decorator{DottedName: b.text(st, fn), ArgsSource: b.text(st, args)}
	}
	return model.Decorator{DottedName: b.text(st, value)}
}
