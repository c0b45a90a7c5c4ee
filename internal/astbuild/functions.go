package astbuild

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/apidocs/internal/model"
)

// handleFunctionDefinition builds a Function/Method Documentable (or, per
// §4.7, an Attribute of kind Property when a decorator's dotted name ends
// in "property"). class is accepted for call-site symmetry with
// handleDecoratedDefinition but owner already identifies the containing
// scope (a class body's owner is the class itself).
func (b *Builder) handleFunctionDefinition(st *fillState, node *sitter.Node, owner, class *model.Documentable, decorators []model.Decorator) *model.Documentable {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := b.text(st, nameNode)
	loc := b.locOf(st, node)

	if isPropertyDecorated(decorators) {
		return b.buildPropertyAttribute(st, node, owner, name, loc, decorators)
	}

	kind := model.KindFunction
	if owner.Kind.IsClassLike() {
		kind = model.KindMethod
		switch {
		case hasDecoratorSuffix(decorators, "classmethod"):
			kind = model.KindClassMethod
		case hasDecoratorSuffix(decorators, "staticmethod"):
			kind = model.KindStaticMethod
		}
	}

	d := b.allocChild(st, owner, name, kind, loc)
	isAsync := false
	nc := int(node.ChildCount())
	for i := 0; i < nc; i++ {
		if node.Child(i).Type() == "async" {
			isAsync = true
			break
		}
	}

	d.Func = &model.FuncData{
		Decorators: decorators,
		IsAsync:    isAsync,
		IsOverload: hasDecoratorSuffix(decorators, "overload"),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		d.Func.Signature = b.parseParameters(st, params)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		d.Func.ReturnType = b.text(st, ret)
		d.Func.HasReturn = true
	}

	if body := node.ChildByFieldName("body"); body != nil {
		if body.ChildCount() > 0 {
			if doc, ok := b.bareStringLiteral(st, body.Child(0)); ok {
				d.Doc = &model.Docstring{Text: doc}
			}
		}
	}

	if owner.Kind.IsClassLike() && owner.Class != nil && b.isConstructorName(name) {
		owner.Class.ConstructorMethodIDs = append(owner.Class.ConstructorMethodIDs, d.ID)
		if body := node.ChildByFieldName("body"); body != nil {
			b.scanConstructorSelfAttrs(st, body, owner)
		}
	}

	b.groupOverload(st, owner, d)
	b.runVisitors(st, findModuleAncestor(st, owner), d, node)
	return d
}

func (b *Builder) isConstructorName(name string) bool {
	for _, n := range b.opts.ConstructorNames {
		if n == name {
			return true
		}
	}
	return false
}

func isPropertyDecorated(decorators []model.Decorator) bool {
	return hasDecoratorSuffix(decorators, "property")
}

func hasDecoratorSuffix(decorators []model.Decorator, suffix string) bool {
	for _, d := range decorators {
		if strings.EqualFold(lastDotSegment(d.DottedName), suffix) {
			return true
		}
	}
	return false
}

// buildPropertyAttribute implements §4.7's property reclassification: the
// decorated Function becomes a Property Attribute; its Function kind is
// discarded entirely (no Func payload is created).
func (b *Builder) buildPropertyAttribute(st *fillState, node *sitter.Node, owner *model.Documentable, name string, loc model.Location, decorators []model.Decorator) *model.Documentable {
	d := b.allocChild(st, owner, name, model.KindProperty, loc)
	d.Attr = &model.AttrData{SubKind: model.AttrVariable}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		d.Attr.DeclaredType = b.text(st, ret)
		d.Attr.HasType = true
	}
	if body := node.ChildByFieldName("body"); body != nil && body.ChildCount() > 0 {
		if doc, ok := b.bareStringLiteral(st, body.Child(0)); ok {
			d.Doc = &model.Docstring{Text: doc}
		}
	}
	b.runVisitors(st, findModuleAncestor(st, owner), d, node)
	return d
}

// groupOverload implements §4.7: multiple declarations sharing the same
// parent and name, each decorated with @overload, collapse under the
// canonical (non-overload) implementation's OverloadIDs; siblings set
// OverloadOf to the canonical implementation once it is found.
func (b *Builder) groupOverload(st *fillState, owner, d *model.Documentable) {
	var canonical *model.Documentable
	var overloads []*model.Documentable
	for _, id := range owner.ChildrenIDs {
		sib := st.sys.Get(id)
		if sib == nil || sib.Func == nil || sib.Name != d.Name {
			continue
		}
		if sib.Func.IsOverload {
			overloads = append(overloads, sib)
		} else {
			canonical = sib
		}
	}
	if canonical == nil {
		return
	}
	var ids []model.ID
	for _, o := range overloads {
		o.Func.OverloadOf = canonical.ID
		ids = append(ids, o.ID)
	}
	canonical.Func.OverloadIDs = ids
}

// scanConstructorSelfAttrs walks a constructor method's body for
// self.<name> = ... assignments, creating InstanceVariable Attributes
// under class (spec.md §4.2.1's third Attribute source).
func (b *Builder) scanConstructorSelfAttrs(st *fillState, body *sitter.Node, class *model.Documentable) {
	n := int(body.ChildCount())
	for i := 0; i < n; i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "expression_statement":
			b.maybeSelfAssignment(st, child, class)
		case "if_statement", "for_statement", "while_statement", "with_statement", "try_statement":
			m := int(child.ChildCount())
			for j := 0; j < m; j++ {
				sub := child.Child(j)
				if sub != nil && sub.Type() == "block" {
					b.scanConstructorSelfAttrs(st, sub, class)
				}
			}
		}
	}
}

func (b *Builder) maybeSelfAssignment(st *fillState, stmt *sitter.Node, class *model.Documentable) {
	if stmt.NamedChildCount() == 0 {
		return
	}
	expr := stmt.NamedChild(0)
	if expr.Type() != "assignment" {
		return
	}
	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	typeNode := expr.ChildByFieldName("type")
	if left == nil || left.Type() != "attribute" {
		return
	}
	obj := left.ChildByFieldName("object")
	attr := left.ChildByFieldName("attribute")
	if obj == nil || attr == nil || b.text(st, obj) != "self" {
		return
	}
	name := b.text(st, attr)
	d := b.findChildAttribute(st, class, name)
	if d == nil {
		d = b.allocChild(st, class, name, model.KindAttribute, b.locOf(st, stmt))
		d.Attr = &model.AttrData{SubKind: model.AttrInstanceVariable}
	}
	if right != nil {
		d.Attr.ValueSource = b.text(st, right)
		d.Attr.HasValue = true
	}
	if typeNode != nil {
		d.Attr.DeclaredType = b.text(st, typeNode)
		d.Attr.HasType = true
	}
}

// parseParameters walks a `parameters` node's children, classifying each
// by Python's positional-only (`/`) / keyword-only (`*`) markers.
func (b *Builder) parseParameters(st *fillState, params *sitter.Node) []model.Parameter {
	var out []model.Parameter
	kind := model.ParamPositionalOrKeyword
	n := int(params.ChildCount())
	for i := 0; i < n; i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "/", "positional_separator":
			for j := range out {
				out[j].Kind = model.ParamPositionalOnly
			}
		case "*", "keyword_separator":
			kind = model.ParamKeywordOnly
		case "identifier":
			if b.text(st, child) == "self" || b.text(st, child) == "cls" {
				continue
			}
			out = append(out, model.Parameter{Name: b.text(st, child), Kind: kind})
		case "typed_parameter":
			out = append(out, b.parseTypedParameter(st, child, kind))
		case "default_parameter":
			out = append(out, b.parseDefaultParameter(st, child, kind, false))
		case "typed_default_parameter":
			out = append(out, b.parseDefaultParameter(st, child, kind, true))
		case "list_splat_pattern":
			out = append(out, b.parseSplat(st, child, model.ParamVariadicPositional))
			kind = model.ParamKeywordOnly
		case "dictionary_splat_pattern":
			out = append(out, b.parseSplat(st, child, model.ParamVariadicKeyword))
		}
	}
	return out
}

func (b *Builder) parseTypedParameter(st *fillState, node *sitter.Node, kind model.ParamKind) model.Parameter {
	var name, declType string
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		c := node.Child(i)
		switch c.Type() {
		case "identifier":
			name = b.text(st, c)
		case "type":
			declType = b.text(st, c)
		}
	}
	return model.Parameter{Name: name, Kind: kind, DeclaredType: declType}
}

func (b *Builder) parseDefaultParameter(st *fillState, node *sitter.Node, kind model.ParamKind, typed bool) model.Parameter {
	nameNode := node.ChildByFieldName("name")
	valueNode := node.ChildByFieldName("value")
	p := model.Parameter{Kind: kind}
	if nameNode != nil {
		// typed_default_parameter's "name" field is itself an identifier;
		// plain default_parameter's "name" is too.
		p.Name = b.text(st, nameNode)
	}
	if typed {
		if t := node.ChildByFieldName("type"); t != nil {
			p.DeclaredType = b.text(st, t)
		}
	}
	if valueNode != nil {
		p.Default = b.text(st, valueNode)
		p.HasDefault = true
	}
	return p
}

func (b *Builder) parseSplat(st *fillState, node *sitter.Node, kind model.ParamKind) model.Parameter {
	if node.NamedChildCount() > 0 {
		return model.Parameter{Name: b.text(st, node.NamedChild(0)), Kind: kind}
	}
	return model.Parameter{Kind: kind}
}
