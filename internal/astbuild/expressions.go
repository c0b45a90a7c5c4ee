package astbuild

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/apidocs/internal/model"
)

// countSimpleAssignments scans body's direct statement children for
// identifier-target assignments, counting occurrences per name. Only
// direct (unconditional) statements are counted; anything nested inside
// a control-flow block is visited separately and is never eligible for
// Constant classification regardless of count (§4.2.1).
func (b *Builder) countSimpleAssignments(st *fillState, body *sitter.Node) map[string]int {
	counts := make(map[string]int)
	n := int(body.ChildCount())
	for i := 0; i < n; i++ {
		stmt := body.Child(i)
		if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		expr := stmt.NamedChild(0)
		if expr.Type() != "assignment" {
			continue
		}
		left := expr.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" {
			continue
		}
		counts[b.text(st, left)]++
	}
	return counts
}

// handleExpressionStatement processes one top-level/class-body statement
// that is an expression_statement: an assignment to the public-names or
// docformat variable, a plain attribute assignment, or an unrelated
// expression (ignored). Returns the Attribute just created, if any, so
// the caller can attach a following bare string literal as its docstring
// (§4.2.1 "inline attribute docstrings").
func (b *Builder) handleExpressionStatement(st *fillState, stmt *sitter.Node, owner, class *model.Documentable, conditional bool, counts map[string]int) *model.Documentable {
	if stmt.NamedChildCount() == 0 {
		return nil
	}
	expr := stmt.NamedChild(0)

	switch expr.Type() {
	case "assignment":
		return b.handleAssignment(st, expr, owner, conditional, counts)
	case "augmented_assignment":
		// §9 open question: augmented assignment to the public-names
		// variable is not interpreted as appending; it is ignored here,
		// same as any other augmented assignment at this scope.
		return nil
	default:
		return nil
	}
}

func (b *Builder) handleAssignment(st *fillState, assign *sitter.Node, owner *model.Documentable, conditional bool, counts map[string]int) *model.Documentable {
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	typeNode := assign.ChildByFieldName("type")
	if left == nil {
		return nil
	}

	if left.Type() == "identifier" {
		name := b.text(st, left)
		if owner.Module != nil {
			switch name {
			case b.opts.AllExportsVar:
				b.handleAllExportsAssignment(st, right, owner)
				return nil
			case b.opts.DocFormatVar:
				if right != nil && right.Type() == "string" {
					owner.Module.DeclaredDocFormat = b.stringLiteralText(st, right)
				}
				return nil
			}
		}
		return b.handlePlainAttribute(st, owner, name, right, typeNode, conditional, counts[name])
	}

	if left.Type() == "attribute" {
		// self.<name> = ... is only honored inside a recognized
		// constructor method (handled separately by scanConstructorSelfAttrs);
		// at module/class top level an attribute target on an arbitrary
		// object is not a Documentable binding.
		return nil
	}

	return nil
}

// handlePlainAttribute creates or updates an Attribute Documentable for a
// simple `name = value` / `name: Type = value` binding.
func (b *Builder) handlePlainAttribute(st *fillState, owner *model.Documentable, name string, right, typeNode *sitter.Node, conditional bool, assignCount int) *model.Documentable {
	// An annotation-only binding (`x: int`) has no right-hand side; its
	// location and visitor node are the annotation's.
	locNode := right
	if locNode == nil {
		locNode = typeNode
	}
	existing := b.findChildAttribute(st, owner, name)
	d := existing
	if d == nil {
		loc := b.locOf(st, locNode)
		d = b.allocChild(st, owner, name, model.KindAttribute, loc)
		d.Attr = &model.AttrData{}
		if owner.Kind.IsClassLike() {
			d.Attr.SubKind = model.AttrClassVariable
		} else {
			d.Attr.SubKind = model.AttrVariable
		}
	}

	if right != nil {
		d.Attr.ValueSource = b.text(st, right)
		d.Attr.HasValue = true
	}
	if typeNode != nil {
		d.Attr.DeclaredType = b.text(st, typeNode)
		d.Attr.HasType = true
	}

	if b.isConstantEligible(st, name, right, typeNode, conditional, assignCount) {
		d.Attr.SubKind = model.AttrConstant
	}

	b.runVisitors(st, findModuleAncestor(st, owner), d, locNode)
	return d
}

func (b *Builder) findChildAttribute(st *fillState, owner *model.Documentable, name string) *model.Documentable {
	for _, id := range owner.ChildrenIDs {
		child := st.sys.Get(id)
		if child != nil && child.Name == name && child.Kind == model.KindAttribute {
			return child
		}
	}
	return nil
}

// isConstantEligible implements §4.2.1's Constant rule, resolving the
// tension between the literal written rule (all-upper, unconditional,
// single assignment) and the worked example (a computed all-upper value
// is Variable, not Constant): a binding qualifies when it is either
// explicitly typed `Final` (any name, overriding the caps rule) or
// all-upper-with-underscores, unconditional, assigned exactly once, and
// its value is a literal rather than a computed expression.
func (b *Builder) isConstantEligible(st *fillState, name string, right, typeNode *sitter.Node, conditional bool, assignCount int) bool {
	if typeNode != nil && lastDotSegment(b.text(st, typeNode)) == "Final" {
		return true
	}
	if conditional || assignCount != 1 {
		return false
	}
	if !isAllUpperWithUnderscores(name) {
		return false
	}
	return right == nil || isLiteralExpression(right)
}

func isAllUpperWithUnderscores(name string) bool {
	if name == "" {
		return false
	}
	sawLetter := false
	for _, r := range name {
		switch {
		case r == '_':
		case r >= 'A' && r <= 'Z':
			sawLetter = true
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return sawLetter
}

func isLiteralExpression(n *sitter.Node) bool {
	switch n.Type() {
	case "string", "integer", "float", "true", "false", "none", "concatenated_string":
		return true
	case "unary_operator":
		return true
	case "tuple", "list", "set":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			if !isLiteralExpression(n.NamedChild(i)) {
				return false
			}
		}
		return true
	case "dictionary":
		return true
	default:
		return false
	}
}

func findModuleAncestor(st *fillState, d *model.Documentable) *model.Documentable {
	cur := d
	for cur != nil {
		if cur.Module != nil {
			return cur
		}
		if !cur.HasParent {
			return cur
		}
		cur = st.sys.Get(cur.ParentID)
	}
	return d
}
