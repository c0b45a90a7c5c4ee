package astbuild

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/apidocs/internal/model"
)

// handleIfStatement implements §4.2.3's conditional-branch policy. A guard
// of the recognized shape `<name>`, `not <name>`, or `<module>.<name>`
// matching a configured override descends into only the branch the
// override selects; anything else (an unrecognized or more complex
// condition) descends into every branch, so declarations are never lost
// to a guard the engine can't evaluate.
func (b *Builder) handleIfStatement(st *fillState, node *sitter.Node, owner, class *model.Documentable, conditional bool) {
	cond := node.ChildByFieldName("condition")
	consequence := node.ChildByFieldName("consequence")

	if guardName, negated, ok := recognizeGuard(st.source, cond); ok {
		if override, known := st.inGuard[guardName]; known {
			taken := override
			if negated {
				taken = !override
			}
			if taken {
				if consequence != nil {
					b.walkBodyConditional(st, consequence, owner, class)
				}
			} else {
				b.walkAlternatives(st, node, owner, class)
			}
			return
		}
	}

	// Unrecognized or compound condition: both branches are reachable.
	if consequence != nil {
		b.walkBodyConditional(st, consequence, owner, class)
	}
	b.walkAlternatives(st, node, owner, class)
}

// walkAlternatives descends into an if_statement's elif_clause/else_clause
// siblings (tree-sitter-python models these as plain children, not a
// single "alternative" field).
func (b *Builder) walkAlternatives(st *fillState, node *sitter.Node, owner, class *model.Documentable) {
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "elif_clause":
			cond := child.ChildByFieldName("condition")
			consequence := child.ChildByFieldName("consequence")
			if guardName, negated, ok := recognizeGuard(st.source, cond); ok {
				if override, known := st.inGuard[guardName]; known {
					taken := override
					if negated {
						taken = !override
					}
					if !taken {
						continue
					}
					if consequence != nil {
						b.walkBodyConditional(st, consequence, owner, class)
					}
					continue
				}
			}
			if consequence != nil {
				b.walkBodyConditional(st, consequence, owner, class)
			}
		case "else_clause":
			if body := child.ChildByFieldName("body"); body != nil {
				b.walkBodyConditional(st, body, owner, class)
			}
		}
	}
}

// recognizeGuard reports whether cond is a bare name, a dotted attribute
// access, or the negation of either, returning the terminal name (the
// attribute's rightmost segment for a dotted form) and whether the
// condition was negated with `not`.
func recognizeGuard(source []byte, cond *sitter.Node) (name string, negated bool, ok bool) {
	if cond == nil {
		return "", false, false
	}
	if cond.Type() == "not_operator" {
		arg := cond.ChildByFieldName("argument")
		if arg == nil {
			return "", false, false
		}
		inner, _, innerOK := recognizeGuard(source, arg)
		if !innerOK {
			return "", false, false
		}
		return inner, true, true
	}
	switch cond.Type() {
	case "identifier":
		return nodeText(source, cond), false, true
	case "attribute":
		attr := cond.ChildByFieldName("attribute")
		if attr == nil {
			return "", false, false
		}
		return nodeText(source, attr), false, true
	default:
		return "", false, false
	}
}

func nodeText(source []byte, n *sitter.Node) string {
	return string(source[n.StartByte():n.EndByte()])
}
