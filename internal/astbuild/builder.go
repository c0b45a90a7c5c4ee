// Package astbuild walks a module's syntax tree once (tree-sitter, Python
// grammar) and populates Documentables, imports, annotations, decorators,
// inline docstrings, and the public-names/docformat bindings (spec.md
// §4.2). Node-type switches follow the idiom of the pack's Python symbol
// extractors: a flat switch on node.Type() rather than per-type visitor
// methods.
package astbuild

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/oxhq/apidocs/internal/extension"
	"github.com/oxhq/apidocs/internal/model"
)

// Options configures builder behavior that the spec leaves pluggable.
type Options struct {
	// AllExportsVar is the designated public-names variable, e.g. "__all__".
	AllExportsVar string
	// DocFormatVar is the designated per-module docformat variable, e.g.
	// "__docformat__".
	DocFormatVar string
	// ConstructorNames are method names treated as constructors (§4.2.5).
	ConstructorNames []string
	// ConditionalOverrides maps a qname-pattern to guard-name -> bool,
	// the configuration of §4.2.3.
	ConditionalOverrides map[string]map[string]bool
}

// DefaultOptions returns the conventional Python bindings.
func DefaultOptions() Options {
	return Options{
		AllExportsVar:    "__all__",
		DocFormatVar:     "__docformat__",
		ConstructorNames: []string{"__init__"},
	}
}

// Builder builds Documentables for one module at a time.
type Builder struct {
	opts Options
	reg  *extension.Registry
}

// NewBuilder creates a Builder. reg may be nil, in which case no
// extension hooks run.
func NewBuilder(reg *extension.Registry, opts Options) *Builder {
	if opts.AllExportsVar == "" {
		opts.AllExportsVar = "__all__"
	}
	if opts.DocFormatVar == "" {
		opts.DocFormatVar = "__docformat__"
	}
	if len(opts.ConstructorNames) == 0 {
		opts.ConstructorNames = []string{"__init__"}
	}
	return &Builder{opts: opts, reg: reg}
}

// fillState carries per-module mutable bookkeeping through the recursive
// descent: the module's qname (for conditional-override lookup) and the
// source bytes for text extraction.
type fillState struct {
	sys      *model.System
	sink     *model.Sink
	source   []byte
	path     string
	qname    string
	inGuard  map[string]bool // active conditional-branch overrides for this module
}

// FillModule parses source and populates mod's ModuleData and its
// children. mod must already be registered with its ID/FQName/ParentID
// set and Module non-nil (the pipeline allocates module/package shells
// top-down before this bottom-up fill runs, so that leaf modules can be
// filled before their enclosing package's initializer per §4.1).
func (b *Builder) FillModule(sys *model.System, sink *model.Sink, mod *model.Documentable, path string, source []byte) error {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		mod.Module.ParseError = true
		sink.Warn(model.Warning{Kind: model.WarnParseFailure, Message: err.Error(), Location: model.Location{File: path}})
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		mod.Module.ParseError = true
		sink.Warn(model.Warning{Kind: model.WarnParseFailure, Message: "syntax errors recovered; best-effort extraction", Location: model.Location{File: path}})
	}

	st := &fillState{
		sys:     sys,
		sink:    sink,
		source:  source,
		path:    path,
		qname:   mod.FQName,
		inGuard: b.guardOverridesFor(mod.FQName),
	}

	// The module docstring is a bare string literal as the first
	// statement (comments before it are skipped).
	for i := 0; i < int(root.NamedChildCount()); i++ {
		first := root.NamedChild(i)
		if first.Type() == "comment" {
			continue
		}
		if doc, ok := b.bareStringLiteral(st, first); ok {
			mod.Doc = &model.Docstring{Text: doc}
		}
		break
	}

	b.walkBody(st, root, mod, nil)
	return nil
}

func (b *Builder) guardOverridesFor(qname string) map[string]bool {
	if b.opts.ConditionalOverrides == nil {
		return nil
	}
	if rules, ok := b.opts.ConditionalOverrides[qname]; ok {
		return rules
	}
	return nil
}

func (b *Builder) text(st *fillState, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(st.source[n.StartByte():n.EndByte()])
}

func (b *Builder) locOf(st *fillState, n *sitter.Node) model.Location {
	p := n.StartPoint()
	return model.Location{File: st.path, Line: int(p.Row) + 1, Column: int(p.Column), HasCol: true}
}

// walkBody processes the statements of a block (module root, class body,
// or function body), in source order, tracking a "pending attribute" for
// inline-docstring attachment and an "unconditional" flag for constant
// detection.
func (b *Builder) walkBody(st *fillState, body *sitter.Node, owner *model.Documentable, class *model.Documentable) {
	var pendingAttr *model.Documentable
	counts := b.countSimpleAssignments(st, body)
	n := int(body.ChildCount())
	for i := 0; i < n; i++ {
		child := body.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}

		if pendingAttr != nil {
			if lit, ok := b.bareStringLiteral(st, child); ok {
				pendingAttr.Doc = &model.Docstring{Text: lit}
				pendingAttr = nil
				continue
			}
			pendingAttr = nil
		}

		switch child.Type() {
		case "import_statement":
			b.handleImportStatement(st, child, owner)
		case "import_from_statement":
			b.handleImportFromStatement(st, child, owner)
		case "expression_statement":
			pendingAttr = b.handleExpressionStatement(st, child, owner, class, false, counts)
		case "class_definition":
			b.handleClassDefinition(st, child, owner, nil)
		case "decorated_definition":
			b.handleDecoratedDefinition(st, child, owner, class)
		case "function_definition":
			b.handleFunctionDefinition(st, child, owner, class, nil)
		case "if_statement":
			b.handleIfStatement(st, child, owner, class, false)
		case "for_statement", "while_statement", "with_statement", "try_statement":
			b.walkConditional(st, child, owner, class)
		}
	}
}

// walkConditional recurses into a control-flow block's sub-blocks,
// marking every Attribute found inside as conditional (never Constant),
// per §4.2.1: "unconditional (not inside any control-flow block)".
func (b *Builder) walkConditional(st *fillState, node *sitter.Node, owner *model.Documentable, class *model.Documentable) {
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		child := node.Child(i)
		if child != nil && child.Type() == "block" {
			b.walkBodyConditional(st, child, owner, class)
		}
	}
}

func (b *Builder) walkBodyConditional(st *fillState, body *sitter.Node, owner *model.Documentable, class *model.Documentable) {
	var pendingAttr *model.Documentable
	counts := b.countSimpleAssignments(st, body)
	n := int(body.ChildCount())
	for i := 0; i < n; i++ {
		child := body.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		if pendingAttr != nil {
			if lit, ok := b.bareStringLiteral(st, child); ok {
				pendingAttr.Doc = &model.Docstring{Text: lit}
				pendingAttr = nil
				continue
			}
			pendingAttr = nil
		}
		switch child.Type() {
		case "import_statement":
			if owner.Module != nil {
				b.handleImportStatement(st, child, owner)
			}
		case "import_from_statement":
			if owner.Module != nil {
				b.handleImportFromStatement(st, child, owner)
			}
		case "expression_statement":
			pendingAttr = b.handleExpressionStatement(st, child, owner, class, true, counts)
		case "decorated_definition":
			b.handleDecoratedDefinition(st, child, owner, class)
		case "function_definition":
			b.handleFunctionDefinition(st, child, owner, class, nil)
		case "class_definition":
			b.handleClassDefinition(st, child, owner, nil)
		case "if_statement":
			b.handleIfStatement(st, child, owner, class, true)
		case "for_statement", "while_statement", "with_statement", "try_statement":
			b.walkConditional(st, child, owner, class)
		}
	}
}

func (b *Builder) bareStringLiteral(st *fillState, stmt *sitter.Node) (string, bool) {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return "", false
	}
	expr := stmt.NamedChild(0)
	if expr.Type() != "string" {
		return "", false
	}
	return b.stringLiteralText(st, expr), true
}

// stringLiteralText extracts a string node's source text with its quote
// delimiters stripped; it is not a full Python string-escape decoder
// (escapes are left as written, matching the engine's "record, don't
// evaluate" stance on everything but literal values).
func (b *Builder) stringLiteralText(st *fillState, n *sitter.Node) string {
	raw := b.text(st, n)
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return raw[len(q) : len(raw)-len(q)]
		}
	}
	for _, q := range []string{`"`, "'"} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2 {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

func (b *Builder) allocChild(st *fillState, owner *model.Documentable, name string, kind model.Kind, loc model.Location) *model.Documentable {
	d := &model.Documentable{
		ID:        st.sys.AllocID(),
		Name:      name,
		Kind:      kind,
		ParentID:  owner.ID,
		HasParent: true,
		FQName:    model.ChildQName(owner.FQName, name),
		Loc:       loc,
	}
	owner.ChildrenIDs = append(owner.ChildrenIDs, d.ID)
	if err := st.sys.Add(d); err != nil {
		st.sink.Warn(model.Warning{Kind: model.WarnDuplicateReExport, Message: fmt.Sprintf("duplicate declaration: %v", err), Location: loc})
	}
	return d
}

func (b *Builder) runVisitors(st *fillState, mod, current *model.Documentable, node *sitter.Node) []*model.Documentable {
	if b.reg == nil {
		return nil
	}
	return b.reg.RunVisitors(&extension.NodeContext{
		System:   st.sys,
		Sink:     st.sink,
		Module:   mod,
		Current:  current,
		Source:   st.source,
		Node:     node,
		NodeKind: node.Type(),
	})
}
