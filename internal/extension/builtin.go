package extension

import (
	"strings"

	"github.com/oxhq/apidocs/internal/model"
)

// ProtocolRecognizer tags a class whose raw bases include "Protocol" or
// whose decorator list includes "runtime_checkable" with
// extra_info["interface"] = true, fulfilling spec.md §2's "interface-
// declaration recognition" language-idiomatic feature.
type ProtocolRecognizer struct{}

func NewProtocolRecognizer() *ProtocolRecognizer { return &ProtocolRecognizer{} }

func (p *ProtocolRecognizer) Name() string { return "protocol-recognizer" }

func (p *ProtocolRecognizer) VisitNode(ctx *NodeContext) []*model.Documentable {
	d := ctx.Current
	if d == nil || !d.Kind.IsClassLike() || d.Class == nil {
		return nil
	}
	isProtocol := false
	for _, base := range d.Class.RawBases {
		if lastSegment(base) == "Protocol" {
			isProtocol = true
			break
		}
	}
	for _, dec := range d.Class.Decorators {
		if lastSegment(dec.DottedName) == "runtime_checkable" {
			isProtocol = true
			break
		}
	}
	if isProtocol {
		d.SetExtra(p.Name(), "interface", true)
	}
	return nil
}

// DeprecationRecognizer sets extra_info["deprecated"] to a decorator's
// argument source when a decorator's dotted name ends in "deprecated"
// (case-insensitive), without altering the decorated entity's kind
// (spec.md §2's "deprecation annotations" language-idiomatic feature).
type DeprecationRecognizer struct{}

func NewDeprecationRecognizer() *DeprecationRecognizer { return &DeprecationRecognizer{} }

func (dr *DeprecationRecognizer) Name() string { return "deprecation-recognizer" }

func (dr *DeprecationRecognizer) VisitNode(ctx *NodeContext) []*model.Documentable {
	d := ctx.Current
	if d == nil {
		return nil
	}
	var decorators []model.Decorator
	switch {
	case d.Class != nil:
		decorators = d.Class.Decorators
	case d.Func != nil:
		decorators = d.Func.Decorators
	default:
		return nil
	}
	for _, dec := range decorators {
		if strings.HasSuffix(strings.ToLower(lastSegment(dec.DottedName)), "deprecated") {
			d.SetExtra(dr.Name(), "deprecated", dec.ArgsSource)
			break
		}
	}
	return nil
}

func lastSegment(dotted string) string {
	idx := strings.LastIndex(dotted, ".")
	if idx < 0 {
		return dotted
	}
	return dotted[idx+1:]
}
