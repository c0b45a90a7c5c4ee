// Package extension implements the registrar of spec.md §4.2.6: it holds
// priority-ordered AST-node visitors and post-processing stages, used for
// language-idiomatic features such as interface-declaration recognition
// and deprecation annotations. Grounded on the teacher's registry.go
// registration/lookup idiom, but deliberately safe in-process Go
// interfaces instead of .so plugin.Open dynamic loading — see DESIGN.md.
package extension

import (
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/apidocs/internal/model"
)

// NodeContext is everything a NodeVisitor needs to inspect the node
// currently being built and contribute a sibling result or an extra-info
// write (spec.md §4.2.6: "may create siblings of the default result but
// must not mutate other modules").
type NodeContext struct {
	System   *model.System
	Sink     *model.Sink
	Module   *model.Documentable // the module/package owning the node
	Current  *model.Documentable // the Documentable the default visit produced, if any
	Source   []byte
	Node     *sitter.Node
	NodeKind string // the tree-sitter node type string
}

// NodeVisitor runs after the builder's default handling of a node
// (spec.md §4.2.6); visitors are not run before it. VisitNode may return
// Documentables, but the builder does not register the returned values;
// returning nil is the common case.
type NodeVisitor interface {
	Name() string
	VisitNode(ctx *NodeContext) []*model.Documentable
}

// PostProcessor runs once after every module has been built (spec.md
// §4.2.6, §4.4-§4.8). Priority determines run order: higher runs first;
// ties break by registration order.
type PostProcessor interface {
	Name() string
	Priority() int
	PostProcess(sys *model.System, sink *model.Sink)
}

// Registry holds registered extensions, in the priority order spec.md
// §4.2.6 requires: "registered with an integer priority; higher runs
// first. Deterministic order on ties is insertion order."
type Registry struct {
	mu         sync.Mutex
	visitors   []NodeVisitor
	processors []registeredProcessor
}

type registeredProcessor struct {
	proc  PostProcessor
	order int // insertion sequence, for tie-break
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterVisitor adds a NodeVisitor, run in registration order.
func (r *Registry) RegisterVisitor(v NodeVisitor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visitors = append(r.visitors, v)
}

// RegisterPostProcessor adds a PostProcessor, sorted by Priority()
// (descending) with registration order as the tie-break.
func (r *Registry) RegisterPostProcessor(p PostProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = append(r.processors, registeredProcessor{proc: p, order: len(r.processors)})
}

// Visitors returns every registered NodeVisitor in registration order.
func (r *Registry) Visitors() []NodeVisitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]NodeVisitor(nil), r.visitors...)
}

// OrderedPostProcessors returns every registered PostProcessor sorted by
// descending priority, ties broken by registration order.
func (r *Registry) OrderedPostProcessors() []PostProcessor {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]registeredProcessor(nil), r.processors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].proc.Priority() != sorted[j].proc.Priority() {
			return sorted[i].proc.Priority() > sorted[j].proc.Priority()
		}
		return sorted[i].order < sorted[j].order
	})
	out := make([]PostProcessor, len(sorted))
	for i, rp := range sorted {
		out[i] = rp.proc
	}
	return out
}

// Names returns the names of every registered visitor and post-processor,
// for System.RecordExtension bookkeeping.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.visitors)+len(r.processors))
	for _, v := range r.visitors {
		names = append(names, v.Name())
	}
	for _, rp := range r.processors {
		names = append(names, rp.proc.Name())
	}
	return names
}

// RunVisitors invokes every registered visitor for one node, in
// registration order, collecting any sibling Documentables they return.
func (r *Registry) RunVisitors(ctx *NodeContext) []*model.Documentable {
	var out []*model.Documentable
	for _, v := range r.Visitors() {
		if extra := v.VisitNode(ctx); extra != nil {
			out = append(out, extra...)
		}
	}
	return out
}

// RunPostProcessors runs every registered post-processor in priority
// order against sys, recording warnings to sink.
func (r *Registry) RunPostProcessors(sys *model.System, sink *model.Sink) {
	for _, p := range r.OrderedPostProcessors() {
		p.PostProcess(sys, sink)
	}
}
