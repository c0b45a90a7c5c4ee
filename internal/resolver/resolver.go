// Package resolver implements the name resolution algorithm of §4.3: an
// anchor search outward through enclosing scopes (following import
// bindings where the anchor is an imported name rather than a declared
// child), then a per-segment walk (direct children, falling back to a
// class's MRO, falling back to the external inventory). Results are
// memoized in a sync.Map, following the hit/miss counter idiom of the
// pack's AST cache (providers/base/cache.go) — without its time-based
// eviction, since a System's resolutions are invalidated only at
// teardown.
package resolver

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oxhq/apidocs/internal/model"
)

// ResultKind is the closed set of resolution outcomes (spec.md §4.3).
type ResultKind int

const (
	ResultInternal ResultKind = iota
	ResultExternal
	ResultUnresolved
)

func (k ResultKind) String() string {
	switch k {
	case ResultInternal:
		return "internal"
	case ResultExternal:
		return "external"
	default:
		return "unresolved"
	}
}

// Result is the outcome of resolving one dotted name against one context.
type Result struct {
	Kind ResultKind

	Target *model.Documentable // set when Kind == ResultInternal

	InventoryName string // set when Kind == ResultExternal
	QName         string // set when Kind == ResultExternal
	URL           string // set when Kind == ResultExternal

	Reason string // set when Kind == ResultUnresolved
}

type cacheKey struct {
	contextID model.ID
	dotted    string
}

// Resolver resolves dotted names against a System's Documentable graph.
type Resolver struct {
	sys   *model.System
	cache sync.Map // cacheKey -> Result

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Resolver bound to sys. sys need not be frozen: the MRO
// and re-export post-processors resolve names before the pipeline
// freezes the System.
func New(sys *model.System) *Resolver {
	return &Resolver{sys: sys}
}

// Stats reports cache hit/miss counts, mirroring providers/base/cache.go's
// Stats() shape.
func (r *Resolver) Stats() map[string]int64 {
	return map[string]int64{
		"hits":   r.hits.Load(),
		"misses": r.misses.Load(),
	}
}

// Resolve implements §4.3's resolve(context, dotted_name) operation.
func (r *Resolver) Resolve(context *model.Documentable, dotted string) Result {
	key := cacheKey{contextID: context.ID, dotted: dotted}
	if cached, ok := r.cache.Load(key); ok {
		r.hits.Add(1)
		return cached.(Result)
	}
	r.misses.Add(1)

	result := r.resolveUncached(context, dotted)
	r.cache.Store(key, result)
	return result
}

func (r *Resolver) resolveUncached(context *model.Documentable, dotted string) Result {
	segments := strings.Split(dotted, ".")
	if len(segments) == 0 || segments[0] == "" {
		return Result{Kind: ResultUnresolved, Reason: "empty dotted name"}
	}

	current := r.resolveAnchor(context, segments[0])
	if current == nil {
		if ext, ok := r.externalLookup(dotted); ok {
			return ext
		}
		return Result{Kind: ResultUnresolved, Reason: "undefined name " + segments[0]}
	}

	for _, seg := range segments[1:] {
		next := r.childByName(current, seg)
		if next == nil && current.Kind.IsClassLike() && current.Class != nil {
			next = r.lookupAlongMRO(current, seg)
		}
		if next == nil {
			if ext, ok := r.externalLookup(dotted); ok {
				return ext
			}
			return Result{Kind: ResultUnresolved, Reason: "no member " + seg + " on " + current.FQName}
		}
		current = next
	}

	return Result{Kind: ResultInternal, Target: current}
}

// resolveAnchor implements §4.3 steps 1–2: walk outward from context —
// class (own members, then MRO), module, package chain — for the first
// scope defining name; a name defined in the current scope wins over one
// reached through import redirection or an enclosing scope. When a scope
// is a Module and its own children don't define name, its import table
// is checked next: an imported binding redirects to the target
// module/entity rather than stopping at the import itself, since plain
// imports never allocate their own child Documentable.
func (r *Resolver) resolveAnchor(context *model.Documentable, name string) *model.Documentable {
	cur := context
	for cur != nil {
		if cur.Kind.IsClassLike() && cur.Class != nil {
			if d := r.childByName(cur, name); d != nil {
				return d
			}
			if d := r.lookupAlongMRO(cur, name); d != nil {
				return d
			}
		} else if d := r.childByName(cur, name); d != nil {
			return d
		}

		if cur.Module != nil {
			if d := r.resolveImportBinding(cur.Module, name); d != nil {
				return d
			}
		}

		if !cur.HasParent {
			break
		}
		cur = r.sys.Get(cur.ParentID)
	}
	return nil
}

// resolveImportBinding looks for name among mod's recorded imports —
// either as an explicit (possibly aliased) name, or, failing that, as a
// member of a wildcard-imported module — and follows it to the imported
// entity.
func (r *Resolver) resolveImportBinding(mod *model.ModuleData, name string) *model.Documentable {
	for _, imp := range mod.Imports {
		for _, n := range imp.Names {
			if n.Alias != name {
				continue
			}
			if d := r.importTarget(imp.SourceModule, n.Original); d != nil {
				return d
			}
		}
	}
	for _, imp := range mod.Imports {
		if !imp.Wildcard {
			continue
		}
		src, ok := r.sys.Lookup(imp.SourceModule)
		if !ok {
			continue
		}
		if d := r.childByName(src, name); d != nil {
			return d
		}
	}
	return nil
}

// importTarget resolves one import record's (sourceModule, originalName)
// pair to the Documentable it names. "import a.b.c [as x]" records
// original == sourceModule (the whole dotted path is the target);
// "from a.b import c" records original == "c", a member of sourceModule.
func (r *Resolver) importTarget(sourceModule, original string) *model.Documentable {
	if sourceModule == "" {
		return nil
	}
	full := sourceModule
	if original != "" && original != sourceModule {
		full = sourceModule + "." + original
	}
	if d, ok := r.sys.Lookup(full); ok {
		return d
	}
	return nil
}

func (r *Resolver) childByName(owner *model.Documentable, name string) *model.Documentable {
	if owner == nil {
		return nil
	}
	for _, id := range owner.ChildrenIDs {
		child := r.sys.Get(id)
		if child != nil && child.Name == name {
			return child
		}
	}
	return nil
}

// lookupAlongMRO walks a class's resolved MRO ancestors (excluding the
// class itself, whose own members childByName already covers).
func (r *Resolver) lookupAlongMRO(class *model.Documentable, name string) *model.Documentable {
	if class.Class == nil {
		return nil
	}
	for _, id := range class.Class.MRO {
		if id == class.ID {
			continue
		}
		ancestor := r.sys.Get(id)
		if ancestor == nil {
			continue
		}
		if d := r.childByName(ancestor, name); d != nil {
			return d
		}
	}
	return nil
}

func (r *Resolver) externalLookup(name string) (Result, bool) {
	invName, url, ok := r.sys.Inventories().Resolve(name)
	if !ok {
		return Result{}, false
	}
	return Result{Kind: ResultExternal, InventoryName: invName, QName: name, URL: url}, true
}
