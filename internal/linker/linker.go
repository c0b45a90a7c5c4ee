// Package linker implements the §4.9 docstring-linker bridge: the single
// contract an (out-of-scope) markup parser needs to turn a cross-reference
// string inside a docstring into a link. It does no markup parsing itself
// — it only resolves names — and delegates all of the actual resolution
// work to internal/resolver, adding just the URL-fragment/css-class shape
// callers expect plus its own cache, following the same sync.Map idiom as
// the resolver (providers/base/cache.go's hit/miss counters).
package linker

import (
	"sync"
	"sync/atomic"

	"github.com/oxhq/apidocs/internal/model"
	"github.com/oxhq/apidocs/internal/resolver"
)

// CSSClass is the closed set of outcomes spec.md §4.9 names.
type CSSClass string

const (
	ClassInternal    CSSClass = "internal"
	ClassIntersphinx CSSClass = "intersphinx"
	ClassUnresolved  CSSClass = "unresolved"
)

// Link is the result of a lookup: a URL fragment to point a cross-reference
// at, and the css class describing how it was resolved.
type Link struct {
	URLFragment string
	CSSClass    CSSClass
}

type cacheKey struct {
	contextID model.ID
	text      string
}

// Linker exposes lookup(context, dotted_name_or_role_string) per §4.9.
type Linker struct {
	resolver *resolver.Resolver
	cache    sync.Map // cacheKey -> Link

	hits   atomic.Int64
	misses atomic.Int64
}

func New(r *resolver.Resolver) *Linker {
	return &Linker{resolver: r}
}

// Stats reports cache hit/miss counts, mirroring resolver.Stats' shape.
func (l *Linker) Stats() map[string]int64 {
	return map[string]int64{
		"hits":   l.hits.Load(),
		"misses": l.misses.Load(),
	}
}

// Lookup resolves text (a dotted name, possibly carrying a role prefix
// like "class:" or "func:" which is stripped before resolution — roles
// only steer the eventual renderer's presentation, not the resolve
// itself) against context, returning a URL fragment and a css class.
func (l *Linker) Lookup(context *model.Documentable, text string) Link {
	key := cacheKey{contextID: context.ID, text: text}
	if cached, ok := l.cache.Load(key); ok {
		l.hits.Add(1)
		return cached.(Link)
	}
	l.misses.Add(1)

	link := l.lookupUncached(context, text)
	l.cache.Store(key, link)
	return link
}

func (l *Linker) lookupUncached(context *model.Documentable, text string) Link {
	dotted := stripRole(text)
	res := l.resolver.Resolve(context, dotted)
	switch res.Kind {
	case resolver.ResultInternal:
		return Link{URLFragment: "#" + res.Target.FQName, CSSClass: ClassInternal}
	case resolver.ResultExternal:
		return Link{URLFragment: res.URL, CSSClass: ClassIntersphinx}
	default:
		return Link{CSSClass: ClassUnresolved}
	}
}

// stripRole removes a leading "role:" or "role:`...`" prefix some
// docstring markups attach to a cross-reference (e.g. "class:Foo" or
// "meth:`Foo.bar`"), leaving the bare dotted name to resolve.
func stripRole(text string) string {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ':':
			rest := text[i+1:]
			if len(rest) == 0 {
				return text
			}
			if rest[0] == '`' && rest[len(rest)-1] == '`' {
				return rest[1 : len(rest)-1]
			}
			return rest
		case '.', '_':
			continue
		default:
			if (text[i] >= 'a' && text[i] <= 'z') || (text[i] >= 'A' && text[i] <= 'Z') {
				continue
			}
			return text
		}
	}
	return text
}
