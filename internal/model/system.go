package model

import (
	"fmt"
	"strings"

	"github.com/oxhq/apidocs/internal/inventory"
)

// System is the process-wide registry of spec.md §3.5: a mapping
// qname -> Documentable (keys unique), an ordered sequence of root
// Packages/Modules, a mapping qname-pattern -> privacy override, the
// active inventory, the loaded extension names, the set of loaded
// external inventories, and a monotonic id counter. It is single-writer
// during the build phase and read-only afterward (§3.7).
type System struct {
	byID   map[ID]*Documentable
	byName map[string]ID // qname -> id; re-export relocation rewrites this

	roots []ID // root Packages/Modules, insertion order

	privacyRules []PrivacyRule // ordered; last match wins, an exact qname beats any glob

	inventories *inventory.Set

	loadedExtensions []string

	nextID  ID
	readOnly bool
}

// PrivacyRule is one qname-glob -> Privacy override entry, evaluated in
// the order it was registered (spec.md §4.6: "user-configured override
// rules").
type PrivacyRule struct {
	Pattern string
	Privacy Privacy
}

// NewSystem creates an empty, writable System.
func NewSystem() *System {
	return &System{
		byID:        make(map[ID]*Documentable),
		byName:      make(map[string]ID),
		inventories: inventory.NewSet(),
	}
}

// AllocID reserves the next monotonic id. Calling it after Freeze panics:
// id allocation is a build-phase-only operation.
func (s *System) AllocID() ID {
	if s.readOnly {
		panic("model: AllocID called on a frozen System")
	}
	s.nextID++
	return s.nextID
}

// Add registers a fully constructed Documentable under its current
// FQName. It is an error to register the same qname twice without going
// through Rebind (spec.md §3.5: "keys unique").
func (s *System) Add(d *Documentable) error {
	if s.readOnly {
		return fmt.Errorf("model: System is frozen, cannot Add %q", d.FQName)
	}
	if existing, ok := s.byName[d.FQName]; ok && existing != d.ID {
		return fmt.Errorf("model: duplicate qname %q (existing id %d, new id %d)", d.FQName, existing, d.ID)
	}
	s.byID[d.ID] = d
	s.byName[d.FQName] = d.ID
	return nil
}

// AddRoot registers d as a root Package/Module, preserving insertion
// order (spec.md §3.5: "an ordered sequence of root Packages/Modules").
func (s *System) AddRoot(id ID) {
	s.roots = append(s.roots, id)
}

// Roots returns the root Packages/Modules in registration order.
func (s *System) Roots() []ID {
	return s.roots
}

// Rebind points qname at id, overwriting any previous owner. Used by
// re-export relocation (spec.md §4.5) when the canonical home of a name
// changes after the initial tree walk; the Documentable's own FQName
// field must be updated by the caller to match.
func (s *System) Rebind(qname string, id ID) {
	s.byName[qname] = id
}

// Unbind removes a qname mapping without touching the underlying
// Documentable (used when a re-export's old qname is superseded).
func (s *System) Unbind(qname string) {
	delete(s.byName, qname)
}

// Get returns the Documentable for id, or nil if unknown.
func (s *System) Get(id ID) *Documentable {
	if id == NoID {
		return nil
	}
	return s.byID[id]
}

// Lookup resolves a fully-qualified name to its Documentable, or
// (nil, false) if no such name is registered.
func (s *System) Lookup(qname string) (*Documentable, bool) {
	id, ok := s.byName[qname]
	if !ok {
		return nil, false
	}
	return s.byID[id], true
}

// All returns every registered Documentable in unspecified order; callers
// needing determinism must sort (e.g. by ID, which is allocation order).
func (s *System) All() []*Documentable {
	out := make([]*Documentable, 0, len(s.byID))
	for _, d := range s.byID {
		out = append(out, d)
	}
	return out
}

// Len reports how many Documentables are registered.
func (s *System) Len() int {
	return len(s.byID)
}

// AddPrivacyRule appends an override rule; rules are evaluated in
// registration order and the last match wins, except that a rule naming
// the exact qname beats any glob rule (spec.md §4.6).
func (s *System) AddPrivacyRule(pattern string, p Privacy) {
	s.privacyRules = append(s.privacyRules, PrivacyRule{Pattern: pattern, Privacy: p})
}

// PrivacyRules returns the registered override rules in evaluation order.
func (s *System) PrivacyRules() []PrivacyRule {
	return s.privacyRules
}

// Inventories returns the set of loaded external inventories (spec.md
// §3.5/§3.6), queried by the resolver and the linker bridge.
func (s *System) Inventories() *inventory.Set {
	return s.inventories
}

// RecordExtension notes that an extension with this name participated in
// the build. System does not hold extension behavior itself — doing so
// would require importing internal/extension, which imports internal/model
// for its hook signatures, forming a cycle. The orchestrator
// (internal/pipeline) owns the live extension.Registry and calls this
// purely so the registry's membership is observable from the System a
// caller gets back, matching spec.md §3.5's "the registered extensions".
func (s *System) RecordExtension(name string) {
	s.loadedExtensions = append(s.loadedExtensions, name)
}

// LoadedExtensions returns the names recorded by RecordExtension, in
// registration order.
func (s *System) LoadedExtensions() []string {
	return s.loadedExtensions
}

// Freeze marks the System read-only, per spec.md §3.7: "single-writer
// during the build phase and read-only afterward." Calling any mutating
// method afterward is a programmer error.
func (s *System) Freeze() {
	s.readOnly = true
}

// IsFrozen reports whether Freeze has been called.
func (s *System) IsFrozen() bool {
	return s.readOnly
}

// ChildQName joins a parent qname and a child's local name, the single
// place this construction happens so every caller agrees on the
// separator (spec.md §3.2: names are dotted).
func ChildQName(parentQName, childName string) string {
	if parentQName == "" {
		return childName
	}
	return parentQName + "." + childName
}

// SplitQName splits a dotted qname into its segments.
func SplitQName(qname string) []string {
	if qname == "" {
		return nil
	}
	return strings.Split(qname, ".")
}
