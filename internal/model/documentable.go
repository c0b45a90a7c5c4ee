package model

// ID addresses a Documentable in the System arena. IDs are stable for the
// lifetime of the System (spec.md §9: "model Documentables as nodes in an
// arena owned by the System, addressed by stable integer ids").
type ID int64

// NoID is the zero value meaning "no Documentable" (e.g. a root's parent).
const NoID ID = 0

// RootObjectID is the sentinel Class.MRO entry every linearization ends
// with (spec.md §3.6, §4.4): the implicit root object type. It never
// addresses a real Documentable in the System arena, so System.Get
// returns nil for it by design; consumers that walk a MRO already treat
// a nil Get result as "nothing further to do" (e.g. subclass population).
const RootObjectID ID = -1

// Location is a source position: file path, line, and an optional column.
type Location struct {
	File   string
	Line   int
	Column int
	HasCol bool
}

// Docstring is raw docstring text together with the line it starts on,
// relative to its owning Documentable's Location.Line.
type Docstring struct {
	Text       string
	LineOffset int
}

// Parameter is one entry of a Function/Method signature (spec.md §3.3).
type Parameter struct {
	Name         string
	Kind         ParamKind
	Default      string // source form of the default value, e.g. "None"
	HasDefault   bool
	DeclaredType string // source form of the annotation, "" if absent
}

// ImportedName is one (original-name, local-alias) pair of an Import.
// Alias equals Original when the source used no "as" clause.
type ImportedName struct {
	Original string
	Alias    string
}

// Import is one import statement recorded in source order (spec.md §3.4).
type Import struct {
	SourceModule string // dotted module path as written, "" for purely relative dots
	RelativeDots int    // number of leading dots in a "from . import x" form
	Wildcard     bool
	Names        []ImportedName // empty when Wildcard is true
	Location     Location
}

// Decorator is a raw dotted-name plus its argument source, exactly as
// written; decorators are recorded, never evaluated (spec.md Non-goals).
type Decorator struct {
	DottedName string
	ArgsSource string // "" when the decorator took no call parens
}

// BaseRef is one entry of Class.ResolvedBases: either a resolved internal
// Documentable, or an external/unresolved reference kept with its dotted
// name (spec.md §4.4). Class.MRO lists only resolved internal classes and
// RootObjectID; external and unresolved bases do not appear in it.
type BaseRef struct {
	Raw          string // as written in the class header
	ResolvedID   ID
	Resolved     bool
	External     bool
	ExternalName string // dotted name, when External or !Resolved
}

// ModuleData holds the Module/Package-specific attributes of §3.3.
type ModuleData struct {
	AllExports       []string
	HasAllExports    bool // distinguishes "not set" from "set to []"
	DeclaredDocFormat string
	IsPackage        bool
	SubmoduleIDs     []ID
	Imports          []Import
	ParseError       bool // §7: parse failure -> placeholder, not fatal
	IsBinary         bool // built from introspection (§4.2.2), not source
}

// ClassData holds the Class/Exception-specific attributes of §3.3.
type ClassData struct {
	RawBases             []string
	ResolvedBases        []BaseRef
	MRO                  []ID // begins with the class itself, ends at object
	MROFailed            bool
	SubclassIDs          []ID // populated by post-processing, insertion order
	Decorators           []Decorator
	ConstructorMethodIDs []ID
}

// FuncData holds the Function/Method-specific attributes of §3.3.
type FuncData struct {
	Signature  []Parameter
	ReturnType string
	HasReturn  bool
	Decorators []Decorator
	IsAsync    bool
	IsOverload bool
	OverloadOf ID     // the canonical implementation's ID, when IsOverload
	OverloadIDs []ID  // on the canonical implementation: sibling overload IDs
}

// AttrData holds the Attribute-specific attributes of §3.3.
type AttrData struct {
	SubKind      AttributeKind
	DeclaredType string
	HasType      bool
	ValueSource  string
	HasValue     bool
}

// Documentable is every named element of the analyzed program: a tagged
// union over Kind with a shared header and a kind-specific payload
// (spec.md §9: "encode as a tagged-variant sum type ... avoid class
// hierarchies whose dispatch depends on runtime sub-kind checks").
type Documentable struct {
	ID       ID
	Name     string
	ParentID ID
	HasParent bool
	Kind     Kind

	FQName string

	Loc       Location
	Doc       *Docstring
	DocFormat string // explicit declared_docformat override, "" if inherited

	Privacy        Privacy
	IsIntrospected bool

	// ExtraInfo is the open slot extensions may write into (spec.md §3.2).
	// Two extensions writing the same key is a programmer error; System
	// detects and warns, the later write wins (spec.md §5).
	ExtraInfo map[string]any

	// ChildrenIDs preserves insertion (source) order; a Documentable
	// exclusively owns its direct children.
	ChildrenIDs []ID

	Module *ModuleData // non-nil for Package/Module
	Class  *ClassData  // non-nil for Class/Exception
	Func   *FuncData   // non-nil for Function/Method/ClassMethod/StaticMethod
	Attr   *AttrData   // non-nil for Attribute

	AliasValueSource string   // TypeAlias only
	TypeVarConstraints []string // TypeVariable only
}

// SetExtra writes an extra-info slot, detecting the double-write race the
// spec calls out (spec.md §5): "Two extensions writing to the same slot of
// the same Documentable is a programmer error and is detected by a runtime
// guard; the later write wins with a warning." Returns a non-nil warning
// when an existing value is overwritten.
func (d *Documentable) SetExtra(owner, key string, value any) *Warning {
	if d.ExtraInfo == nil {
		d.ExtraInfo = make(map[string]any)
	}
	ownerKey := "__owner__:" + key
	var warn *Warning
	if prevOwner, ok := d.ExtraInfo[ownerKey]; ok && prevOwner != owner {
		warn = &Warning{
			Kind:     WarnExtensionSlotConflict,
			Message:  "extension " + owner + " overwrote extra-info slot " + key + " previously written by " + prevOwner.(string),
			Location: d.Loc,
		}
	}
	d.ExtraInfo[key] = value
	d.ExtraInfo[ownerKey] = owner
	return warn
}
