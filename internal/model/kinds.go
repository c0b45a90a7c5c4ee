package model

// Kind is the closed variant set of entity kinds a Documentable may carry.
// Exception is a subvariant of Class: it carries ClassData like Class does,
// but is tagged separately so kind-dispatch never needs a runtime "is it
// really an exception" check.
type Kind int

const (
	KindPackage Kind = iota
	KindModule
	KindClass
	KindException
	KindFunction
	KindMethod
	KindClassMethod
	KindStaticMethod
	KindProperty
	KindAttribute
	KindTypeAlias
	KindTypeVariable
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "Package"
	case KindModule:
		return "Module"
	case KindClass:
		return "Class"
	case KindException:
		return "Exception"
	case KindFunction:
		return "Function"
	case KindMethod:
		return "Method"
	case KindClassMethod:
		return "ClassMethod"
	case KindStaticMethod:
		return "StaticMethod"
	case KindProperty:
		return "Property"
	case KindAttribute:
		return "Attribute"
	case KindTypeAlias:
		return "TypeAlias"
	case KindTypeVariable:
		return "TypeVariable"
	default:
		return "Unknown"
	}
}

// IsClassLike reports whether the kind owns ClassData (Class and its
// Exception subvariant).
func (k Kind) IsClassLike() bool {
	return k == KindClass || k == KindException
}

// IsCallable reports whether the kind owns FuncData.
func (k Kind) IsCallable() bool {
	switch k {
	case KindFunction, KindMethod, KindClassMethod, KindStaticMethod:
		return true
	default:
		return false
	}
}

// AttributeKind further sub-kinds an Attribute Documentable.
type AttributeKind int

const (
	AttrVariable AttributeKind = iota
	AttrInstanceVariable
	AttrClassVariable
	AttrConstant
)

func (a AttributeKind) String() string {
	switch a {
	case AttrVariable:
		return "Variable"
	case AttrInstanceVariable:
		return "InstanceVariable"
	case AttrClassVariable:
		return "ClassVariable"
	case AttrConstant:
		return "Constant"
	default:
		return "Variable"
	}
}

// Privacy is one of PUBLIC, PRIVATE, HIDDEN (spec.md §4.6).
type Privacy int

const (
	PUBLIC Privacy = iota
	PRIVATE
	HIDDEN
)

func (p Privacy) String() string {
	switch p {
	case PUBLIC:
		return "PUBLIC"
	case PRIVATE:
		return "PRIVATE"
	case HIDDEN:
		return "HIDDEN"
	default:
		return "PUBLIC"
	}
}

// DocFormat is the closed set of markup dialects a docstring may declare
// (spec.md §6).
type DocFormat string

const (
	Epytext          DocFormat = "epytext"
	ReStructuredText DocFormat = "restructuredtext"
	Google           DocFormat = "google"
	NumPy            DocFormat = "numpy"
	Plaintext        DocFormat = "plaintext"
)

// ParamKind is the closed set of parameter passing conventions (spec.md §3.3).
type ParamKind int

const (
	ParamPositionalOnly ParamKind = iota
	ParamPositionalOrKeyword
	ParamVariadicPositional
	ParamKeywordOnly
	ParamVariadicKeyword
)

func (k ParamKind) String() string {
	switch k {
	case ParamPositionalOnly:
		return "positional-only"
	case ParamPositionalOrKeyword:
		return "positional-or-keyword"
	case ParamVariadicPositional:
		return "variadic-positional"
	case ParamKeywordOnly:
		return "keyword-only"
	case ParamVariadicKeyword:
		return "variadic-keyword"
	default:
		return "positional-or-keyword"
	}
}
