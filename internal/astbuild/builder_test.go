package astbuild

import (
	"testing"

	"github.com/oxhq/apidocs/internal/model"
)

func newRootModule(sys *model.System, name string) *model.Documentable {
	d := &model.Documentable{
		ID:     sys.AllocID(),
		Name:   name,
		Kind:   model.KindModule,
		FQName: name,
		Module: &model.ModuleData{},
	}
	if err := sys.Add(d); err != nil {
		panic(err)
	}
	sys.AddRoot(d.ID)
	return d
}

func fillSource(t *testing.T, src string) (*model.System, *model.Sink, *model.Documentable) {
	t.Helper()
	sys := model.NewSystem()
	sink := &model.Sink{}
	mod := newRootModule(sys, "pkg")
	b := NewBuilder(nil, DefaultOptions())
	if err := b.FillModule(sys, sink, mod, "pkg.py", []byte(src)); err != nil {
		t.Fatalf("FillModule: %v", err)
	}
	return sys, sink, mod
}

func childNamed(sys *model.System, owner *model.Documentable, name string) *model.Documentable {
	for _, id := range owner.ChildrenIDs {
		if c := sys.Get(id); c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

func TestImportStatementVariants(t *testing.T) {
	sys, _, mod := fillSource(t, "import os\nimport os.path as op\n")
	if len(mod.Module.Imports) != 2 {
		t.Fatalf("Imports = %#v, want 2 entries", mod.Module.Imports)
	}
	_ = sys
}

func TestImportFromVariants(t *testing.T) {
	src := "from a.b import c, d as e\nfrom . import x\nfrom .. import y\nfrom a.b import *\n"
	_, _, mod := fillSource(t, src)
	if len(mod.Module.Imports) != 4 {
		t.Fatalf("Imports = %#v, want 4 entries (one per from-import statement)", mod.Module.Imports)
	}
	first := mod.Module.Imports[0]
	if len(first.Names) != 2 || first.Names[0].Original != "c" || first.Names[1].Alias != "e" {
		t.Fatalf("first Import.Names = %#v, want [c, d as e]", first.Names)
	}
	last := mod.Module.Imports[3]
	if !last.Wildcard {
		t.Fatalf("last Import.Wildcard = false, want true")
	}
}

func TestAllExportsWellFormed(t *testing.T) {
	_, sink, mod := fillSource(t, `__all__ = ["foo", "bar"]`+"\n")
	if !mod.Module.HasAllExports {
		t.Fatalf("HasAllExports = false, want true")
	}
	if len(mod.Module.AllExports) != 2 || mod.Module.AllExports[0] != "foo" {
		t.Fatalf("AllExports = %#v", mod.Module.AllExports)
	}
	if len(sink.Warnings()) != 0 {
		t.Fatalf("unexpected warnings: %#v", sink.Warnings())
	}
}

func TestAllExportsMalformed(t *testing.T) {
	_, sink, mod := fillSource(t, `__all__ = foo() + bar()`+"\n")
	if mod.Module.HasAllExports {
		t.Fatalf("HasAllExports = true, want false for non-literal assignment")
	}
	if len(sink.Warnings()) == 0 || sink.Warnings()[0].Kind != model.WarnMalformedAllExports {
		t.Fatalf("warnings = %#v, want a WarnMalformedAllExports", sink.Warnings())
	}
}

func TestDocFormatAssignment(t *testing.T) {
	_, _, mod := fillSource(t, `__docformat__ = "restructuredtext"`+"\n")
	if mod.Module.DeclaredDocFormat != "restructuredtext" {
		t.Fatalf("DeclaredDocFormat = %q, want restructuredtext", mod.Module.DeclaredDocFormat)
	}
}

func TestComputedAllCapsIsVariableNotConstant(t *testing.T) {
	// spec.md §8 scenario 2: a computed all-caps value is Variable.
	sys, _, mod := fillSource(t, "SQUARES = [x * x for x in range(10)]\n")
	attr := childNamed(sys, mod, "SQUARES")
	if attr == nil || attr.Attr == nil {
		t.Fatalf("SQUARES attribute not found")
	}
	if attr.Attr.SubKind != model.AttrVariable {
		t.Fatalf("SubKind = %v, want AttrVariable", attr.Attr.SubKind)
	}
}

func TestFinalAnnotatedIsConstant(t *testing.T) {
	sys, _, mod := fillSource(t, "X: Final = 3.14\n")
	attr := childNamed(sys, mod, "X")
	if attr == nil || attr.Attr == nil {
		t.Fatalf("X attribute not found")
	}
	if attr.Attr.SubKind != model.AttrConstant {
		t.Fatalf("SubKind = %v, want AttrConstant", attr.Attr.SubKind)
	}
}

func TestLiteralCapsUnconditionalSingleIsConstant(t *testing.T) {
	sys, _, mod := fillSource(t, "MAX_SIZE = 100\n")
	attr := childNamed(sys, mod, "MAX_SIZE")
	if attr == nil || attr.Attr == nil {
		t.Fatalf("MAX_SIZE attribute not found")
	}
	if attr.Attr.SubKind != model.AttrConstant {
		t.Fatalf("SubKind = %v, want AttrConstant", attr.Attr.SubKind)
	}
}

func TestConditionalCapsIsNotConstant(t *testing.T) {
	sys, _, mod := fillSource(t, "if True:\n    MAX_SIZE = 100\n")
	attr := childNamed(sys, mod, "MAX_SIZE")
	if attr == nil || attr.Attr == nil {
		t.Fatalf("MAX_SIZE attribute not found")
	}
	if attr.Attr.SubKind == model.AttrConstant {
		t.Fatalf("SubKind = AttrConstant, want non-Constant for a conditional binding")
	}
}

func TestReassignedCapsIsNotConstant(t *testing.T) {
	sys, _, mod := fillSource(t, "MAX_SIZE = 100\nMAX_SIZE = 200\n")
	attr := childNamed(sys, mod, "MAX_SIZE")
	if attr == nil || attr.Attr == nil {
		t.Fatalf("MAX_SIZE attribute not found")
	}
	if attr.Attr.SubKind == model.AttrConstant {
		t.Fatalf("SubKind = AttrConstant, want non-Constant for a rebound name")
	}
}

func TestClassBasesAndDocstring(t *testing.T) {
	src := "class Widget(Base, metaclass=Meta):\n    \"\"\"A widget.\"\"\"\n    pass\n"
	sys, _, mod := fillSource(t, src)
	cls := childNamed(sys, mod, "Widget")
	if cls == nil || cls.Class == nil {
		t.Fatalf("Widget class not found")
	}
	if len(cls.Class.RawBases) != 1 || cls.Class.RawBases[0] != "Base" {
		t.Fatalf("RawBases = %#v, want [Base] (metaclass kwarg excluded)", cls.Class.RawBases)
	}
	if cls.Doc == nil || cls.Doc.Text != "A widget." {
		t.Fatalf("Doc = %#v, want \"A widget.\"", cls.Doc)
	}
}

func TestDecoratorExtractionAndPropertyReclassification(t *testing.T) {
	src := "class Widget:\n" +
		"    @property\n" +
		"    def name(self):\n" +
		"        \"\"\"The name.\"\"\"\n" +
		"        return self._name\n"
	sys, _, mod := fillSource(t, src)
	cls := childNamed(sys, mod, "Widget")
	if cls == nil {
		t.Fatalf("Widget class not found")
	}
	prop := childNamed(sys, cls, "name")
	if prop == nil {
		t.Fatalf("name property not found")
	}
	if prop.Kind != model.KindProperty {
		t.Fatalf("Kind = %v, want KindProperty", prop.Kind)
	}
	if prop.Func != nil {
		t.Fatalf("Func = %#v, want nil (Function kind discarded per property reclassification)", prop.Func)
	}
	if prop.Attr == nil {
		t.Fatalf("Attr = nil, want non-nil Attr payload")
	}
	if prop.Doc == nil || prop.Doc.Text != "The name." {
		t.Fatalf("Doc = %#v, want \"The name.\"", prop.Doc)
	}
}

func TestOverloadGrouping(t *testing.T) {
	src := "class Widget:\n" +
		"    @overload\n" +
		"    def get(self, key: str) -> str: ...\n" +
		"    @overload\n" +
		"    def get(self, key: str, default: str) -> str: ...\n" +
		"    def get(self, key, default=None):\n" +
		"        return default\n"
	sys, _, mod := fillSource(t, src)
	cls := childNamed(sys, mod, "Widget")
	if cls == nil {
		t.Fatalf("Widget class not found")
	}
	var canonical *model.Documentable
	var overloadCount int
	for _, id := range cls.ChildrenIDs {
		d := sys.Get(id)
		if d == nil || d.Func == nil {
			continue
		}
		if d.Func.IsOverload {
			overloadCount++
		} else {
			canonical = d
		}
	}
	if overloadCount != 2 {
		t.Fatalf("overloadCount = %d, want 2", overloadCount)
	}
	if canonical == nil || len(canonical.Func.OverloadIDs) != 2 {
		t.Fatalf("canonical.OverloadIDs = %#v, want 2 entries", canonical)
	}
}

func TestConstructorAndSelfAttributes(t *testing.T) {
	src := "class Widget:\n" +
		"    def __init__(self, name):\n" +
		"        self.name = name\n" +
		"        self.count: int = 0\n"
	sys, _, mod := fillSource(t, src)
	cls := childNamed(sys, mod, "Widget")
	if cls == nil || cls.Class == nil {
		t.Fatalf("Widget class not found")
	}
	if len(cls.Class.ConstructorMethodIDs) != 1 {
		t.Fatalf("ConstructorMethodIDs = %#v, want 1 entry", cls.Class.ConstructorMethodIDs)
	}
	nameAttr := childNamed(sys, cls, "name")
	if nameAttr == nil || nameAttr.Attr == nil || nameAttr.Attr.SubKind != model.AttrInstanceVariable {
		t.Fatalf("name instance attribute not found or wrong subkind: %#v", nameAttr)
	}
	countAttr := childNamed(sys, cls, "count")
	if countAttr == nil || countAttr.Attr.DeclaredType != "int" {
		t.Fatalf("count attribute DeclaredType = %#v, want int", countAttr)
	}
}

func TestClassMethodAndStaticMethodKinds(t *testing.T) {
	src := "class Widget:\n" +
		"    @classmethod\n" +
		"    def make(cls):\n" +
		"        pass\n" +
		"    @staticmethod\n" +
		"    def util():\n" +
		"        pass\n"
	sys, _, mod := fillSource(t, src)
	cls := childNamed(sys, mod, "Widget")
	makeFn := childNamed(sys, cls, "make")
	util := childNamed(sys, cls, "util")
	if makeFn == nil || makeFn.Kind != model.KindClassMethod {
		t.Fatalf("make.Kind = %v, want KindClassMethod", makeFn)
	}
	if util == nil || util.Kind != model.KindStaticMethod {
		t.Fatalf("util.Kind = %v, want KindStaticMethod", util)
	}
}

func TestFunctionSignatureParsing(t *testing.T) {
	src := "def f(a, b: int, c=1, *args, d, e: str = \"x\", **kwargs) -> bool:\n    pass\n"
	sys, _, mod := fillSource(t, src)
	fn := childNamed(sys, mod, "f")
	if fn == nil || fn.Func == nil {
		t.Fatalf("f function not found")
	}
	if fn.Func.ReturnType != "bool" {
		t.Fatalf("ReturnType = %q, want bool", fn.Func.ReturnType)
	}
	if len(fn.Func.Signature) != 7 {
		t.Fatalf("Signature = %#v, want 7 parameters", fn.Func.Signature)
	}
	kOnly := fn.Func.Signature[4]
	if kOnly.Name != "d" || kOnly.Kind != model.ParamKeywordOnly {
		t.Fatalf("param 4 = %#v, want keyword-only d", kOnly)
	}
}

func TestPositionalOnlyMarkerClassifiesPrecedingParams(t *testing.T) {
	src := "def f(a, b, /, c, *, d):\n    pass\n"
	sys, _, mod := fillSource(t, src)
	fn := childNamed(sys, mod, "f")
	if fn == nil || fn.Func == nil {
		t.Fatalf("f function not found")
	}
	if len(fn.Func.Signature) != 4 {
		t.Fatalf("Signature = %#v, want 4 parameters", fn.Func.Signature)
	}
	a, b, c, d := fn.Func.Signature[0], fn.Func.Signature[1], fn.Func.Signature[2], fn.Func.Signature[3]
	if a.Kind != model.ParamPositionalOnly || b.Kind != model.ParamPositionalOnly {
		t.Fatalf("a, b = %#v, %#v, want both ParamPositionalOnly", a, b)
	}
	if c.Kind != model.ParamPositionalOrKeyword {
		t.Fatalf("c = %#v, want ParamPositionalOrKeyword", c)
	}
	if d.Kind != model.ParamKeywordOnly {
		t.Fatalf("d = %#v, want ParamKeywordOnly", d)
	}
}

func TestAsyncFunctionDetected(t *testing.T) {
	sys, _, mod := fillSource(t, "async def f():\n    pass\n")
	fn := childNamed(sys, mod, "f")
	if fn == nil || fn.Func == nil || !fn.Func.IsAsync {
		t.Fatalf("f.Func.IsAsync = false, want true")
	}
}

func TestConditionalGuardTypeChecking(t *testing.T) {
	reg := NewBuilderWithOverrides(map[string]map[string]bool{
		"pkg": {"TYPE_CHECKING": false},
	})
	sys := model.NewSystem()
	sink := &model.Sink{}
	mod := newRootModule(sys, "pkg")
	src := "if TYPE_CHECKING:\n    def only_for_types():\n        pass\nelse:\n    def real_one():\n        pass\n"
	if err := reg.FillModule(sys, sink, mod, "pkg.py", []byte(src)); err != nil {
		t.Fatalf("FillModule: %v", err)
	}
	if childNamed(sys, mod, "only_for_types") != nil {
		t.Fatalf("only_for_types should be excluded under TYPE_CHECKING=false override")
	}
	if childNamed(sys, mod, "real_one") == nil {
		t.Fatalf("real_one should be included (the else branch)")
	}
}

func TestUnrecognizedGuardIncludesBothBranches(t *testing.T) {
	src := "if sys.platform == \"win32\":\n    def winonly():\n        pass\nelse:\n    def posixonly():\n        pass\n"
	sys, _, mod := fillSource(t, src)
	if childNamed(sys, mod, "winonly") == nil || childNamed(sys, mod, "posixonly") == nil {
		t.Fatalf("both branches of an unrecognized condition should be descended into")
	}
}

// NewBuilderWithOverrides is a small test helper constructing a Builder
// with conditional-branch overrides, mirroring how a pipeline would wire
// configuration from Config into Options.
func NewBuilderWithOverrides(overrides map[string]map[string]bool) *Builder {
	opts := DefaultOptions()
	opts.ConditionalOverrides = overrides
	return NewBuilder(nil, opts)
}
