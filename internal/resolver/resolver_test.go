package resolver

import (
	"testing"

	"github.com/oxhq/apidocs/internal/model"
)

func mustAdd(t *testing.T, sys *model.System, d *model.Documentable) {
	t.Helper()
	if err := sys.Add(d); err != nil {
		t.Fatalf("Add(%s): %v", d.FQName, err)
	}
}

func newModule(sys *model.System, name string) *model.Documentable {
	d := &model.Documentable{ID: sys.AllocID(), Name: name, Kind: model.KindModule, FQName: name, Module: &model.ModuleData{}}
	return d
}

func newChild(sys *model.System, owner *model.Documentable, name string, kind model.Kind) *model.Documentable {
	d := &model.Documentable{
		ID:        sys.AllocID(),
		Name:      name,
		Kind:      kind,
		ParentID:  owner.ID,
		HasParent: true,
		FQName:    model.ChildQName(owner.FQName, name),
	}
	owner.ChildrenIDs = append(owner.ChildrenIDs, d.ID)
	return d
}

func TestResolveDirectChild(t *testing.T) {
	sys := model.NewSystem()
	mod := newModule(sys, "pkg")
	mustAdd(t, sys, mod)
	fn := newChild(sys, mod, "helper", model.KindFunction)
	fn.Func = &model.FuncData{}
	mustAdd(t, sys, fn)

	r := New(sys)
	res := r.Resolve(mod, "helper")
	if res.Kind != ResultInternal || res.Target.ID != fn.ID {
		t.Fatalf("Resolve(helper) = %#v, want Internal(helper)", res)
	}
}

func TestResolveViaMRO(t *testing.T) {
	sys := model.NewSystem()
	mod := newModule(sys, "pkg")
	mustAdd(t, sys, mod)

	base := newChild(sys, mod, "Base", model.KindClass)
	base.Class = &model.ClassData{}
	mustAdd(t, sys, base)
	method := newChild(sys, base, "greet", model.KindMethod)
	method.Func = &model.FuncData{}
	mustAdd(t, sys, method)

	derived := newChild(sys, mod, "Derived", model.KindClass)
	derived.Class = &model.ClassData{}
	mustAdd(t, sys, derived)
	derived.Class.MRO = []model.ID{derived.ID, base.ID}

	r := New(sys)
	res := r.Resolve(derived, "greet")
	if res.Kind != ResultInternal || res.Target.ID != method.ID {
		t.Fatalf("Resolve(greet) = %#v, want Internal(Base.greet) via MRO", res)
	}
}

func TestResolveUnresolved(t *testing.T) {
	sys := model.NewSystem()
	mod := newModule(sys, "pkg")
	mustAdd(t, sys, mod)

	r := New(sys)
	res := r.Resolve(mod, "nonexistent")
	if res.Kind != ResultUnresolved {
		t.Fatalf("Resolve(nonexistent) = %#v, want Unresolved", res)
	}
}

func TestResolveCachesResult(t *testing.T) {
	sys := model.NewSystem()
	mod := newModule(sys, "pkg")
	mustAdd(t, sys, mod)
	fn := newChild(sys, mod, "helper", model.KindFunction)
	fn.Func = &model.FuncData{}
	mustAdd(t, sys, fn)

	r := New(sys)
	r.Resolve(mod, "helper")
	r.Resolve(mod, "helper")

	stats := r.Stats()
	if stats["hits"] != 1 || stats["misses"] != 1 {
		t.Fatalf("Stats() = %#v, want 1 hit and 1 miss", stats)
	}
}

func TestResolveImportRedirect(t *testing.T) {
	sys := model.NewSystem()
	other := newModule(sys, "otherpkg")
	mustAdd(t, sys, other)
	target := newChild(sys, other, "Thing", model.KindClass)
	target.Class = &model.ClassData{}
	mustAdd(t, sys, target)

	mod := newModule(sys, "pkg")
	mod.Module.Imports = []model.Import{{
		SourceModule: "otherpkg",
		Names:        []model.ImportedName{{Original: "Thing", Alias: "Thing"}},
	}}
	mustAdd(t, sys, mod)

	r := New(sys)
	res := r.Resolve(mod, "Thing")
	if res.Kind != ResultInternal || res.Target.ID != target.ID {
		t.Fatalf("Resolve(Thing) = %#v, want Internal(otherpkg.Thing) via import redirect", res)
	}
}

func TestResolveWildcardImport(t *testing.T) {
	sys := model.NewSystem()
	other := newModule(sys, "otherpkg")
	mustAdd(t, sys, other)
	helper := newChild(sys, other, "helper", model.KindFunction)
	helper.Func = &model.FuncData{}
	mustAdd(t, sys, helper)

	mod := newModule(sys, "pkg")
	mod.Module.Imports = []model.Import{{SourceModule: "otherpkg", Wildcard: true}}
	mustAdd(t, sys, mod)

	r := New(sys)
	res := r.Resolve(mod, "helper")
	if res.Kind != ResultInternal || res.Target.ID != helper.ID {
		t.Fatalf("Resolve(helper) = %#v, want Internal(otherpkg.helper) via wildcard import", res)
	}
}
