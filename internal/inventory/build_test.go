package inventory

import (
	"testing"

	"github.com/oxhq/apidocs/internal/model"
)

func TestBuildSystemInventoryOmitsHidden(t *testing.T) {
	sys := model.NewSystem()
	pkg := &model.Documentable{ID: sys.AllocID(), Name: "pkg", Kind: model.KindPackage, FQName: "pkg", Module: &model.ModuleData{IsPackage: true}, Privacy: model.PUBLIC}
	_ = sys.Add(pkg)
	sys.AddRoot(pkg.ID)

	cls := &model.Documentable{ID: sys.AllocID(), Name: "Widget", Kind: model.KindClass, FQName: "pkg.Widget", ParentID: pkg.ID, HasParent: true, Class: &model.ClassData{}, Privacy: model.PUBLIC}
	_ = sys.Add(cls)
	pkg.ChildrenIDs = append(pkg.ChildrenIDs, cls.ID)

	hidden := &model.Documentable{ID: sys.AllocID(), Name: "_secret", Kind: model.KindAttribute, FQName: "pkg._secret", ParentID: pkg.ID, HasParent: true, Attr: &model.AttrData{}, Privacy: model.HIDDEN}
	_ = sys.Add(hidden)
	pkg.ChildrenIDs = append(pkg.ChildrenIDs, hidden.ID)

	inv := BuildSystemInventory(sys, "self", "apidocs", "1.0", "https://example.com")
	if _, ok := inv.Lookup("pkg.Widget"); !ok {
		t.Fatalf("Lookup(pkg.Widget) missing from built inventory")
	}
	if _, ok := inv.Lookup("pkg._secret"); ok {
		t.Fatalf("Lookup(pkg._secret) present, want HIDDEN entity omitted")
	}
}

func TestFormatLinesSortedByName(t *testing.T) {
	inv := New("self", "apidocs", "", "")
	inv.Add(Entry{Name: "pkg.b", URL: "#pkg.b"})
	inv.Add(Entry{Name: "pkg.a", URL: "#pkg.a"})

	lines := FormatLines(inv)
	if len(lines) != 2 {
		t.Fatalf("FormatLines len = %d, want 2", len(lines))
	}
	if lines[0][:5] != "pkg.a" || lines[1][:5] != "pkg.b" {
		t.Fatalf("FormatLines = %v, want pkg.a before pkg.b", lines)
	}
}
