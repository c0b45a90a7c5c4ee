package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/oxhq/apidocs/internal/config"
	"github.com/oxhq/apidocs/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestBuildProducesFrozenTreeWithParentsBeforeChildren(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "pkg")
	writeFile(t, filepath.Join(root, "__init__.py"), "\"\"\"Package pkg.\"\"\"\n")
	writeFile(t, filepath.Join(root, "widget.py"), "class Widget(object):\n    \"\"\"A widget.\"\"\"\n    def use(self):\n        pass\n")
	writeFile(t, filepath.Join(root, "sub", "__init__.py"), "\"\"\"Subpackage.\"\"\"\n")
	writeFile(t, filepath.Join(root, "sub", "inner.py"), "x = 1\n")

	cfg := &config.Config{
		Paths:            []string{root},
		DefaultDocFormat: model.ReStructuredText,
		MaxBytes:         5 * 1024 * 1024,
	}

	res, err := Build(context.Background(), BuildInputs{Config: cfg})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !res.System.IsFrozen() {
		t.Fatalf("System not frozen after Build")
	}

	pkg, ok := res.System.Lookup("pkg")
	if !ok {
		t.Fatalf("Lookup(pkg) failed")
	}
	if pkg.Kind != model.KindPackage || pkg.Module == nil || !pkg.Module.IsPackage {
		t.Fatalf("pkg = %+v, want KindPackage with IsPackage", pkg)
	}
	if pkg.Doc == nil || pkg.Doc.Text == "" {
		t.Fatalf("pkg.Doc not filled: %+v", pkg.Doc)
	}

	widgetMod, ok := res.System.Lookup("pkg.widget")
	if !ok {
		t.Fatalf("Lookup(pkg.widget) failed")
	}
	widget, ok := res.System.Lookup("pkg.widget.Widget")
	if !ok {
		t.Fatalf("Lookup(pkg.widget.Widget) failed")
	}
	if widget.Kind != model.KindClass || widget.ParentID != widgetMod.ID {
		t.Fatalf("Widget = %+v, want child of pkg.widget", widget)
	}

	sub, ok := res.System.Lookup("pkg.sub")
	if !ok || sub.Kind != model.KindPackage || !sub.Module.IsPackage {
		t.Fatalf("pkg.sub = %+v, %v; want package", sub, ok)
	}
	if sub.ParentID != pkg.ID {
		t.Fatalf("pkg.sub.ParentID = %d, want pkg.ID = %d", sub.ParentID, pkg.ID)
	}

	inner, ok := res.System.Lookup("pkg.sub.inner")
	if !ok || inner.ParentID != sub.ID {
		t.Fatalf("pkg.sub.inner = %+v, %v; want child of pkg.sub", inner, ok)
	}

	if errs := res.System.CheckInvariants(); len(errs) != 0 {
		t.Fatalf("CheckInvariants: %v", errs)
	}
}

func TestBuildSkipsUnreadablePathWithWarningNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.py"), "x = 1\n")
	// A dangling symlink with the source extension is scanned as a unit
	// but cannot be read.
	if err := os.Symlink(filepath.Join(dir, "missing-target"), filepath.Join(dir, "broken.py")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	cfg := &config.Config{
		Paths:            []string{dir},
		DefaultDocFormat: model.ReStructuredText,
	}
	res, err := Build(context.Background(), BuildInputs{Config: cfg})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := res.System.Lookup(filepath.Base(dir) + ".ok"); !ok {
		t.Fatalf("expected ok module present")
	}
	skipped := false
	for _, w := range res.Warnings {
		if w.Kind == model.WarnSkippedPath {
			skipped = true
		}
	}
	if !skipped {
		t.Fatalf("expected a WarnSkippedPath warning for broken.py, got %v", res.Warnings)
	}
}
