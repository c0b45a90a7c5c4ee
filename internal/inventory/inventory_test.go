package inventory

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inv := New("self", "apidocs", "1.0", "https://example.com/docs")
	inv.Add(Entry{Name: "pkg.Widget", Role: "class", Domain: "py", URL: "#pkg.Widget", DisplayName: "-"})
	inv.Add(Entry{Name: "pkg.widget_fn", Role: "function", Domain: "py", URL: "#pkg.widget_fn", DisplayName: "-"})

	var buf bytes.Buffer
	if err := Encode(&buf, inv); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Project != "apidocs" || decoded.Version != "1.0" {
		t.Fatalf("decoded project/version = %q/%q", decoded.Project, decoded.Version)
	}
	e, ok := decoded.Lookup("pkg.Widget")
	if !ok || e.Role != "class" || e.URL != "#pkg.Widget" {
		t.Fatalf("Lookup(pkg.Widget) = %+v, %v", e, ok)
	}
}

func TestLookupLongestPrefix(t *testing.T) {
	inv := New("self", "apidocs", "", "")
	inv.Add(Entry{Name: "pkg.Widget", URL: "#pkg.Widget"})

	e, ok := inv.Lookup("pkg.Widget.use")
	if !ok || e.Name != "pkg.Widget" {
		t.Fatalf("Lookup(pkg.Widget.use) = %+v, %v; want prefix match on pkg.Widget", e, ok)
	}
}

func TestSetResolveJoinsBaseURL(t *testing.T) {
	set := NewSet()
	inv := New("stdlib", "Python", "3.12", "https://docs.python.org")
	inv.Add(Entry{Name: "os.path.join", URL: "library/os.path.html#os.path.join"})
	set.Register(inv)

	name, url, ok := set.Resolve("os.path.join")
	if !ok || name != "stdlib" || url != "https://docs.python.org/library/os.path.html#os.path.join" {
		t.Fatalf("Resolve = %q, %q, %v", name, url, ok)
	}
}
