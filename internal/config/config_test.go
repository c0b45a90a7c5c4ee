package config

import (
	"testing"

	"github.com/oxhq/apidocs/internal/model"
)

func TestParseInventorySpecs(t *testing.T) {
	got := parseInventorySpecs("stdlib=./stdlib.inv|https://docs.python.org,requests=./req.inv")
	if len(got) != 2 {
		t.Fatalf("parseInventorySpecs = %#v, want 2 entries", got)
	}
	if got[0].Name != "stdlib" || got[0].Path != "./stdlib.inv" || got[0].BaseURL != "https://docs.python.org" {
		t.Fatalf("got[0] = %#v", got[0])
	}
	if got[1].Name != "requests" || got[1].Path != "./req.inv" || got[1].BaseURL != "" {
		t.Fatalf("got[1] = %#v", got[1])
	}
}

func TestParsePrivacyRules(t *testing.T) {
	got := parsePrivacyRules("pkg.Internal=hidden,pkg._*=private")
	want := []model.PrivacyRule{
		{Pattern: "pkg.Internal", Privacy: model.HIDDEN},
		{Pattern: "pkg._*", Privacy: model.PRIVATE},
	}
	if len(got) != len(want) {
		t.Fatalf("parsePrivacyRules = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rule %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestParseConditionalOverrides(t *testing.T) {
	got := parseConditionalOverrides("pkg.HAS_FOO:HAS_FOO=true;pkg:PY2=false,PY3=true")
	if len(got) != 2 {
		t.Fatalf("parseConditionalOverrides = %#v, want 2 qname groups", got)
	}
	if got["pkg.HAS_FOO"]["HAS_FOO"] != true {
		t.Fatalf("pkg.HAS_FOO group = %#v", got["pkg.HAS_FOO"])
	}
	if got["pkg"]["PY2"] != false || got["pkg"]["PY3"] != true {
		t.Fatalf("pkg group = %#v", got["pkg"])
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.DefaultDocFormat != model.ReStructuredText {
		t.Fatalf("DefaultDocFormat = %v, want restructuredtext default", cfg.DefaultDocFormat)
	}
	if cfg.MaxBytes != 5*1024*1024 {
		t.Fatalf("MaxBytes = %d, want 5MiB default", cfg.MaxBytes)
	}
}
