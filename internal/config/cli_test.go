package config

import (
	"testing"

	"github.com/oxhq/apidocs/internal/model"
)

func TestBuildConfigFromFlagsBasic(t *testing.T) {
	cfg, err := BuildConfigFromFlags([]string{"--docformat", "epytext", "--json", "./pkg"})
	if err != nil {
		t.Fatalf("BuildConfigFromFlags: %v", err)
	}
	if cfg.DefaultDocFormat != model.Epytext {
		t.Fatalf("DefaultDocFormat = %v, want epytext", cfg.DefaultDocFormat)
	}
	if !cfg.JSONOutput {
		t.Fatalf("JSONOutput = false, want true")
	}
	if len(cfg.Paths) != 1 || cfg.Paths[0] != "./pkg" {
		t.Fatalf("Paths = %#v, want [./pkg]", cfg.Paths)
	}
}

func TestBuildConfigFromFlagsFallsBackToCwd(t *testing.T) {
	// With no positional args, BuildConfigFromFlags falls back to cwd,
	// so it should not error even with zero paths given explicitly.
	cfg, err := BuildConfigFromFlags(nil)
	if err != nil {
		t.Fatalf("BuildConfigFromFlags(nil): %v", err)
	}
	if len(cfg.Paths) != 1 {
		t.Fatalf("Paths = %#v, want cwd fallback", cfg.Paths)
	}
}

func TestBuildConfigFromFlagsPrivacyAndConditional(t *testing.T) {
	cfg, err := BuildConfigFromFlags([]string{
		"--privacy", "pkg.Internal=hidden",
		"--conditional", "pkg:sys.version_info=true",
		".",
	})
	if err != nil {
		t.Fatalf("BuildConfigFromFlags: %v", err)
	}
	if len(cfg.PrivacyRules) != 1 || cfg.PrivacyRules[0].Pattern != "pkg.Internal" {
		t.Fatalf("PrivacyRules = %#v", cfg.PrivacyRules)
	}
	if cfg.ConditionalOverrides["pkg"]["sys.version_info"] != true {
		t.Fatalf("ConditionalOverrides = %#v", cfg.ConditionalOverrides)
	}
}

func TestBuildConfigFromFlagsHelp(t *testing.T) {
	_, err := BuildConfigFromFlags([]string{"--help"})
	if err == nil {
		t.Fatalf("BuildConfigFromFlags(--help) = nil error, want flag.ErrHelp")
	}
}
