package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ValidatePaths checks that every configured scan path exists, returning
// the first missing path's error wrapped with that path —
// mirroring the teacher's own fail-fast target validation in
// resolveTargets/resolveProviderAndFiles.
func ValidatePaths(cfg *Config) error {
	if len(cfg.Paths) == 0 {
		return fmt.Errorf("no scan paths configured")
	}
	for _, p := range cfg.Paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("scan path %q: %w", p, err)
		}
	}
	return nil
}

// ResolveIntrospectionRunner returns cfg's configured introspection
// helper, falling back to a bare "python3" lookup on PATH so that §4.2.2
// binary-module introspection has a sane default without requiring every
// invocation to pass --introspect-runner explicitly.
func ResolveIntrospectionRunner(cfg *Config) string {
	if cfg.IntrospectionRunner != "" {
		return cfg.IntrospectionRunner
	}
	if path, err := exec.LookPath("python3"); err == nil {
		return path
	}
	return "python3"
}

// AbsBaseDir resolves cfg.BaseDir to an absolute path, defaulting to the
// current working directory when unset.
func AbsBaseDir(cfg *Config) (string, error) {
	if cfg.BaseDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(cfg.BaseDir)
}
