// Package config resolves driver configuration (scan paths, docformat
// defaults, inventories, privacy rules, conditional-branch overrides) from
// environment variables and CLI flags, the way the teacher's own config
// package layers os.Getenv defaults under flag overrides.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/oxhq/apidocs/internal/model"
)

// InventorySource names one external inventory to load: a driver-assigned
// name, the file path or URL it is read from, and the base URL to join
// against its relative entry URLs.
type InventorySource struct {
	Name    string
	Path    string
	BaseURL string
}

// Config holds everything the apidocs driver needs to invoke
// internal/pipeline and render its result.
type Config struct {
	Paths   []string
	BaseDir string

	DefaultDocFormat model.DocFormat
	PlainMode        bool

	IntrospectionRunner string

	Inventories []InventorySource

	PrivacyRules         []model.PrivacyRule
	ConditionalOverrides map[string]map[string]bool

	MaxBytes     int64
	ExcludeGlobs []string
	NoGitignore  bool

	WarningsAsErrors bool
	JSONOutput       bool
	Verbose          bool

	// OutputFile, if set, writes the dumped inventory (or, under
	// JSONOutput, the JSON object model) to this path atomically instead
	// of stdout.
	OutputFile string

	// PersistDSN, if set, saves the built System to this gorm DSN
	// (sqlite file path, or a libsql:// / https:// remote URL) after a
	// successful build, under PersistTag.
	PersistDSN string
	PersistTag string
}

// LoadConfig builds a Config from .env-backed environment defaults
// (APIDOCS_* variables), mirroring the teacher's MORFX_*-prefixed
// LoadConfig. CLI flags parsed afterward (BuildConfigFromFlags) take
// precedence over these.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BaseDir:             os.Getenv("APIDOCS_BASE_DIR"),
		DefaultDocFormat:    model.ReStructuredText,
		IntrospectionRunner: os.Getenv("APIDOCS_INTROSPECTION_RUNNER"),
		MaxBytes:            5 * 1024 * 1024,
		OutputFile:          os.Getenv("APIDOCS_OUTPUT_FILE"),
		PersistDSN:          os.Getenv("APIDOCS_PERSIST_DSN"),
		PersistTag:          os.Getenv("APIDOCS_PERSIST_TAG"),
	}

	if df := os.Getenv("APIDOCS_DOCFORMAT"); df != "" {
		cfg.DefaultDocFormat = model.DocFormat(df)
	}
	if plain := os.Getenv("APIDOCS_PLAIN_MODE"); plain != "" {
		if v, err := strconv.ParseBool(plain); err == nil {
			cfg.PlainMode = v
		}
	}
	if maxBytesStr := os.Getenv("APIDOCS_MAX_BYTES"); maxBytesStr != "" {
		if v, err := strconv.ParseInt(maxBytesStr, 10, 64); err == nil && v > 0 {
			cfg.MaxBytes = v
		}
	}
	if wae := os.Getenv("APIDOCS_WARNINGS_AS_ERRORS"); wae != "" {
		if v, err := strconv.ParseBool(wae); err == nil {
			cfg.WarningsAsErrors = v
		}
	}
	if inventories := os.Getenv("APIDOCS_INVENTORIES"); inventories != "" {
		cfg.Inventories = parseInventorySpecs(inventories)
	}
	if rules := os.Getenv("APIDOCS_PRIVACY_RULES"); rules != "" {
		cfg.PrivacyRules = parsePrivacyRules(rules)
	}
	if overrides := os.Getenv("APIDOCS_CONDITIONAL_OVERRIDES"); overrides != "" {
		cfg.ConditionalOverrides = parseConditionalOverrides(overrides)
	}

	return cfg
}

// parseInventorySpecs parses a comma-separated list of
// "name=path[|baseurl]" entries.
func parseInventorySpecs(spec string) []InventorySource {
	var out []InventorySource
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rest, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		path, baseURL, _ := strings.Cut(rest, "|")
		out = append(out, InventorySource{Name: name, Path: path, BaseURL: baseURL})
	}
	return out
}

// parsePrivacyRules parses a comma-separated list of "pattern=privacy"
// entries (privacy one of public, private, hidden), preserving order
// since §4.6 rule evaluation is order-sensitive.
func parsePrivacyRules(spec string) []model.PrivacyRule {
	var out []model.PrivacyRule
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		pattern, level, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		p, ok := parsePrivacyLevel(level)
		if !ok {
			continue
		}
		out = append(out, model.PrivacyRule{Pattern: pattern, Privacy: p})
	}
	return out
}

func parsePrivacyLevel(s string) (model.Privacy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return model.PUBLIC, true
	case "private":
		return model.PRIVATE, true
	case "hidden":
		return model.HIDDEN, true
	default:
		return model.PUBLIC, false
	}
}

// parseConditionalOverrides parses a semicolon-separated list of
// "qname:guard=bool[,guard=bool...]" entries into the nested map §4.2.3's
// astbuild.Options.ConditionalOverrides expects.
func parseConditionalOverrides(spec string) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, group := range strings.Split(spec, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		qname, guards, ok := strings.Cut(group, ":")
		if !ok {
			continue
		}
		guardMap := make(map[string]bool)
		for _, g := range strings.Split(guards, ",") {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			name, boolStr, ok := strings.Cut(g, "=")
			if !ok {
				continue
			}
			v, err := strconv.ParseBool(boolStr)
			if err != nil {
				continue
			}
			guardMap[name] = v
		}
		if len(guardMap) > 0 {
			out[qname] = guardMap
		}
	}
	return out
}
