package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/oxhq/apidocs/internal/model"
)

// BuildConfigFromFlags parses args against a fresh flag set and layers the
// result over LoadConfig's environment-derived defaults, mirroring the
// teacher's own BuildConfigFromFlags(args []string) shape — cmd/apidocs's
// cobra commands hand it their own raw args rather than a shared
// pre-registered FlagSet, so this owns its flag definitions outright.
func BuildConfigFromFlags(args []string) (*Config, error) {
	cfg := LoadConfig()

	fs := pflag.NewFlagSet("apidocs", pflag.ContinueOnError)
	fs.Usage = func() { PrintUsage(fs) }

	fs.StringP("base-dir", "b", "", "Base directory paths are reported relative to.")
	fs.String("docformat", "", "Default docstring markup (restructuredtext, epytext, google, numpy, plaintext).")
	fs.Bool("plain", false, "Treat every docstring as plaintext, overriding any declared_docformat.")
	fs.String("introspect-runner", "", "Helper command used to introspect binary extension modules.")
	fs.StringSlice("inventory", nil, "External inventory as name=path[|baseurl]; repeatable.")
	fs.StringSlice("privacy", nil, "Privacy override as qname-or-glob=public|private|hidden; repeatable, order-sensitive.")
	fs.StringArray("conditional", nil, "Conditional-branch override as qname:guard=bool[,guard=bool...]; repeatable.")
	fs.Int64("max-bytes", 5*1024*1024, "Skip source files larger than this many bytes.")
	fs.StringSlice("exclude", nil, "Additional basename glob patterns to skip.")
	fs.Bool("no-gitignore", false, "Disable .gitignore-aware exclusion.")
	fs.Bool("warnings-as-errors", false, "Exit non-zero if any warning was raised.")
	fs.String("out", "", "Write the dumped inventory (or, under --json, the object model) to this file instead of stdout.")
	fs.String("persist-dsn", "", "Save the built system to this gorm DSN (sqlite file path or libsql:// URL) after a successful build.")
	fs.String("persist-tag", "default", "System tag used to key the saved/loaded persisted state.")
	fs.BoolP("json", "j", false, "Emit the object model and warnings as JSON.")
	fs.BoolP("verbose", "v", false, "Include verbose-only warnings (e.g. ambiguous annotations).")
	fs.BoolP("help", "h", false, "Show this help message and exit.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.Changed("help") {
		PrintUsage(fs)
		return nil, flag.ErrHelp
	}

	cfg.Paths = resolvePaths(fs)
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("no scan paths given, pass at least one file or directory")
	}

	if v, _ := fs.GetString("base-dir"); v != "" {
		cfg.BaseDir = v
	}
	if v, _ := fs.GetString("docformat"); v != "" {
		cfg.DefaultDocFormat = model.DocFormat(v)
	}
	if fs.Changed("plain") {
		cfg.PlainMode = true
	}
	if v, _ := fs.GetString("introspect-runner"); v != "" {
		cfg.IntrospectionRunner = v
	}
	if v, _ := fs.GetStringSlice("inventory"); len(v) > 0 {
		cfg.Inventories = append(cfg.Inventories, parseInventorySpecs(joinCommaFlag(v))...)
	}
	if v, _ := fs.GetStringSlice("privacy"); len(v) > 0 {
		cfg.PrivacyRules = append(cfg.PrivacyRules, parsePrivacyRules(joinCommaFlag(v))...)
	}
	if v, _ := fs.GetStringArray("conditional"); len(v) > 0 {
		for qname, guards := range parseConditionalOverrides(joinSemicolonFlag(v)) {
			if cfg.ConditionalOverrides == nil {
				cfg.ConditionalOverrides = make(map[string]map[string]bool)
			}
			cfg.ConditionalOverrides[qname] = guards
		}
	}
	if maxBytes, _ := fs.GetInt64("max-bytes"); maxBytes > 0 {
		cfg.MaxBytes = maxBytes
	}
	if excl, _ := fs.GetStringSlice("exclude"); len(excl) > 0 {
		cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, excl...)
	}
	if fs.Changed("no-gitignore") {
		cfg.NoGitignore = true
	}
	if fs.Changed("warnings-as-errors") {
		cfg.WarningsAsErrors = true
	}
	if v, _ := fs.GetString("out"); v != "" {
		cfg.OutputFile = v
	}
	if v, _ := fs.GetString("persist-dsn"); v != "" {
		cfg.PersistDSN = v
	}
	if v, _ := fs.GetString("persist-tag"); v != "" {
		cfg.PersistTag = v
	}
	cfg.JSONOutput, _ = fs.GetBool("json")
	cfg.Verbose, _ = fs.GetBool("verbose")

	return cfg, nil
}

// resolvePaths returns the command's positional file/directory arguments,
// falling back to the current working directory (the teacher's
// resolveTargets does the same fallback for its own --root flag).
func resolvePaths(fs *pflag.FlagSet) []string {
	if args := fs.Args(); len(args) > 0 {
		return args
	}
	if cwd, err := os.Getwd(); err == nil {
		return []string{cwd}
	}
	return nil
}

func joinCommaFlag(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}

func joinSemicolonFlag(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ";"
		}
		out += v
	}
	return out
}

// PrintUsage writes the flag set's usage block to stderr.
func PrintUsage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "\nUsage: apidocs [flags] <path1> <path2> ...\n")
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	fs.PrintDefaults()
}
