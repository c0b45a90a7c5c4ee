// Package scanner locates packages/modules on disk and yields parseable
// units in the ordering spec.md §4.1 requires: submodules before their
// package's initializer, packages in lexicographic path order, and
// within a directory, non-initializer modules in lexicographic order
// before the initializer. Binary modules are treated as leaves with no
// children, handed to the introspection path instead of the parser.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Kind distinguishes the three leaf shapes the scanner can hand to the
// AST builder.
type Kind int

const (
	// KindModule is a plain, parseable source file.
	KindModule Kind = iota
	// KindPackageInit is a directory's package initializer (e.g. __init__.py).
	KindPackageInit
	// KindBinary is a compiled extension module, introspected rather than parsed.
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindPackageInit:
		return "package-init"
	case KindBinary:
		return "binary"
	default:
		return "module"
	}
}

// Unit is one scannable source unit: a path, the dotted qname it will
// register under, and which of the three shapes it is.
type Unit struct {
	Path      string
	QName     string
	Kind      Kind
	IsPackage bool // true for KindPackageInit: this unit's qname is also a package
}

// Config controls the walk.
type Config struct {
	// Roots are the top-level directories or files to scan. Each
	// top-level directory becomes a root package/module named after its
	// base name.
	Roots []string
	// ModuleExt is the source file extension, including the leading dot
	// (e.g. ".py").
	ModuleExt string
	// BinaryExts are extensions treated as binary/compiled modules (e.g.
	// ".so", ".pyd", ".dll").
	BinaryExts []string
	// InitBasename is the package-initializer filename, without
	// extension (e.g. "__init__").
	InitBasename string
	// MaxBytes skips files larger than this many bytes when positive.
	MaxBytes int64
	// NoGitignore disables .gitignore-aware exclusion.
	NoGitignore bool
	// ExcludeGlobs are additional basename glob patterns to skip.
	ExcludeGlobs []string
}

// Scanner handles recursive directory traversal with deterministic
// ordering and filtering.
type Scanner struct {
	cfg       Config
	gitignore *ignore.GitIgnore
}

// New creates a new scanner with the given configuration, loading
// .gitignore files from the current directory upward unless disabled.
func New(cfg Config) *Scanner {
	s := &Scanner{cfg: cfg}
	if !cfg.NoGitignore {
		s.loadGitignore()
	}
	return s
}

// loadGitignore loads .gitignore patterns from the current directory and parent directories.
func (s *Scanner) loadGitignore() {
	// Start from current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return // Silently fail if we can't get current directory
	}

	// Look for .gitignore files up the directory tree
	var gitignoreFiles []string
	dir := cwd
	for {
		gitignorePath := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			gitignoreFiles = append(gitignoreFiles, gitignorePath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached root directory
		}
		dir = parent
	}

	// Load gitignore patterns (reverse order so closer .gitignore files take precedence)
	if len(gitignoreFiles) > 0 {
		// Reverse the slice to process from root to current directory
		for i := len(gitignoreFiles)/2 - 1; i >= 0; i-- {
			opp := len(gitignoreFiles) - 1 - i
			gitignoreFiles[i], gitignoreFiles[opp] = gitignoreFiles[opp], gitignoreFiles[i]
		}

		// CompileIgnoreFileAndLines expects first file as separate parameter
		if len(gitignoreFiles) == 1 {
			gitignore, err := ignore.CompileIgnoreFile(gitignoreFiles[0])
			if err == nil {
				s.gitignore = gitignore
			}
		} else {
			var lines []string
			for _, f := range gitignoreFiles[1:] {
				if data, err := os.ReadFile(f); err == nil {
					lines = append(lines, strings.Split(string(data), "\n")...)
				}
			}
			gitignore, err := ignore.CompileIgnoreFileAndLines(gitignoreFiles[0], lines...)
			if err == nil {
				s.gitignore = gitignore
			}
		}
	}
}

// Scan walks every configured root and returns units in build order:
// roots processed in lexicographic order of their base name, each root's
// subtree depth-first with leaves (submodules) before the package
// initializer (spec.md §4.1).
func (s *Scanner) Scan(ctx context.Context) ([]Unit, error) {
	roots := append([]string(nil), s.cfg.Roots...)
	sort.Slice(roots, func(i, j int) bool {
		return filepath.Base(roots[i]) < filepath.Base(roots[j])
	})

	var out []Unit
	for _, root := range roots {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		units, err := s.scanRoot(root)
		if err != nil {
			return nil, fmt.Errorf("scanning root %s: %w", root, err)
		}
		out = append(out, units...)
	}
	return out, nil
}

func (s *Scanner) scanRoot(root string) ([]Unit, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("accessing %s: %w", root, err)
	}
	base := strings.TrimSuffix(filepath.Base(root), s.cfg.ModuleExt)
	if info.IsDir() {
		return s.scanDir(root, base)
	}
	if s.excluded(root, info) {
		return nil, nil
	}
	return []Unit{{Path: root, QName: base, Kind: s.kindOf(root)}}, nil
}

// scanDir returns qname's own subtree in the required order: files
// before subdirectories, each sorted lexicographically by basename,
// the package initializer emitted last so it may reference its children
// for re-export purposes.
func (s *Scanner) scanDir(dir, qname string) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files, dirs []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			if s.skipDir(filepath.Join(dir, e.Name())) {
				continue
			}
			dirs = append(dirs, e)
			continue
		}
		files = append(files, e)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })

	var out []Unit
	var initUnit *Unit

	for _, f := range files {
		path := filepath.Join(dir, f.Name())
		info, err := f.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if s.excluded(path, info) {
			continue
		}
		name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if name == s.cfg.InitBasename {
			u := Unit{Path: path, QName: qname, Kind: KindPackageInit, IsPackage: true}
			initUnit = &u
			continue
		}
		out = append(out, Unit{Path: path, QName: joinQName(qname, name), Kind: s.kindOf(path)})
	}

	for _, d := range dirs {
		path := filepath.Join(dir, d.Name())
		sub, err := s.scanDir(path, joinQName(qname, d.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}

	if initUnit != nil {
		out = append(out, *initUnit)
	}

	return out, nil
}

func joinQName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func (s *Scanner) kindOf(path string) Kind {
	ext := filepath.Ext(path)
	for _, b := range s.cfg.BinaryExts {
		if ext == b {
			return KindBinary
		}
	}
	return KindModule
}

// excluded reports whether a file should be skipped: it fails gitignore,
// size, extension, or exclude-glob filtering.
func (s *Scanner) excluded(path string, info os.FileInfo) bool {
	if s.gitignore != nil {
		if rel, err := filepath.Rel(".", path); err == nil && s.gitignore.MatchesPath(rel) {
			return true
		}
	}
	if s.cfg.MaxBytes > 0 && info.Size() > s.cfg.MaxBytes {
		return true
	}

	ext := filepath.Ext(path)
	isSource := ext == s.cfg.ModuleExt
	isBinary := false
	for _, b := range s.cfg.BinaryExts {
		if ext == b {
			isBinary = true
			break
		}
	}
	if !isSource && !isBinary {
		return true
	}

	base := filepath.Base(path)
	for _, pattern := range s.cfg.ExcludeGlobs {
		if match, _ := filepath.Match(pattern, base); match {
			return true
		}
	}
	return false
}

// skipDir determines whether a directory should be pruned from the walk.
func (s *Scanner) skipDir(path string) bool {
	if s.gitignore != nil {
		if rel, err := filepath.Rel(".", path); err == nil && s.gitignore.MatchesPath(rel) {
			return true
		}
	}
	base := filepath.Base(path)
	switch base {
	case ".git", "vendor", "node_modules", "dist", "build", "__pycache__":
		return true
	}
	return strings.HasPrefix(base, ".")
}
