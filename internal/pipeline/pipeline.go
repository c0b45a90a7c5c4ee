// Package pipeline orchestrates one end-to-end build: scan source units,
// create the Documentable tree, run the AST builder and extension
// visitors over each module, then run post-processing (MRO, re-export
// relocation, privacy, docformat inheritance) over the finished System.
// It is the single place that owns the extension.Registry and wires the
// teacher's stage-pipeline idiom (core/pipeline.go's ordered-stage
// execution) onto the read-only analysis pass this engine runs instead.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oxhq/apidocs/internal/astbuild"
	"github.com/oxhq/apidocs/internal/config"
	"github.com/oxhq/apidocs/internal/extension"
	"github.com/oxhq/apidocs/internal/inventory"
	"github.com/oxhq/apidocs/internal/model"
	"github.com/oxhq/apidocs/internal/postprocess"
	"github.com/oxhq/apidocs/internal/resolver"
	"github.com/oxhq/apidocs/internal/scanner"
)

// BuildInputs collects everything a Build needs beyond the resolved
// Config: the Config itself plus any caller-supplied extension visitors
// on top of the built-in ones.
type BuildInputs struct {
	Config *config.Config

	// ExtraVisitors are registered after the built-in recognizers, in
	// the order given.
	ExtraVisitors []extension.NodeVisitor
}

// Result is the outcome of one Build: the finished, frozen System and
// every warning raised along the way.
type Result struct {
	System   *model.System
	Warnings []model.Warning
}

// Build runs scan -> tree construction -> AST fill -> post-processing in
// one pass and returns a frozen System (spec.md §3.7: read-only after a
// build completes).
func Build(ctx context.Context, in BuildInputs) (*Result, error) {
	cfg := in.Config
	sys := model.NewSystem()
	sink := model.NewSink()

	for _, src := range cfg.Inventories {
		inv, err := loadInventory(src)
		if err != nil {
			sink.Warn(model.Warning{Kind: model.WarnSkippedPath, Location: model.Location{File: src.Path}, Message: fmt.Sprintf("loading inventory %s: %v", src.Name, err)})
			continue
		}
		sys.Inventories().Register(inv)
	}
	for _, r := range cfg.PrivacyRules {
		sys.AddPrivacyRule(r.Pattern, r.Privacy)
	}

	reg := extension.NewRegistry()
	reg.RegisterVisitor(extension.NewProtocolRecognizer())
	reg.RegisterVisitor(extension.NewDeprecationRecognizer())
	for _, v := range in.ExtraVisitors {
		reg.RegisterVisitor(v)
	}
	for _, name := range reg.Names() {
		sys.RecordExtension(name)
	}

	res := resolver.New(sys)
	reg.RegisterPostProcessor(postprocess.NewMROProcessor(res))
	reg.RegisterPostProcessor(postprocess.NewReexportProcessor(res))
	reg.RegisterPostProcessor(postprocess.NewPrivacyProcessor())
	reg.RegisterPostProcessor(postprocess.NewDocFormatProcessor(cfg.DefaultDocFormat, cfg.PlainMode))

	units, err := scan(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: scanning: %w", err)
	}

	opts := astbuild.DefaultOptions()
	opts.ConditionalOverrides = cfg.ConditionalOverrides
	builder := astbuild.NewBuilder(reg, opts)

	shells := map[string]*model.Documentable{}
	runner := config.ResolveIntrospectionRunner(cfg)

	for _, u := range units {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		mod := ensureShell(sys, shells, u.QName)
		if u.Kind == scanner.KindPackageInit {
			mod.Module.IsPackage = true
			mod.Kind = model.KindPackage
		}

		switch u.Kind {
		case scanner.KindBinary:
			if err := builder.IntrospectBinary(sys, sink, mod, u.Path, runner); err != nil {
				sink.Warn(model.Warning{Kind: model.WarnIntrospectionFailure, Location: model.Location{File: u.Path}, Message: err.Error()})
			}
		default:
			source, err := os.ReadFile(u.Path)
			if err != nil {
				sink.Warn(model.Warning{Kind: model.WarnSkippedPath, Location: model.Location{File: u.Path}, Message: err.Error()})
				continue
			}
			if err := builder.FillModule(sys, sink, mod, u.Path, source); err != nil {
				sink.Warn(model.Warning{Kind: model.WarnParseFailure, Location: model.Location{File: u.Path}, Message: err.Error()})
			}
		}
	}

	reg.RunPostProcessors(sys, sink)
	sys.Freeze()

	return &Result{System: sys, Warnings: sink.Warnings()}, nil
}

func scan(ctx context.Context, cfg *config.Config) ([]scanner.Unit, error) {
	sc := scanner.New(scanner.Config{
		Roots:        cfg.Paths,
		ModuleExt:    ".py",
		BinaryExts:   []string{".so", ".pyd", ".dll"},
		InitBasename: "__init__",
		MaxBytes:     cfg.MaxBytes,
		NoGitignore:  cfg.NoGitignore,
		ExcludeGlobs: cfg.ExcludeGlobs,
	})
	return sc.Scan(ctx)
}

// ensureShell returns the Documentable for qname, creating it (and, as a
// side effect, every not-yet-seen ancestor package shell) on first
// reference. The scanner always emits a directory's own files and all of
// its subdirectories' full subtrees before that directory's own
// package-init unit, so by the time any unit under a package is
// processed, an (unfilled) shell for that package already exists or is
// created here on demand — no separate "create every shell first" pass
// is needed.
func ensureShell(sys *model.System, shells map[string]*model.Documentable, qname string) *model.Documentable {
	if d, ok := shells[qname]; ok {
		return d
	}

	segs := model.SplitQName(qname)
	name := segs[len(segs)-1]

	var parent *model.Documentable
	if len(segs) > 1 {
		parentQName := qname[:len(qname)-len(name)-1]
		parent = ensureShell(sys, shells, parentQName)
	}

	d := &model.Documentable{
		ID:     sys.AllocID(),
		Name:   name,
		Kind:   model.KindModule,
		FQName: qname,
		Module: &model.ModuleData{},
	}
	if parent != nil {
		d.ParentID = parent.ID
		d.HasParent = true
		parent.ChildrenIDs = append(parent.ChildrenIDs, d.ID)
		parent.Module.SubmoduleIDs = append(parent.Module.SubmoduleIDs, d.ID)
		// Any qname that owns a child is, by construction, a directory
		// package -- even a namespace package with no __init__ file of
		// its own ever reaching KindPackageInit below.
		parent.Module.IsPackage = true
		parent.Kind = model.KindPackage
	} else {
		sys.AddRoot(d.ID)
	}
	_ = sys.Add(d)
	shells[qname] = d
	return d
}

func loadInventory(src config.InventorySource) (*inventory.Inventory, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("empty inventory path for %s", src.Name)
	}
	f, err := os.Open(filepath.Clean(src.Path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inv, err := inventory.Decode(f)
	if err != nil {
		return nil, err
	}
	inv.Name = src.Name
	if src.BaseURL != "" {
		inv.BaseURL = src.BaseURL
	}
	return inv, nil
}
