package astbuild

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/oxhq/apidocs/internal/model"
)

// introspectTimeout bounds the introspection subprocess per §4.2.2: a
// misbehaving or hanging extension module must not stall the whole run.
const introspectTimeout = 30 * time.Second

// IntrospectBinary builds a placeholder Module for a compiled extension
// module (scanner.KindBinary) by shelling out to a small runner script
// that imports the module and prints one `name(args) -- description`
// line per top-level callable, the same fallback signature convention
// CPython's own builtins expose. Any failure — missing interpreter,
// import error, timeout — produces a WarnIntrospectionFailure and an
// otherwise-empty Module, never a fatal error (§7).
func (b *Builder) IntrospectBinary(sys *model.System, sink *model.Sink, mod *model.Documentable, path string, runner string) error {
	mod.Module.IsBinary = true

	ctx, cancel := context.WithTimeout(context.Background(), introspectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, runner, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		sink.Warn(model.Warning{
			Kind:     model.WarnIntrospectionFailure,
			Message:  "introspection of " + path + " failed: " + firstLine(stderr.String(), err),
			Location: model.Location{File: path},
		})
		return nil
	}

	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		b.handleIntrospectedLine(sys, sink, mod, path, scanner.Text())
	}
	return nil
}

func firstLine(s string, err error) string {
	if s == "" {
		return err.Error()
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// handleIntrospectedLine parses one `name(args) -- description` record,
// the fallback signature form CPython attaches to C-implemented
// callables, and creates a Function Documentable with a best-effort
// signature string (not individually typed parameters — introspection
// gives no annotation information).
func (b *Builder) handleIntrospectedLine(sys *model.System, sink *model.Sink, mod *model.Documentable, path, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	name, sig, doc := parseIntrospectedSignature(line)
	if name == "" {
		return
	}
	d := &model.Documentable{
		ID:        sys.AllocID(),
		Name:      name,
		Kind:      model.KindFunction,
		ParentID:  mod.ID,
		HasParent: true,
		FQName:    model.ChildQName(mod.FQName, name),
		Loc:       model.Location{File: path},
	}
	d.Func = &model.FuncData{}
	if sig != "" {
		d.Func.Signature = []model.Parameter{{Name: sig}}
	}
	if doc != "" {
		d.Doc = &model.Docstring{Text: doc}
	}
	mod.ChildrenIDs = append(mod.ChildrenIDs, d.ID)
	if err := sys.Add(d); err != nil {
		sink.Warn(model.Warning{Kind: model.WarnDuplicateReExport, Message: err.Error(), Location: d.Loc})
	}
}

// parseIntrospectedSignature splits "name(args) -- description" into its
// three parts; any piece not present in the line is returned empty.
func parseIntrospectedSignature(line string) (name, args, doc string) {
	rest := line
	if idx := strings.Index(rest, " -- "); idx >= 0 {
		doc = strings.TrimSpace(rest[idx+4:])
		rest = rest[:idx]
	}
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return strings.TrimSpace(rest), "", doc
	}
	name = strings.TrimSpace(rest[:open])
	closeIdx := strings.LastIndexByte(rest, ')')
	if closeIdx > open {
		args = strings.TrimSpace(rest[open+1 : closeIdx])
	}
	return name, args, doc
}
