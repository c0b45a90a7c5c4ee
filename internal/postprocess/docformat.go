package postprocess

import (
	"sort"

	"github.com/oxhq/apidocs/internal/model"
)

// DocFormatProcessor implements §4.8's docformat inheritance: a
// Documentable's active docformat is its own module's declared_docformat,
// else inherited from the nearest enclosing package, else the system
// default — unless the system default is a "plain" mode, which overrides
// any explicit declaration (used for error-focused builds).
type DocFormatProcessor struct {
	Default   model.DocFormat
	PlainMode bool
}

func NewDocFormatProcessor(def model.DocFormat, plainMode bool) *DocFormatProcessor {
	return &DocFormatProcessor{Default: def, PlainMode: plainMode}
}

func (p *DocFormatProcessor) Name() string  { return "docformat-inherit" }
func (p *DocFormatProcessor) Priority() int { return 70 }

func (p *DocFormatProcessor) PostProcess(sys *model.System, sink *model.Sink) {
	var all []*model.Documentable
	for _, d := range sys.All() {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	for _, d := range all {
		d.DocFormat = p.activeFormat(sys, d)
	}
}

func (p *DocFormatProcessor) activeFormat(sys *model.System, d *model.Documentable) string {
	if p.PlainMode {
		return string(model.Plaintext)
	}
	if d.Module != nil && d.Module.DeclaredDocFormat != "" {
		return d.Module.DeclaredDocFormat
	}
	cur := d
	for cur.HasParent {
		parent := sys.Get(cur.ParentID)
		if parent == nil {
			break
		}
		if parent.Module != nil && parent.Module.DeclaredDocFormat != "" {
			return parent.Module.DeclaredDocFormat
		}
		cur = parent
	}
	return string(p.Default)
}
