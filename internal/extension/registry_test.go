package extension

import (
	"testing"

	"github.com/oxhq/apidocs/internal/model"
)

type fakeProcessor struct {
	name     string
	priority int
	ran      *[]string
}

func (f *fakeProcessor) Name() string     { return f.name }
func (f *fakeProcessor) Priority() int    { return f.priority }
func (f *fakeProcessor) PostProcess(sys *model.System, sink *model.Sink) {
	*f.ran = append(*f.ran, f.name)
}

func TestOrderedPostProcessorsPriorityThenInsertion(t *testing.T) {
	reg := NewRegistry()
	var ran []string
	reg.RegisterPostProcessor(&fakeProcessor{name: "low", priority: 1, ran: &ran})
	reg.RegisterPostProcessor(&fakeProcessor{name: "high-a", priority: 10, ran: &ran})
	reg.RegisterPostProcessor(&fakeProcessor{name: "high-b", priority: 10, ran: &ran})

	reg.RunPostProcessors(model.NewSystem(), model.NewSink())

	want := []string{"high-a", "high-b", "low"}
	if len(ran) != len(want) {
		t.Fatalf("ran = %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Fatalf("ran = %v, want %v", ran, want)
		}
	}
}

func TestProtocolRecognizerTagsRuntimeCheckable(t *testing.T) {
	d := &model.Documentable{
		Kind: model.KindClass,
		Class: &model.ClassData{
			Decorators: []model.Decorator{{DottedName: "typing.runtime_checkable"}},
		},
	}
	p := NewProtocolRecognizer()
	p.VisitNode(&NodeContext{Current: d})
	if v, _ := d.ExtraInfo["interface"].(bool); !v {
		t.Fatalf("ExtraInfo[interface] = %v, want true", d.ExtraInfo["interface"])
	}
}

func TestDeprecationRecognizerSetsArgsSource(t *testing.T) {
	d := &model.Documentable{
		Kind: model.KindFunction,
		Func: &model.FuncData{
			Decorators: []model.Decorator{{DottedName: "deprecated.Deprecated", ArgsSource: `"use new_fn instead"`}},
		},
	}
	dr := NewDeprecationRecognizer()
	dr.VisitNode(&NodeContext{Current: d})
	if d.ExtraInfo["deprecated"] != `"use new_fn instead"` {
		t.Fatalf("ExtraInfo[deprecated] = %v, want the args source", d.ExtraInfo["deprecated"])
	}
}
