package config

import (
	"testing"

	"github.com/oxhq/apidocs/internal/model"
)

func TestPrintWarningsFiltersVerbose(t *testing.T) {
	cfg := &Config{Verbose: false}
	warnings := []model.Warning{
		{Kind: model.WarnUnresolvedName, Message: "visible"},
		{Kind: model.WarnAmbiguousAnnotation, Message: "hidden", Verbose: true},
	}
	// PrintWarnings writes to stderr; this test only confirms it doesn't
	// panic on a mixed verbose/non-verbose warning set under both modes.
	PrintWarnings(cfg, warnings)

	cfg.Verbose = true
	PrintWarnings(cfg, warnings)

	cfg.JSONOutput = true
	PrintWarnings(cfg, warnings)
}

func TestPrintFatalJSONMode(t *testing.T) {
	cfg := &Config{JSONOutput: true}
	PrintFatal(cfg, errTest{})
}

func TestPrintSummarySkipsUnderJSON(t *testing.T) {
	cfg := &Config{JSONOutput: true}
	PrintSummary(cfg, 3, 1)
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
