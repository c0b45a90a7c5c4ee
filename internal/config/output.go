package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oxhq/apidocs/internal/model"
)

// PrintWarnings writes the warning sink to stderr (or as a JSON array to
// stdout under JSON mode), filtering out Verbose-only warnings unless
// cfg.Verbose is set — matching the teacher's own PrintResultCLI's
// cfg.Verbose-gated detail branch.
func PrintWarnings(cfg *Config, warnings []model.Warning) {
	visible := make([]model.Warning, 0, len(warnings))
	for _, w := range warnings {
		if w.Verbose && !cfg.Verbose {
			continue
		}
		visible = append(visible, w)
	}

	if cfg.JSONOutput {
		data, err := json.Marshal(visible)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error marshaling warnings: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	for _, w := range visible {
		fmt.Fprintln(os.Stderr, w.String())
	}
}

// PrintFatal writes a fatal driver error, as JSON under JSON mode.
func PrintFatal(cfg *Config, err error) {
	if cfg != nil && cfg.JSONOutput {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Println(string(data))
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

// PrintSummary writes a one-line module/warning count summary to stderr,
// skipped entirely in JSON mode (the object model and warnings ARE the
// output there) — mirroring the teacher's PrintSummary gating its writer
// summary on !cfg.JSONOutput.
func PrintSummary(cfg *Config, moduleCount, warningCount int) {
	if cfg.JSONOutput {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%d modules documented, %d warnings\n", moduleCount, warningCount)
}
