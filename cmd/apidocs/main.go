// Command apidocs is a reference driver for internal/pipeline: it turns
// CLI flags and .env-backed defaults into a config.Config, runs one
// build, and emits the dumped inventory or (under --json) the JSON object
// model. It
// exists purely to exercise the engine end-to-end; per spec.md §6 the
// engine itself exposes no CLI, so nothing here is load-bearing for
// internal/pipeline's own contract.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oxhq/apidocs/internal/config"
	"github.com/oxhq/apidocs/internal/emit"
	"github.com/oxhq/apidocs/internal/inventory"
	"github.com/oxhq/apidocs/internal/model"
	"github.com/oxhq/apidocs/internal/persist"
	"github.com/oxhq/apidocs/internal/pipeline"
)

func main() {
	root := &cobra.Command{
		Use:                   "apidocs [flags] <path1> <path2> ...",
		Short:                 "Static-analysis API documentation engine driver",
		DisableFlagParsing:    true, // flag handling is config.BuildConfigFromFlags's job
		DisableFlagsInUseLine: true,
		RunE:                  runBuild,
	}
	root.AddCommand(&cobra.Command{
		Use:   "inventory-diff <a.inv> <b.inv>",
		Short: "Diff two dumped inventories line-by-line",
		Args:  cobra.ExactArgs(2),
		RunE:  runInventoryDiff,
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.BuildConfigFromFlags(args)
	if err != nil {
		return err
	}
	if err := config.ValidatePaths(cfg); err != nil {
		config.PrintFatal(cfg, err)
		os.Exit(1)
	}

	res, err := pipeline.Build(context.Background(), pipeline.BuildInputs{Config: cfg})
	if err != nil {
		config.PrintFatal(cfg, err)
		os.Exit(1)
	}

	config.PrintWarnings(cfg, res.Warnings)

	if cfg.PersistDSN != "" {
		if err := persistSystem(cfg.PersistDSN, cfg.PersistTag, res.System); err != nil {
			return fmt.Errorf("persisting system: %w", err)
		}
	}

	var buf bytes.Buffer
	if cfg.JSONOutput {
		if err := dumpObjectModel(&buf, res.System); err != nil {
			return fmt.Errorf("encoding object model: %w", err)
		}
	} else {
		inv := inventory.BuildSystemInventory(res.System, "self", "apidocs", "", "")
		if err := inventory.Encode(&buf, inv); err != nil {
			return fmt.Errorf("encoding inventory: %w", err)
		}
	}

	if cfg.OutputFile != "" {
		if err := emit.WriteFile(cfg.OutputFile, buf.Bytes()); err != nil {
			return err
		}
	} else {
		os.Stdout.Write(buf.Bytes())
	}

	modules := 0
	for _, d := range res.System.All() {
		if d.Module != nil {
			modules++
		}
	}
	config.PrintSummary(cfg, modules, len(res.Warnings))

	if cfg.WarningsAsErrors && len(res.Warnings) > 0 {
		os.Exit(1)
	}
	return nil
}

// persistSystem opens dsn, migrates its schema if needed, and saves sys
// under tag, so a later run (or another tool) can reload the same build
// via persist.Load without re-scanning.
func persistSystem(dsn, tag string, sys *model.System) error {
	db, err := persist.Open(dsn)
	if err != nil {
		return err
	}
	if err := persist.Migrate(db); err != nil {
		return err
	}
	return persist.Save(db, tag, sys)
}

// dumpObjectModel writes every Documentable of sys as a JSON array,
// sorted by ID (allocation order) for deterministic output, satisfying
// spec.md §6's "serialized JSON object model suitable for lossless
// re-hydration" output.
func dumpObjectModel(w io.Writer, sys *model.System) error {
	all := sys.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(all)
}
