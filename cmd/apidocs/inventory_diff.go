package main

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/apidocs/internal/inventory"
)

// runInventoryDiff decodes two inventory files and prints a unified diff
// of their entries, used by operators chasing down a non-deterministic
// build (spec.md §8's round-trip/determinism tests compare two dumps of
// the same input the same way).
func runInventoryDiff(cmd *cobra.Command, args []string) error {
	a, err := readInventory(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	b, err := readInventory(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}

	diff := difflib.UnifiedDiff{
		A:        inventory.FormatLines(a),
		B:        inventory.FormatLines(b),
		FromFile: args[0],
		ToFile:   args[1],
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("building diff: %w", err)
	}
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no differences")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func readInventory(path string) (*inventory.Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return inventory.Decode(f)
}
