package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgrid/internal/bom"
	"github.com/roach88/bomgrid/internal/diff"
	"github.com/roach88/bomgrid/internal/history"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Under    string
	Database string

	// Tokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens diff.TokenGenerator
}

// DiffReport is the JSON payload of a diff invocation.
type DiffReport struct {
	RunToken     string              `json:"run_token"`
	Changes      []diff.ChangeRecord `json:"changes"`
	DirectKeys   []string            `json:"direct_keys"`
	ImpactedKeys []string            `json:"impacted_keys"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <old-workbook.yaml> <new-workbook.yaml>",
		Short: "Compare two BOM revisions",
		Long: `Compare two revisions of a BOM workbook and report additions,
removals, and per-field modifications, keyed by assembly location.
Ancestors of every change are marked impacted.

Example:
  bomgrid diff ./rev-a.yaml ./rev-b.yaml
  bomgrid diff ./rev-a.yaml ./rev-b.yaml --under PCB-100
  bomgrid diff ./rev-a.yaml ./rev-b.yaml --db ./history.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Under, "under", "", "compare only the subtree rooted at this part id")
	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the change set to this history database")

	return cmd
}

func runDiff(opts *DiffOptions, oldPath, newPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	oldGrid, oldColumns, err := LoadWorkbook(oldPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	newGrid, newColumns, err := LoadWorkbook(newPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	// Each side is parsed with its own column binding, so two revisions
	// may lay out their columns differently and still diff correctly.
	for col, idx := range newColumns {
		if oldIdx, ok := oldColumns[col]; ok && oldIdx != idx {
			formatter.VerboseLog("column %q bound to index %d (old) and %d (new)", col, oldIdx, idx)
		}
	}

	oldTree, err := buildDiffSide("old", oldGrid, oldColumns, opts.Under)
	if err != nil {
		return outputStructuralError(formatter, err)
	}
	newTree, err := buildDiffSide("new", newGrid, newColumns, opts.Under)
	if err != nil {
		return outputStructuralError(formatter, err)
	}
	cs := diff.New(opts.Tokens).Diff(oldTree, newTree)

	if opts.Database != "" {
		if err := persistChangeSet(opts.Database, cs); err != nil {
			return WrapExitError(ExitCommandError, "failed to persist change set", err)
		}
		formatter.VerboseLog("Persisted %d change(s) under run token %s", len(cs.Changes), cs.RunToken)
	}

	if formatter.Format == "json" {
		return formatter.Success(DiffReport{
			RunToken:     cs.RunToken,
			Changes:      cs.Changes,
			DirectKeys:   cs.SortedDirect(),
			ImpactedKeys: cs.SortedImpacted(),
		})
	}

	renderDiffText(formatter, cs)
	return nil
}

func buildDiffSide(side string, grid bom.Grid, columns bom.ColumnMap, under string) (*bom.Tree, error) {
	var tree *bom.Tree
	var err error
	if under != "" {
		tree, err = bom.Subtree(grid, columns, under, bom.BuildOptions{})
	} else {
		tree, err = bom.Build(grid, columns, bom.BuildOptions{})
	}
	if err != nil {
		return nil, &diff.DiffError{Side: side, Err: err}
	}
	return tree, nil
}

func persistChangeSet(path string, cs *diff.ChangeSet) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.WriteChangeSet(context.Background(), cs, time.Now())
}

func renderDiffText(formatter *OutputFormatter, cs *diff.ChangeSet) {
	if cs.Empty() {
		fmt.Fprintln(formatter.Writer, "No differences")
		return
	}

	for _, rec := range cs.Changes {
		fmt.Fprintf(formatter.Writer, "%-8s  %s\n", rec.Kind, rec.Detail)
	}
	fmt.Fprintln(formatter.Writer)

	if impacted := cs.SortedImpacted(); len(impacted) > 0 {
		fmt.Fprintln(formatter.Writer, "Impacted assemblies:")
		for _, key := range impacted {
			fmt.Fprintf(formatter.Writer, "  %s\n", key)
		}
	}
	fmt.Fprintf(formatter.Writer, "%d change(s), run %s\n", len(cs.Changes), cs.RunToken)
}
