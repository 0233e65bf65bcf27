package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgrid/internal/bom"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Under            string
	RequireLifecycle bool
}

// TreeReport is the JSON payload of a build invocation.
type TreeReport struct {
	Nodes     []NodeReport `json:"nodes"`
	BlankRows []int        `json:"blank_rows,omitempty"`
}

// NodeReport is one tree node, flattened for output.
type NodeReport struct {
	Key       string              `json:"key"`
	ParentKey string              `json:"parent_key"`
	PartID    string              `json:"part_id"`
	Depth     int                 `json:"depth"`
	Row       int                 `json:"row"`
	Status    string              `json:"status,omitempty"`
	Attrs     bom.Attributes      `json:"attributes"`
	Sourcing  []bom.SourcingEntry `json:"sourcing,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <workbook.yaml>",
		Short: "Build a location-keyed tree from a BOM workbook",
		Long: `Build a location-keyed assembly tree from an indented BOM workbook.

The workbook is a YAML file with a columns map (logical name to cell
index) and ordered rows of raw cells. Each node's key is the part-id
path from the root, so reused parts stay distinct per location.

Example:
  bomgrid build ./board.yaml
  bomgrid build ./board.yaml --under PCB-100 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Under, "under", "", "build only the subtree rooted at this part id")
	cmd.Flags().BoolVar(&opts.RequireLifecycle, "require-lifecycle", false, "fail when the lifecycle column is unbound")

	return cmd
}

func runBuild(opts *BuildOptions, workbookPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	grid, columns, err := LoadWorkbook(workbookPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d row(s) from %s", len(grid), workbookPath)

	buildOpts := bom.BuildOptions{RequireLifecycle: opts.RequireLifecycle}
	var tree *bom.Tree
	if opts.Under != "" {
		tree, err = bom.Subtree(grid, columns, opts.Under, buildOpts)
	} else {
		tree, err = bom.Build(grid, columns, buildOpts)
	}
	if err != nil {
		return outputStructuralError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(treeReport(tree))
	}

	renderTreeText(formatter, tree)
	return nil
}

func treeReport(tree *bom.Tree) TreeReport {
	report := TreeReport{Nodes: []NodeReport{}}
	for _, key := range tree.Keys() {
		node, _ := tree.Get(key)
		report.Nodes = append(report.Nodes, NodeReport{
			Key:       node.Key,
			ParentKey: node.ParentKey,
			PartID:    node.PartID,
			Depth:     node.Depth,
			Row:       node.Row,
			Status:    node.StatusTag,
			Attrs:     node.Attrs,
			Sourcing:  node.Sourcing,
		})
	}
	for _, blank := range tree.BlankRows() {
		report.BlankRows = append(report.BlankRows, blank.Row)
	}
	return report
}

func renderTreeText(formatter *OutputFormatter, tree *bom.Tree) {
	for _, key := range tree.Keys() {
		node, _ := tree.Get(key)
		indent := strings.Repeat("  ", strings.Count(key, bom.Separator))
		line := fmt.Sprintf("%s%s", indent, node.PartID)
		if node.Attrs.Quantity != "" {
			line += fmt.Sprintf("  x%s", node.Attrs.Quantity)
		}
		if node.Attrs.Revision != "" {
			line += fmt.Sprintf("  rev %s", node.Attrs.Revision)
		}
		if node.Attrs.Lifecycle != "" {
			line += fmt.Sprintf("  [%s]", node.Attrs.Lifecycle)
		}
		fmt.Fprintln(formatter.Writer, line)
		for _, src := range node.Sourcing {
			fmt.Fprintf(formatter.Writer, "%s    mfr: %s %s\n", indent, src.Manufacturer, src.ManufacturerPN)
		}
	}
	fmt.Fprintf(formatter.Writer, "%d node(s)\n", tree.Len())
}

// outputLoadError renders a loader failure and maps it to exit code 2.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load inputs", err)
}

// outputStructuralError renders a build failure and maps it to exit code 1.
func outputStructuralError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var se *bom.StructuralError
	if errors.As(err, &se) {
		code = se.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitFailure, "build failed", err)
}
