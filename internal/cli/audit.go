package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgrid/internal/audit"
	"github.com/roach88/bomgrid/internal/bom"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Parts           string
	Sourcing        string
	Policy          string
	PendingStatuses []string
}

// AuditReport is the JSON payload of an audit invocation.
type AuditReport struct {
	Findings []audit.Finding `json:"findings"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit <workbook.yaml>",
		Short: "Run integrity checks over a BOM workbook",
		Long: `Run the integrity checks over a BOM workbook: orphaned parts,
missing sourcing, level gaps, structural mismatches between reused
assemblies, lifecycle risks, circular references, blank identifiers,
and sourcing shortfalls.

Exits 1 when any ERROR-severity finding is present.

Example:
  bomgrid audit ./board.yaml --parts ./parts.yaml --sourcing ./amls.yaml
  bomgrid audit ./board.yaml --policy ./policy --pending NEW`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Parts, "parts", "", "path to the part dictionary YAML")
	cmd.Flags().StringVar(&opts.Sourcing, "sourcing", "", "path to the sourcing dictionary YAML")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "path to a lifecycle policy directory (defaults to the built-in policy)")
	cmd.Flags().StringSliceVar(&opts.PendingStatuses, "pending", []string{"NEW"}, "status tags exempt from the orphan check")

	return cmd
}

func runAudit(opts *AuditOptions, workbookPath string, cmd *cobra.Command) error {
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
	parts, err := LoadParts(opts.Parts)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	sourcing, err := LoadSourcing(opts.Sourcing)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	policy, err := LoadPolicy(opts.Policy)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	tree, err := bom.Build(grid, columns, bom.BuildOptions{})
	if err != nil {
		return outputStructuralError(formatter, err)
	}
	formatter.VerboseLog("Built %d node(s) from %s", tree.Len(), workbookPath)

	pending := make(map[string]bool, len(opts.PendingStatuses))
	for _, tag := range opts.PendingStatuses {
		pending[tag] = true
	}

	findings := audit.Audit(tree, parts, sourcing, audit.Options{
		NonProductionStates: policy.NonProductionSet(),
		PendingStatuses:     pending,
	})

	counts := audit.CountBySeverity(findings)
	report := AuditReport{
		Findings: findings,
		Errors:   counts[audit.SeverityError],
		Warnings: counts[audit.SeverityWarning],
	}
	if report.Findings == nil {
		report.Findings = []audit.Finding{}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		renderAuditText(formatter, report)
	}

	if audit.HasErrors(findings) {
		return NewExitError(ExitFailure, fmt.Sprintf("audit found %d error(s)", report.Errors))
	}
	return nil
}

func renderAuditText(formatter *OutputFormatter, report AuditReport) {
	if len(report.Findings) == 0 {
		fmt.Fprintln(formatter.Writer, "✓ No findings")
		return
	}

	for _, f := range report.Findings {
		fmt.Fprintln(formatter.Writer, f.String())
		for _, loc := range f.Locations {
			fmt.Fprintf(formatter.Writer, "    at %s\n", loc)
		}
	}
	fmt.Fprintf(formatter.Writer, "%d error(s), %d warning(s)\n", report.Errors, report.Warnings)
}
