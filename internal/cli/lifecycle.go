package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgrid/internal/history"
	"github.com/roach88/bomgrid/internal/lifecycle"
)

// LifecycleOptions holds flags for the lifecycle command.
type LifecycleOptions struct {
	*RootOptions
	From             string
	To               string
	Actor            string
	AuthorizationRef string
	Policy           string
	Database         string

	// Tokens allows overriding the record id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens lifecycle.TokenGenerator
}

// LifecycleReport is the JSON payload of a lifecycle invocation.
type LifecycleReport struct {
	Result lifecycle.Result  `json:"result"`
	Record *lifecycle.Record `json:"record,omitempty"`
}

// NewLifecycleCommand creates the lifecycle command.
func NewLifecycleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LifecycleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lifecycle <part-id>",
		Short: "Validate and commit a lifecycle transition",
		Long: `Validate a lifecycle transition for a part against the policy's
forward table and commit it. Moves outside the forward table are
deviations and require an authorization reference.

When --db names a history database and --from is omitted, the current
state is read from the part's committed transition history.

Example:
  bomgrid lifecycle P-100 --from DRAFT --to ACTIVE --actor jdoe
  bomgrid lifecycle P-100 --to DRAFT --actor jdoe --auth CR-2041 --db ./history.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "current lifecycle state (blank assigns an initial state)")
	cmd.Flags().StringVar(&opts.To, "to", "", "requested lifecycle state (required)")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "who requests the transition (required)")
	cmd.Flags().StringVar(&opts.AuthorizationRef, "auth", "", "authorization reference for deviation transitions")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "path to a lifecycle policy directory (defaults to the built-in policy)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the committed transition to this history database")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}

func runLifecycle(opts *LifecycleOptions, partID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	policy, err := LoadPolicy(opts.Policy)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	var store *history.Store
	if opts.Database != "" {
		store, err = history.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open history database", err)
		}
		defer store.Close()
	}

	ctx := context.Background()
	from := opts.From
	if from == "" && store != nil {
		from, err = store.CurrentState(ctx, partID)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read current state", err)
		}
		formatter.VerboseLog("Current state of %s: %q", partID, from)
	}

	governor := lifecycle.NewGovernor(policy, opts.Tokens, nil)
	if store != nil {
		seq, err := store.MaxSeq(ctx, partID)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read sequence", err)
		}
		governor.ResumeAt(seq)
	}

	record, result := governor.Commit(lifecycle.Transition{
		PartID:           partID,
		From:             from,
		To:               opts.To,
		Actor:            opts.Actor,
		AuthorizationRef: opts.AuthorizationRef,
	})

	if record != nil && store != nil {
		if err := store.WriteTransition(ctx, record); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to persist transition", err)
		}
		formatter.VerboseLog("Persisted transition %s", record.ID)
	}

	report := LifecycleReport{Result: result, Record: record}
	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		renderLifecycleText(formatter, partID, report)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, result.Message)
	}
	return nil
}

func renderLifecycleText(formatter *OutputFormatter, partID string, report LifecycleReport) {
	switch {
	case !report.Result.Valid:
		fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", partID, report.Result.Message)
	case report.Result.NoOp:
		fmt.Fprintf(formatter.Writer, "✓ %s: %s\n", partID, report.Result.Message)
	default:
		fmt.Fprintf(formatter.Writer, "✓ %s: %s [%s]\n", partID, report.Result.Message, report.Result.Kind)
		if report.Record != nil && report.Record.AuthorizationRef != "" {
			fmt.Fprintf(formatter.Writer, "  authorized by %s\n", report.Record.AuthorizationRef)
		}
	}
}
