package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/adt/internal/schema"
	"github.com/roach88/adt/internal/state"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema bool // also run the CUE structural check
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Kind   string                  `json:"kind,omitempty"`
	Errors []state.ValidationError `json:"errors,omitempty"`
	Schema []schema.Violation      `json:"schema,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <snapshot-file>",
		Short: "Validate a container snapshot",
		Long: `Validate a serialized container snapshot.

The container kind is taken from the snapshot's "type" field. Every field
problem is reported, not just the first. With --schema the snapshot is also
checked against the CUE definition of its kind, which additionally rejects
unknown fields and counters above maxSize.

Exit codes:
  0 - Snapshot is valid
  1 - Snapshot is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Schema, "schema", false, "also check the CUE schema")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("failed to read snapshot: %v", err))
	}
	formatter.VerboseLog("Read %d byte(s) from %s", len(data), path)

	result, err := validateSnapshot(data, opts.Schema, formatter)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return formatter.SnapshotValid(result.Kind, result)
}

// validateSnapshot runs the state validator and, when asked, the schema
// check. The error is non-nil only when the schema cannot be used at all.
func validateSnapshot(data []byte, withSchema bool, formatter *OutputFormatter) (ValidationResult, error) {
	kind, _, err := state.ValidateSnapshot(data)
	result := ValidationResult{Valid: err == nil, Kind: kind}

	var se *state.SnapshotError
	switch {
	case err == nil:
	case errors.As(err, &se):
		result.Errors = se.Errors
	default:
		return result, err
	}
	formatter.VerboseLog("State validator: kind=%q errors=%d", kind, len(result.Errors))

	if !withSchema || kind == "" {
		return result, nil
	}

	checker, err := schema.New()
	if err != nil {
		return result, err
	}
	violations, err := checker.Check(kind, data)
	if err != nil {
		return result, err
	}
	formatter.VerboseLog("Schema check: violations=%d", len(violations))
	if len(violations) > 0 {
		result.Valid = false
		result.Schema = violations
	}
	return result, nil
}

// outputValidationErrors outputs every validator and schema problem.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	count := len(result.Errors) + len(result.Schema)
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))

	if formatter.Format == "json" {
		code, message := ErrCodeSchema, "schema check failed"
		if len(result.Errors) > 0 {
			code, message = result.Errors[0].Code, result.Errors[0].Message
		}
		if err := formatter.Report(code, message, result); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	formatter.Problems(result.Errors, result.Schema)
	return failure
}
