package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/adt/internal/ir"
	"github.com/roach88/adt/internal/state"
)

// FingerprintOptions holds flags for the fingerprint command.
type FingerprintOptions struct {
	*RootOptions
	Canonical bool // also print the canonical snapshot text
}

// FingerprintResult is the output of the fingerprint command.
type FingerprintResult struct {
	Kind        string `json:"kind"`
	Fingerprint string `json:"fingerprint"`
	Canonical   string `json:"canonical,omitempty"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FingerprintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fingerprint <snapshot-file>",
		Short: "Print the content fingerprint of a snapshot",
		Long: `Print the SHA-256 fingerprint of a valid snapshot.

The snapshot is validated and rewritten as canonical JSON (sorted keys,
NFC strings, no insignificant whitespace) before hashing, so two files that
describe the same state share a fingerprint. The hash is domain separated
with "` + ir.DomainSnapshot + `".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "also print the canonical snapshot")

	return cmd
}

func runFingerprint(opts *FingerprintOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("failed to read snapshot: %v", err))
	}

	kind, obj, err := state.ValidateSnapshot(data)
	if err != nil {
		return formatter.SnapshotFailure("snapshot is not valid", err)
	}

	result, err := fingerprintOf(kind, obj, opts.Canonical)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "fingerprint failed", err)
	}
	formatter.VerboseLog("Fingerprinted %s snapshot from %s", kind, path)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Fingerprint)
	if result.Canonical != "" {
		fmt.Fprintln(formatter.Writer, result.Canonical)
	}
	return nil
}

func fingerprintOf(kind string, obj ir.IRObject, withCanonical bool) (FingerprintResult, error) {
	fp, err := ir.Fingerprint(obj)
	if err != nil {
		return FingerprintResult{}, err
	}
	result := FingerprintResult{Kind: kind, Fingerprint: fp}
	if withCanonical {
		canonical, err := ir.MarshalCanonical(obj)
		if err != nil {
			return FingerprintResult{}, err
		}
		result.Canonical = string(canonical)
	}
	return result, nil
}
