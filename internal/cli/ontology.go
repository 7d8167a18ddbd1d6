package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/semstore/internal/ontology"
)

// OntologyCheckResult holds the result of checking an ontology directory.
type OntologyCheckResult struct {
	Valid      bool                       `json:"valid"`
	Classes    int                        `json:"classes"`
	Properties int                        `json:"properties"`
	Errors     []ontology.ValidationError `json:"errors,omitempty"`
}

// RenderText writes the check result in human-readable form.
func (r OntologyCheckResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "✓ Ontology valid (%d classes, %d properties)\n", r.Classes, r.Properties)
}

// NewOntologyCommand creates the ontology command group.
func NewOntologyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ontology",
		Short: "Inspect ontology definitions",
	}
	cmd.AddCommand(newOntologyCheckCommand(rootOpts))
	return cmd
}

func newOntologyCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <ontology-dir>",
		Short: "Load and validate CUE ontology files",
		Long: `Load every CUE file in a directory on top of the built-in vocabulary and
check the result for undeclared parents, domains and ranges, hierarchy
cycles and misplaced identifying flags.

Example:
  semstore ontology check ./ontology`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOntologyCheck(rootOpts, args[0], cmd)
		},
	}
}

func runOntologyCheck(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	schema, err := ontology.LoadDir(dir)
	if err != nil {
		code := ErrCodeOntology
		var loadErr *ontology.LoadError
		if errors.As(err, &loadErr) {
			code = loadErr.Code
		}
		return formatter.Fail(ExitCommandError, code, err.Error(), nil)
	}

	result := OntologyCheckResult{
		Classes:    len(schema.Classes()),
		Properties: len(schema.Properties()),
		Errors:     ontology.Validate(schema),
	}
	result.Valid = len(result.Errors) == 0
	formatter.VerboseLog("Loaded %d classes and %d properties from %s", result.Classes, result.Properties, dir)

	if !result.Valid {
		if opts.Format != "json" {
			for _, e := range result.Errors {
				fmt.Fprintf(formatter.Writer, "✗ %s\n", e.Error())
			}
		}
		return formatter.Fail(ExitFailure, ErrCodeOntologyBad,
			fmt.Sprintf("%d ontology problem(s)", len(result.Errors)), result.Errors)
	}
	return formatter.Success(result)
}
