package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/store"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Database string
	Graph    string
}

// QuadView is one stored statement in N3 term encoding.
type QuadView struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Graph     string `json:"graph"`
}

// DumpResult is the payload reported by the dump command.
type DumpResult struct {
	Statements []QuadView `json:"statements"`
	Count      int        `json:"count"`
}

// RenderText writes one N-Quads line per statement.
func (d DumpResult) RenderText(w io.Writer) {
	for _, q := range d.Statements {
		fmt.Fprintf(w, "%s %s %s %s .\n", q.Subject, q.Predicate, q.Object, q.Graph)
	}
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print stored statements",
		Long: `Print the statements of the store in insertion order, optionally
restricted to one graph. Text output is N-Quads.

Example:
  semstore dump --db ./meta.db
  semstore dump --db ./meta.db --graph '<nepomuk:/ctx/0192...>' --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Graph, "graph", "", "only print statements of this graph")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDump(ctx context.Context, opts *DumpOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	// Accept the graph bare or in angle brackets, as dump prints it.
	graph := rdf.IRI(strings.TrimSuffix(strings.TrimPrefix(opts.Graph, "<"), ">"))

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	stmts, err := st.Statements(ctx, graph)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	formatter.VerboseLog("Read %d statement(s)", len(stmts))

	result := DumpResult{Statements: make([]QuadView, len(stmts)), Count: len(stmts)}
	for i, s := range stmts {
		result.Statements[i] = QuadView{
			Subject:   s.Subject.N3(),
			Predicate: s.Predicate.N3(),
			Object:    s.Object.N3(),
			Graph:     s.Graph.N3(),
		}
	}
	return formatter.Success(result)
}
