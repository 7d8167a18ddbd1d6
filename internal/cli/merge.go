package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/semstore/internal/engine"
	"github.com/roach88/semstore/internal/rdf"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	EngineOptions
	Overwrite bool
	Lazy      bool
}

// MergeSummary is the payload reported for a committed merge.
type MergeSummary struct {
	Seq        int64             `json:"seq"`
	Graph      string            `json:"graph,omitempty"`
	Graphs     []string          `json:"graphs,omitempty"`
	Inserted   int               `json:"inserted"`
	Removed    int               `json:"removed"`
	Duplicates int               `json:"duplicates"`
	Created    []string          `json:"created,omitempty"`
	Superseded map[string]string `json:"superseded,omitempty"`
	Mappings   map[string]string `json:"mappings,omitempty"`
}

// RenderText writes the summary in human-readable form.
func (s MergeSummary) RenderText(w io.Writer) {
	if s.Graph == "" {
		fmt.Fprintf(w, "✓ Nothing new (%d duplicate statement(s))\n", s.Duplicates)
	} else {
		fmt.Fprintf(w, "✓ Merged into %s\n", s.Graph)
	}
	fmt.Fprintf(w, "  inserted: %d, removed: %d, duplicates: %d\n", s.Inserted, s.Removed, s.Duplicates)
	for _, c := range s.Created {
		fmt.Fprintf(w, "  created %s\n", c)
	}
	for _, old := range sortedKeys(s.Superseded) {
		fmt.Fprintf(w, "  superseded %s -> %s\n", old, s.Superseded[old])
	}
	for _, subj := range sortedKeys(s.Mappings) {
		fmt.Fprintf(w, "  %s => %s\n", subj, s.Mappings[subj])
	}
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <batch.yaml>",
		Short: "Identify and merge a batch into the store",
		Long: `Identify the resources of a batch against the store and merge the
batch into a new graph.

Resources that match a stored resource on their identifying properties are
merged into it; the rest are created. The batch is validated against the
ontology before anything is written.

Exit codes:
  0 - Batch merged
  1 - Batch rejected (cardinality, domain, range or identification errors)
  2 - Command error (unreadable batch, database not opened, etc.)

Example:
  semstore merge --db ./meta.db contacts.yaml
  semstore merge --db ./meta.db --ontology ./ontology --overwrite update.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.EngineOptions.bind(cmd)
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace single-valued properties instead of failing")
	cmd.Flags().BoolVar(&opts.Lazy, "lazy", false, "keep the newest values instead of failing on cardinality limits")

	return cmd
}

func runMerge(ctx context.Context, opts *MergeOptions, batchPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	sess, err := openSession(formatter, &opts.EngineOptions, batchPath, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	flags := sess.batch.Flags
	if opts.Overwrite {
		flags |= engine.OverwriteProperties
	}
	if opts.Lazy {
		flags |= engine.LazyCardinalities
	}

	res, err := sess.engine.Merge(ctx, sess.batch.Statements, sess.batch.Metadata, flags)
	if err != nil {
		return engineFailure(formatter, err)
	}
	return formatter.Success(summarizeMerge(res))
}

func summarizeMerge(res *engine.MergeResult) MergeSummary {
	s := MergeSummary{
		Seq:        res.Seq,
		Graph:      string(res.Graph),
		Inserted:   res.Inserted,
		Removed:    res.Removed,
		Duplicates: res.Duplicates,
		Created:    iriStrings(res.Created),
		Graphs:     iriStrings(res.Graphs),
	}
	if len(res.Superseded) > 0 {
		s.Superseded = make(map[string]string, len(res.Superseded))
		for old, graph := range res.Superseded {
			s.Superseded[string(old)] = string(graph)
		}
	}
	s.Mappings = mappingStrings(res.Mappings)
	return s
}

// nodeKey renders a batch subject: blank nodes as _:label, IRIs bare.
func nodeKey(n rdf.Node) string {
	if iri, ok := n.(rdf.IRI); ok {
		return string(iri)
	}
	return n.N3()
}

func mappingStrings(m map[rdf.Node]rdf.IRI) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for subj, iri := range m {
		out[nodeKey(subj)] = string(iri)
	}
	return out
}

func iriStrings(iris []rdf.IRI) []string {
	if len(iris) == 0 {
		return nil
	}
	out := make([]string, len(iris))
	for i, iri := range iris {
		out[i] = string(iri)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
