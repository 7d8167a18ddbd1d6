package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/semstore/internal/engine"
)

// IdentifyOptions holds flags for the identify command.
type IdentifyOptions struct {
	*RootOptions
	EngineOptions
}

// UnidentifiedSubject is a batch subject no stored resource was found for.
type UnidentifiedSubject struct {
	Subject string   `json:"subject"`
	Reason  string   `json:"reason"`
	Code    string   `json:"code,omitempty"`
	Matches []string `json:"candidates,omitempty"`
}

// IdentifySummary is the payload reported by the identify command.
type IdentifySummary struct {
	Mapped       map[string]string     `json:"mapped"`
	Unidentified []UnidentifiedSubject `json:"unidentified"`
}

// RenderText writes the summary in human-readable form.
func (s IdentifySummary) RenderText(w io.Writer) {
	fmt.Fprintf(w, "Identified %d subject(s), %d unidentified\n", len(s.Mapped), len(s.Unidentified))
	for _, subj := range sortedKeys(s.Mapped) {
		fmt.Fprintf(w, "  %s => %s\n", subj, s.Mapped[subj])
	}
	for _, u := range s.Unidentified {
		fmt.Fprintf(w, "  %s: %s\n", u.Subject, u.Reason)
		for _, c := range u.Matches {
			fmt.Fprintf(w, "    candidate %s\n", c)
		}
	}
}

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "identify <batch.yaml>",
		Short: "Match batch resources to stored resources without writing",
		Long: `Identify the resources of a batch against the store and report the
mapping. Nothing is written.

Subjects left unidentified are listed with the reason: no match, or
several equally good candidates.

Example:
  semstore identify --db ./meta.db contacts.yaml
  semstore identify --db ./meta.db --mode all --format json contacts.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.EngineOptions.bind(cmd)
	return cmd
}

func runIdentify(ctx context.Context, opts *IdentifyOptions, batchPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	sess, err := openSession(formatter, &opts.EngineOptions, batchPath, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	ident, err := sess.engine.IdentifyAll(ctx, sess.batch.Statements)
	if err != nil {
		return engineFailure(formatter, err)
	}

	summary := IdentifySummary{
		Mapped:       mappingStrings(ident.Mappings()),
		Unidentified: []UnidentifiedSubject{},
	}
	if summary.Mapped == nil {
		summary.Mapped = map[string]string{}
	}
	for _, subj := range ident.Unidentified() {
		u := UnidentifiedSubject{Subject: nodeKey(subj), Reason: engine.ErrNoMatch.Error()}
		if failure := ident.Failure(subj); failure != nil {
			u.Reason = failure.Error()
			var e *engine.Error
			if errors.As(failure, &e) {
				u.Code = string(e.Code)
				u.Reason = e.Message
				for _, v := range e.Values {
					u.Matches = append(u.Matches, nodeKey(v))
				}
			}
		}
		summary.Unidentified = append(summary.Unidentified, u)
	}
	formatter.VerboseLog("Identified %d of %d subject(s)", len(summary.Mapped), len(summary.Mapped)+len(summary.Unidentified))
	return formatter.Success(summary)
}
