package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/semstore/internal/engine"
	"github.com/roach88/semstore/internal/harness"
	"github.com/roach88/semstore/internal/ontology"
	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/store"
)

// Error codes for CLI failures that do not come from the engine.
const (
	ErrCodeGeneric      = "E001" // Generic error
	ErrCodeOntology     = "E002" // Ontology failed to load
	ErrCodeInvalidBatch = "E003" // Batch file unreadable or malformed
	ErrCodeStore        = "E004" // Database could not be opened or read
	ErrCodeInvalidMode  = "E005" // Unknown identification mode
	ErrCodeOntologyBad  = "E006" // Ontology loaded but failed validation
)

// EngineOptions holds the flags shared by commands that open an engine.
type EngineOptions struct {
	Database     string
	OntologyDir  string
	App          string
	Mode         string
	PreferOldest bool
}

func (o *EngineOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&o.OntologyDir, "ontology", "", "directory of CUE ontology files (default: built-in vocabulary)")
	cmd.Flags().StringVar(&o.App, "app", engine.DefaultApplication, "application recorded as graph maintainer")
	cmd.Flags().StringVar(&o.Mode, "mode", "new", "identification mode (new|all|none)")
	cmd.Flags().BoolVar(&o.PreferOldest, "prefer-oldest", false, "resolve ambiguous matches to the oldest resource")
	_ = cmd.MarkFlagRequired("db")
}

// session is an open store with an engine over it.
type session struct {
	store  *store.Store
	engine *engine.Engine
	batch  *harness.Decoded
}

func (s *session) Close() {
	s.engine.Close()
	_ = s.store.Close()
}

// openSession loads the batch and ontology, then opens the store and an
// engine over it. Failures are reported through f.
func openSession(f *OutputFormatter, o *EngineOptions, batchPath string, logger *slog.Logger) (*session, error) {
	mode, err := engine.ParseMode(o.Mode)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeInvalidMode, err.Error(), nil)
	}

	b, err := harness.LoadBatch(batchPath)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeInvalidBatch, err.Error(), nil)
	}
	decoded, err := b.Decode(rdf.DefaultNamespaces(), nil)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeInvalidBatch, fmt.Sprintf("invalid batch %s: %v", batchPath, err), nil)
	}
	f.VerboseLog("Decoded %d statement(s) from %s", len(decoded.Statements), batchPath)

	tree, err := loadOntology(o.OntologyDir)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeOntology, err.Error(), nil)
	}

	logger.Debug("opening database", "path", o.Database)
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
	}

	engOpts := []engine.Option{
		engine.WithMode(mode),
		engine.WithApplication(o.App),
		engine.WithLogger(logger),
	}
	if o.PreferOldest {
		engOpts = append(engOpts, engine.WithDuplicateMatcher(engine.PreferOldest))
	}
	return &session{
		store:  st,
		engine: engine.New(st, tree, nil, engOpts...),
		batch:  decoded,
	}, nil
}

// loadOntology loads dir on top of the core vocabulary, or returns the core
// vocabulary alone when dir is empty.
func loadOntology(dir string) (*ontology.Schema, error) {
	if dir == "" {
		return ontology.Default(), nil
	}
	return ontology.LoadDir(dir)
}

// engineFailure reports an engine error with its code and location.
func engineFailure(f *OutputFormatter, err error) error {
	var e *engine.Error
	if !errors.As(err, &e) {
		return f.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	details := map[string]any{}
	if e.Subject != nil {
		details["subject"] = e.Subject.N3()
	}
	if e.Predicate != "" {
		details["predicate"] = e.Predicate.N3()
	}
	if len(e.Values) > 0 {
		values := make([]string, len(e.Values))
		for i, v := range e.Values {
			values[i] = v.N3()
		}
		details["values"] = values
	}
	for k, v := range e.Details {
		details[k] = v
	}
	var d any
	if len(details) > 0 {
		d = details
	}

	exit := ExitFailure
	if e.Code == engine.ErrCodeStoreError {
		exit = ExitCommandError
	}
	return f.Fail(exit, string(e.Code), e.Message, d)
}
