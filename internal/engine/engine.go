package engine

import (
	"context"
	"sync"
	"time"

	"github.com/roach88/semstore/internal/ontology"
	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/store"
	"github.com/roach88/semstore/internal/watcher"
)

// Engine runs identification and merges against one store and publishes the
// resulting changes to a watcher manager.
//
// Merges are serialized by the Engine and each runs in a single store
// transaction, so a failed merge leaves no writes and watchers only hear
// about committed changes. Identification outside a merge only reads.
//
// Thread-safety model:
//   - Merge, MergeSession: safe from any goroutine, run one at a time
//   - NewIdentifier, IdentifyAll: safe from any goroutine; the returned
//     Identifier is not
//   - Watch: safe from any goroutine
type Engine struct {
	store   *store.Store
	tree    ontology.Tree
	watcher *watcher.Manager
	cfg     config

	mu  sync.Mutex // serializes merges
	seq sequence
}

// New creates an Engine over st using tree for schema facts. Changes are
// published to w; a nil w gets a private manager sharing the engine logger.
func New(st *store.Store, tree ontology.Tree, w *watcher.Manager, opts ...Option) *Engine {
	cfg := newConfig(opts)
	if w == nil {
		w = watcher.NewManager(watcher.WithLogger(cfg.logger))
	}
	return &Engine{
		store:   st,
		tree:    tree,
		watcher: w,
		cfg:     cfg,
	}
}

// Watcher returns the manager merges publish to.
func (e *Engine) Watcher() *watcher.Manager {
	return e.watcher
}

// Watch subscribes to changes. See watcher.Manager.Watch.
func (e *Engine) Watch(resources, properties, types []rdf.IRI) (*watcher.Subscription, error) {
	return e.watcher.Watch(resources, properties, types)
}

// Seq returns the sequence number of the last committed merge.
func (e *Engine) Seq() int64 {
	return e.seq.current()
}

// NewIdentifier opens an identification session against the store. Options
// override the engine's configuration for this session only.
func (e *Engine) NewIdentifier(opts ...Option) *Identifier {
	cfg := e.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return newIdentifier(e.store, e.tree, cfg)
}

// IdentifyAll opens a session holding stmts and identifies every subject it
// can. The session is returned even when some subjects stay unidentified.
func (e *Engine) IdentifyAll(ctx context.Context, stmts []rdf.Statement, opts ...Option) (*Identifier, error) {
	ident := e.NewIdentifier(opts...)
	ident.AddStatements(stmts)
	n, err := ident.IdentifyAll(ctx)
	if err != nil {
		return ident, err
	}
	e.cfg.logger.Debug("identified batch",
		"subjects", ident.batch.Len(),
		"mapped", n,
		"unidentified", len(ident.pending))
	return ident, nil
}

// Merge identifies stmts and merges them in one transaction.
//
// Subjects left unidentified become new resources.
func (e *Engine) Merge(ctx context.Context, stmts []rdf.Statement, metadata rdf.PropertyMap, flags Flags) (*MergeResult, error) {
	return e.merge(ctx, nil, stmts, metadata, flags)
}

// MergeSession merges the batch of a session the caller has already
// identified, using its mapping. Pending subjects are identified once more
// inside the transaction; those still unidentified become new resources.
// The session's mapping is extended with the resources the merge created.
func (e *Engine) MergeSession(ctx context.Context, ident *Identifier, metadata rdf.PropertyMap, flags Flags) (*MergeResult, error) {
	return e.merge(ctx, ident, ident.Statements(), metadata, flags)
}

func (e *Engine) merge(ctx context.Context, ident *Identifier, stmts []rdf.Statement, metadata rdf.PropertyMap, flags Flags) (*MergeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	buf := &watcher.Buffer{}

	var res *MergeResult
	err := e.store.Tx(ctx, func(tx *store.Tx) error {
		session := ident
		if session == nil {
			session = newIdentifier(tx, e.tree, e.cfg)
			session.AddStatements(stmts)
		} else {
			// The store allows one connection; reads must go through tx.
			prev := session.reader
			session.reader = tx
			defer func() { session.reader = prev }()
		}
		if _, err := session.IdentifyAll(ctx); err != nil {
			return err
		}

		var err error
		res, err = newMerger(tx, e.tree, session, buf, e.cfg).Merge(ctx, stmts, metadata, flags)
		return err
	})
	if err != nil {
		buf.Discard()
		err = storeError("merge", err)
		e.cfg.metrics.recordMerge(nil, err, time.Since(start).Seconds())
		e.cfg.logger.Warn("merge failed", "statements", len(stmts), "error", err)
		return nil, err
	}

	// Created resources exist only now; a rolled-back merge must not leave
	// them in the session.
	if ident != nil {
		for subj, iri := range res.Mappings {
			ident.ManualIdentification(subj, iri)
		}
	}
	res.Seq = e.seq.next()
	buf.Flush(e.watcher)
	e.cfg.metrics.recordMerge(res, nil, time.Since(start).Seconds())
	e.cfg.logger.Info("merge committed",
		"seq", res.Seq,
		"graph", res.Graph,
		"inserted", res.Inserted,
		"removed", res.Removed,
		"duplicates", res.Duplicates,
		"created", len(res.Created))
	return res, nil
}

// Close closes every subscription of the engine's watcher manager. The
// store stays open.
func (e *Engine) Close() {
	e.watcher.Close()
}
