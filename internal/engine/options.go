package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/resource"
)

// Mode selects which subjects identification matches against the store.
type Mode int

const (
	// IdentifyNew identifies blank placeholders only. Foreign identifiers
	// become new resources.
	IdentifyNew Mode = iota

	// IdentifyAll identifies blank placeholders and foreign identifiers.
	IdentifyAll

	// IdentifyNone never matches against the store; every placeholder
	// becomes a new resource.
	IdentifyNone
)

var modeNames = map[Mode]string{
	IdentifyNew:  "new",
	IdentifyAll:  "all",
	IdentifyNone: "none",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "new", "all" or "none".
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown identification mode %q (want new, all or none)", s)
}

// DuplicateMatchFunc picks one of several equally scored candidates, reading
// the store through r. Returning ok=false leaves the subject unidentified.
type DuplicateMatchFunc func(ctx context.Context, r Reader, subject rdf.Node, candidates []rdf.IRI, score int) (target rdf.IRI, ok bool, err error)

// AdditionalIdentificationFunc is consulted when no stored resource matches
// a subject's identifying properties. Returning ok=false leaves the subject
// unidentified.
type AdditionalIdentificationFunc func(ctx context.Context, r Reader, subject rdf.Node, res resource.Resource) (target rdf.IRI, ok bool, err error)

// config is shared by Engine and Identifier.
type config struct {
	mode           Mode
	app            string
	duplicateMatch DuplicateMatchFunc
	additional     AdditionalIdentificationFunc
	clock          Clock
	logger         *slog.Logger
	metrics        *Metrics
}

func newConfig(opts []Option) config {
	cfg := config{
		mode:   IdentifyNew,
		app:    DefaultApplication,
		clock:  SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DefaultApplication is the attributing application when none is configured.
const DefaultApplication = "semstore"

// Option configures an Engine or an Identifier.
type Option func(*config)

// WithMode sets the identification mode. Default: IdentifyNew.
func WithMode(m Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithApplication sets the application graphs are attributed to.
func WithApplication(app string) Option {
	return func(c *config) {
		if app != "" {
			c.app = app
		}
	}
}

// WithDuplicateMatcher installs a tie-break for ambiguous identification.
// Without one, ambiguous subjects stay unidentified.
func WithDuplicateMatcher(fn DuplicateMatchFunc) Option {
	return func(c *config) {
		c.duplicateMatch = fn
	}
}

// WithAdditionalIdentification installs a fallback consulted when no stored
// resource matches.
func WithAdditionalIdentification(fn AdditionalIdentificationFunc) Option {
	return func(c *config) {
		c.additional = fn
	}
}

// WithClock sets the clock for resource timestamps. Default: SystemClock.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRegisterer registers engine metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.metrics = NewMetrics(reg)
	}
}

// withMetrics shares an existing metrics set.
func withMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}
