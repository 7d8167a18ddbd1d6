package harness

// Trace event types.
const (
	TraceMerge    = "merge"
	TraceIdentify = "identify"
	TraceWatch    = "event"
)

// TraceEvent is one entry of a scenario trace: the outcome of a step or a
// watcher event delivered after it. Resources, graphs and terms are written
// as stable labels, so traces compare across runs.
type TraceEvent struct {
	Step int    `json:"step"`
	Type string `json:"type"`

	// Step outcome.
	Graph        string            `json:"graph,omitempty"`
	Inserted     int               `json:"inserted,omitempty"`
	Deleted      int               `json:"deleted,omitempty"`
	Duplicates   int               `json:"duplicates,omitempty"`
	Created      []string          `json:"created,omitempty"`
	Superseded   map[string]string `json:"superseded,omitempty"`
	Mapped       map[string]string `json:"mapped,omitempty"`
	Unidentified []string          `json:"unidentified,omitempty"`
	Error        string            `json:"error,omitempty"`

	// Watcher event.
	Watch    string   `json:"watch,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	Resource string   `json:"resource,omitempty"`
	Property string   `json:"property,omitempty"`
	Types    []string `json:"types,omitempty"`
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains step outcomes and watcher events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns the watcher events of watch, optionally of one kind.
func (r *Result) Events(watch, kind string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type != TraceWatch || ev.Watch != watch {
			continue
		}
		if kind != "" && ev.Kind != kind {
			continue
		}
		out = append(out, ev)
	}
	return out
}
