package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies the wall time written into nao:created and nao:lastModified.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// sequence is a monotonic counter numbering merges within one Engine.
//
// Every merge result and log record carries its sequence number, so the
// order in which merges were applied can be read back from logs and
// scenario traces without relying on wall-clock timestamps.
type sequence struct {
	seq atomic.Int64
}

// next returns the next sequence number.
func (s *sequence) next() int64 {
	return s.seq.Add(1)
}

// current returns the last issued sequence number.
func (s *sequence) current() int64 {
	return s.seq.Load()
}
