package vm

import "sync/atomic"

// Counter is a monotonically increasing event count. It descends from
// accnt.Accnt_t's Userns/Sysns fields, minus the embedded mutex: a
// translator has no concurrent callers (§5), so plain fields updated with
// atomic ops are enough to let Stats be read mid-run without torn values,
// with no lock to acquire.
type Counter struct {
	n int64
}

// Inc adds one to the counter.
func (c *Counter) Inc() {
	atomic.AddInt64(&c.n, 1)
}

// Load returns the current count.
func (c *Counter) Load() int64 {
	return atomic.LoadInt64(&c.n)
}

// Stats accumulates running counts of translation outcomes for a
// Translator, in the spirit of accnt.Accnt_t's per-process accounting.
type Stats struct {
	// Faults counts table-level lookups that found an absent cell and
	// allocated a frame for it; one translation adds up to TablesDepth.
	Faults Counter
	// Hits counts table-level lookups that found an existing child frame.
	Hits Counter
}

// Evictions and Restores live on pmem.Memory directly (Translator.Stats
// does not duplicate them); Faults/Hits are what the translator itself
// observes and pmem has no way to know.
