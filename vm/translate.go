// Package vm is the public surface of the translator: Initialize, Read,
// and Write, backed by the page-table walk (physical_of in the original
// design). It plays the role vm.Vm_t and its Userdmap8_inner/Sys_pgfault
// pair play in the teaching kernel this module descends from — bounds
// check, then walk the table levels top-down, allocating and filling in
// on a miss — minus the address-space mutex: §5 of the design rules out
// concurrency for this translator entirely, so there is nothing to lock.
package vm

import (
	"biscuitvm/alloc"
	"biscuitvm/errs"
	"biscuitvm/geom"
	"biscuitvm/pmem"
)

// Translator owns one page-table tree over a pmem.Memory and exposes the
// four client operations.
type Translator struct {
	g      geom.Geometry
	pm     *pmem.Memory
	stats  Stats
	trace  *trace
	notify chan<- alloc.ExhaustionNotice
}

// New constructs a Translator over a fresh physical memory of the given
// geometry and calls Initialize. It panics if the geometry cannot host a
// root plus one full path to a leaf (NumFrames < TablesDepth+1) — the
// "behavior is undefined" case in §7 of the design is turned into an
// early, loud failure instead of silent corruption later. geom.New already
// rejects such a geometry, so this only fires when a Geometry value was
// hand-built and never validated.
func New(g geom.Geometry) *Translator {
	if g.NumFrames < g.TablesDepth+1 {
		panic("vm: NumFrames too small for TablesDepth; geometry must satisfy NumFrames >= TablesDepth+1")
	}
	t := &Translator{
		g:     g,
		pm:    pmem.New(g),
		trace: newTrace(64),
	}
	t.Initialize()
	return t
}

// Notify registers a channel to receive alloc.ExhaustionNotice values
// whenever a translation forces an eviction. Passing nil (the default)
// disables notification.
func (t *Translator) Notify(ch chan<- alloc.ExhaustionNotice) {
	t.notify = ch
}

// Initialize zeros the root table. It is idempotent and invalidates every
// prior mapping when re-invoked.
func (t *Translator) Initialize() {
	ps := uint64(t.g.PageSize())
	for slot := uint64(0); slot < ps; slot++ {
		t.pm.PMwrite(slot, 0)
	}
}

// Read translates vaddr and loads the word found there into *out. It
// returns errs.EFAULT without mutating memory if vaddr is out of range.
func (t *Translator) Read(vaddr uint64, out *int64) errs.Err_t {
	phys, evicted, err := t.translateChecked(vaddr)
	if err != 0 {
		return err
	}
	*out = t.pm.PMread(phys)
	t.trace.record(vaddr, phys, evicted)
	return 0
}

// Write translates vaddr and stores value there. It returns errs.EFAULT
// without mutating memory if vaddr is out of range.
func (t *Translator) Write(vaddr uint64, value int64) errs.Err_t {
	phys, evicted, err := t.translateChecked(vaddr)
	if err != 0 {
		return err
	}
	t.pm.PMwrite(phys, value)
	t.trace.record(vaddr, phys, evicted)
	return 0
}

func (t *Translator) translateChecked(vaddr uint64) (phys uint64, evicted bool, err errs.Err_t) {
	if vaddr >= t.g.VirtualMemorySize() {
		return 0, false, errs.EFAULT
	}
	before := t.pm.Evictions
	phys = t.physicalOf(vaddr)
	return phys, t.pm.Evictions != before, 0
}

// physicalOf is physical_of from the design: walk the table levels
// top-down from the root, allocating and zero-filling or restoring a
// frame on each miss, and return the physical address of vaddr's word.
func (t *Translator) physicalOf(vaddr uint64) uint64 {
	vpn := vaddr >> uint(t.g.OffsetWidth)
	frame := uint64(0)
	pageSize := uint64(t.g.PageSize())

	for level := 0; level < t.g.TablesDepth; level++ {
		slot := t.g.IndexAtLevel(vpn, level)
		cellAddr := frame*pageSize + slot
		child := uint64(t.pm.PMread(cellAddr))

		if child == 0 {
			child = alloc.GetNewFrame(t.pm, t.g, vaddr, frame, t.notify)
			t.pm.PMwrite(cellAddr, int64(child))
			if level+1 < t.g.TablesDepth {
				t.pm.ZeroFrame(child)
			} else {
				t.pm.PMrestore(child, vpn)
			}
			t.stats.Faults.Inc()
		} else {
			t.stats.Hits.Inc()
		}
		frame = child
	}

	offset := vaddr & (pageSize - 1)
	return frame*pageSize + offset
}

// Geometry returns the geometry this translator was built with.
func (t *Translator) Geometry() geom.Geometry {
	return t.g
}

// Stats returns a snapshot of the translator's running counters.
func (t *Translator) Stats() Stats {
	return t.stats
}

// Trace returns the most recent translation records, oldest first.
func (t *Translator) Trace() []Record {
	return t.trace.all()
}

// EvictedPages reports how many distinct VPNs currently live in the
// backing store.
func (t *Translator) EvictedPages() int {
	return t.pm.EvictedPages()
}
