// Package pmem simulates the physical memory collaborator the translator
// runs on: a flat, word-addressed array plus a backing store for evicted
// pages. It plays the role the distilled design leaves external, concretely
// implementing the four primitives (PMread, PMwrite, PMevict, PMrestore),
// in the manner mem.Physmem_t manages physical frames in the teaching
// kernel this module descends from — minus the reference counting and
// per-CPU free lists, which belong to a concurrent kernel and not to this
// single-threaded simulator.
package pmem

import "biscuitvm/geom"

// Memory is a simulated physical RAM of Geometry.NumFrames frames, each
// Geometry.PageSize() words wide, plus a backing store for pages evicted
// out of RAM.
//
// Memory is not safe for concurrent use: the translator built on top of it
// has no locking of its own (§5 of the design: no concurrency, no
// transactions — the single-threaded contract is the discipline), and
// Memory inherits that contract rather than adding locks nothing above it
// needs.
type Memory struct {
	g       geom.Geometry
	words   []int64
	backing *backing_t
	// Evictions counts calls to PMevict; vm's translator compares it before
	// and after a translation to flag accesses that forced an eviction.
	Evictions int64
	// Restores counts calls to PMrestore.
	Restores int64
}

// New allocates a zeroed physical memory of the given geometry.
func New(g geom.Geometry) *Memory {
	return &Memory{
		g:       g,
		words:   make([]int64, g.NumFrames*g.PageSize()),
		backing: mkBacking(g.NumFrames, g.PageSize()),
	}
}

// PMread loads the word at the given physical address.
func (m *Memory) PMread(addr uint64) int64 {
	return m.words[addr]
}

// PMwrite stores word at the given physical address.
func (m *Memory) PMwrite(addr uint64, word int64) {
	m.words[addr] = word
}

// PMevict copies the PAGE_SIZE words of frame into the backing store under
// vpn. It does not clear frame's words in RAM: every caller either
// zero-fills or PMrestores the frame immediately after reclaiming it (see
// alloc.GetNewFrame and vm's translator), so clearing here would be wasted
// work.
func (m *Memory) PMevict(frame uint64, vpn uint64) {
	ps := m.g.PageSize()
	base := frame * uint64(ps)
	m.backing.set(vpn, m.words[base:base+uint64(ps)])
	m.Evictions++
}

// PMrestore copies vpn's backing-store contents into frame, or zero-fills
// frame if vpn was never evicted.
func (m *Memory) PMrestore(frame uint64, vpn uint64) {
	ps := m.g.PageSize()
	base := frame * uint64(ps)
	copy(m.words[base:base+uint64(ps)], m.backing.restore(vpn))
	m.Restores++
}

// ZeroFrame writes zero to every word of frame. Used by the translator when
// claiming a frame for use as an interior table (§4.4).
func (m *Memory) ZeroFrame(frame uint64) {
	ps := m.g.PageSize()
	base := frame * uint64(ps)
	clear(m.words[base : base+uint64(ps)])
}

// EvictedPages reports how many distinct VPNs currently live in the
// backing store, for diagnostics.
func (m *Memory) EvictedPages() int {
	return m.backing.size()
}
