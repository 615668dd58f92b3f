// Package alloc implements the ranked frame-acquisition algorithm
// (get_new_frame in the original design): given a page-table miss, pick a
// frame to hand back by trying, in order, an empty interior table, a
// never-used frame, and finally a cyclic-distance eviction. The three
// strategies mirror the ranked free-list fallbacks in
// mem.Physmem_t.Pmap_new from the teaching kernel this module descends
// from (try the per-CPU free list, then the global free list, then fall
// back to the general page allocator) — same shape, different ranking
// rule, since this design's third rank must evict rather than simply fail.
package alloc

import (
	"biscuitvm/geom"
	"biscuitvm/pmem"
	"biscuitvm/walk"
)

// ExhaustionNotice is sent on an optional notification channel whenever
// the third-ranked strategy (eviction) fires, i.e. whenever the simulated
// RAM is genuinely out of fresh frames. It descends from the teaching
// kernel's oommsg.Oommsg_t, which signals the same condition — "no frames
// left without reclaiming one" — to an out-of-band listener instead of
// failing the caller outright.
type ExhaustionNotice struct {
	EvictedVPN   uint64
	EvictedFrame uint64
}

// GetNewFrame runs the ranked selection and returns the frame to use. vaddr
// is the faulting virtual address (its VPN feeds the cyclic-distance
// search); parentFrame is the interior frame the caller is about to link
// the returned frame into, and must never be the frame returned (the
// self-eviction safety invariant, §4.3).
//
// notify, if non-nil, receives an ExhaustionNotice whenever rank 3 (evict
// the farthest leaf) fires. It is never blocked on: the send happens only
// if it can complete at once (a free buffer slot or a waiting receiver),
// so a caller that doesn't drain it can't stall the translator.
func GetNewFrame(pm *pmem.Memory, g geom.Geometry, vaddr uint64, parentFrame uint64, notify chan<- ExhaustionNotice) uint64 {
	vpn := vaddr >> uint(g.OffsetWidth)
	st := walk.Walk(pm, g, vpn, parentFrame)

	// Rank 1: reuse an empty interior table. The frame is dead — no
	// reachable leaf depends on it — so no eviction to backing store is
	// needed, only an unlink.
	if st.EmptyFound && st.EmptyFrame != parentFrame {
		unlink(pm, g, st.EmptyLink)
		return st.EmptyFrame
	}

	// Rank 2: claim a frame that has never been touched. Its cells are in
	// an unspecified state; the caller zero-fills or PMrestores it before
	// use (§4.4), so no action is needed here.
	if st.MaxFrame+1 < uint64(g.NumFrames) {
		return st.MaxFrame + 1
	}

	// Rank 3: evict the farthest leaf. The parent-cell write of 0 happens
	// after PMevict and before the frame is handed back, so the translator
	// never observes a dangling reference to the evicted leaf (§4.3's
	// ordering-of-side-effects requirement).
	evictedFrame := uint64(pm.PMread(st.FarthestLink.ParentFrame*uint64(g.PageSize()) + st.FarthestLink.ParentSlot))
	pm.PMevict(evictedFrame, st.FarthestVPN)
	unlink(pm, g, st.FarthestLink)
	if notify != nil {
		select {
		case notify <- ExhaustionNotice{EvictedVPN: st.FarthestVPN, EvictedFrame: evictedFrame}:
		default:
		}
	}
	return evictedFrame
}

// unlink writes 0 into the cell located by link, detaching whatever it
// pointed to from the tree.
func unlink(pm *pmem.Memory, g geom.Geometry, link walk.Link) {
	pm.PMwrite(link.ParentFrame*uint64(g.PageSize())+link.ParentSlot, 0)
}
