// Package walk implements the single depth-first scan over the page-table
// forest that the frame allocator depends on: one pass over the tree rooted
// at frame 0 that simultaneously locates the first empty interior table,
// the highest frame index currently in use, and the leaf page with maximum
// cyclic distance from the faulting page.
//
// The original C++ this module descends from threaded six running results
// through recursion by reference (original_source/Resources/VirtualMemory.cpp,
// DFS). Design note §9 calls for reshaping that into a single state struct
// passed by reference; State is that struct, and Walk is the one traversal
// that fills it in.
package walk

import (
	"biscuitvm/geom"
	"biscuitvm/pmem"
	"biscuitvm/util"
)

// Link locates a table cell: the frame that owns it and the slot within
// that frame.
type Link struct {
	ParentFrame uint64
	ParentSlot  uint64
}

// State accumulates the three candidates a single traversal produces.
type State struct {
	// EmptyFrame is the first interior frame found with every cell zero,
	// excluding frame 0 and the caller's protected frame. EmptyLink locates
	// the cell that references it. EmptyFound reports whether one was seen.
	EmptyFrame uint64
	EmptyLink  Link
	EmptyFound bool

	// MaxFrame is the largest frame index observed anywhere in the tree.
	MaxFrame uint64

	// FarthestVPN is the resident VPN with maximum cyclic distance from the
	// faulting page. FarthestLink locates the leaf's pointer cell.
	// FarthestFound reports whether any leaf was seen at all.
	FarthestVPN   uint64
	FarthestLink  Link
	FarthestFound bool

	farthestDist uint64
}

// Distance is the wrap-aware cyclic distance between two VPNs over a VPN
// space of size p: min(d, p-d) where d = (a-b) mod p. Pages near wrap-around
// are considered near each other — a deliberate policy, not an artifact.
func Distance(a, b, p uint64) uint64 {
	d := ((a % p) + p - (b % p)) % p
	return util.Min(d, p-d)
}

// Walk performs the single DFS and returns the accumulated State. faultVPN
// is the page number that triggered the allocation; protectedFrame is the
// caller's current frame, excluded from the empty-table candidate so a
// newly linked interior table is never mistaken for eviction fodder
// (self-eviction safety, §4.3/§4.6).
func Walk(pm *pmem.Memory, g geom.Geometry, faultVPN, protectedFrame uint64) State {
	var st State
	visit(pm, g, faultVPN, protectedFrame, g.VpnSpace(), 0, 0, 0, 0, 0, &st)
	return st
}

// visit recurses into frame at the given depth. parentFrame/parentSlot
// locate the cell that points at frame (unused at depth 0, the root). path
// is the concatenation of table indices walked so far; once depth reaches
// TablesDepth, path equals the VPN of the descendant leaf.
//
// Cells are visited in ascending slot order, which is what fixes the
// "first encountered wins" tie-break for both the empty-table search and
// the farthest-leaf search (§4.2).
func visit(pm *pmem.Memory, g geom.Geometry, faultVPN, protectedFrame, vpnSpace uint64,
	frame, parentFrame, parentSlot, path uint64, depth int, st *State) {

	if frame > st.MaxFrame {
		st.MaxFrame = frame
	}

	if depth == g.TablesDepth {
		d := Distance(faultVPN, path, vpnSpace)
		if !st.FarthestFound || d > st.farthestDist {
			st.FarthestFound = true
			st.farthestDist = d
			st.FarthestVPN = path
			st.FarthestLink = Link{ParentFrame: parentFrame, ParentSlot: parentSlot}
		}
		return
	}

	empty := true
	pageSize := uint64(g.PageSize())
	base := frame * pageSize
	for slot := uint64(0); slot < pageSize; slot++ {
		child := uint64(pm.PMread(base + slot))
		if child == 0 {
			continue
		}
		empty = false
		visit(pm, g, faultVPN, protectedFrame, vpnSpace, child, frame, slot, path*pageSize+slot, depth+1, st)
	}

	if empty && frame != 0 && frame != protectedFrame && !st.EmptyFound {
		st.EmptyFound = true
		st.EmptyFrame = frame
		st.EmptyLink = Link{ParentFrame: parentFrame, ParentSlot: parentSlot}
	}
}
