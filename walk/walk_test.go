package walk

import (
	"testing"

	"biscuitvm/geom"
	"biscuitvm/pmem"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b, p, want uint64
	}{
		{0, 0, 16, 0},
		{1, 0, 16, 1},
		{0, 1, 16, 1},
		{15, 0, 16, 1}, // wraps around
		{0, 8, 16, 8},  // exact half
		{2, 14, 16, 4},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b, c.p); got != c.want {
			t.Errorf("Distance(%d,%d,%d) = %d, want %d", c.a, c.b, c.p, got, c.want)
		}
	}
}

func TestWalkEmptyTree(t *testing.T) {
	g := geom.Default()
	pm := pmem.New(g)
	st := Walk(pm, g, 0, 0)
	if st.MaxFrame != 0 {
		t.Errorf("MaxFrame = %d, want 0 on an empty tree", st.MaxFrame)
	}
	if st.FarthestFound {
		t.Error("FarthestFound should be false with no leaves mapped")
	}
	if st.EmptyFound {
		t.Error("EmptyFound should be false: frame 0 (the root) never counts as the empty candidate")
	}
}

func TestWalkFindsEmptyInteriorTable(t *testing.T) {
	g := geom.Default()
	pm := pmem.New(g)
	ps := uint64(g.PageSize())

	// Link frame 0 -> frame 1 (a dead interior table, all zero) at slot 0.
	pm.PMwrite(0*ps+0, 1)

	st := Walk(pm, g, 0, 0)
	if !st.EmptyFound {
		t.Fatal("expected EmptyFound = true")
	}
	if st.EmptyFrame != 1 {
		t.Errorf("EmptyFrame = %d, want 1", st.EmptyFrame)
	}
	if st.EmptyLink != (Link{ParentFrame: 0, ParentSlot: 0}) {
		t.Errorf("EmptyLink = %+v, want {0 0}", st.EmptyLink)
	}
}

func TestWalkExcludesProtectedFrame(t *testing.T) {
	g := geom.Default()
	pm := pmem.New(g)
	ps := uint64(g.PageSize())
	pm.PMwrite(0*ps+0, 1)

	st := Walk(pm, g, 0, 1) // protectedFrame = 1
	if st.EmptyFound {
		t.Error("EmptyFound should be false: the only empty table is the protected frame")
	}
}

func TestWalkFirstEmptyWins(t *testing.T) {
	g := geom.Default()
	pm := pmem.New(g)
	ps := uint64(g.PageSize())

	// Two empty interior tables, frames 1 and 2, linked from slots 0 and 1.
	pm.PMwrite(0*ps+0, 1)
	pm.PMwrite(0*ps+1, 2)

	st := Walk(pm, g, 0, 0)
	if !st.EmptyFound {
		t.Fatal("expected EmptyFound = true")
	}
	if st.EmptyFrame != 1 {
		t.Errorf("EmptyFrame = %d, want 1 (first encountered in ascending slot order)", st.EmptyFrame)
	}
}

func TestWalkFarthestLeaf(t *testing.T) {
	g := geom.Default()
	pm := pmem.New(g)
	ps := uint64(g.PageSize())

	// Build two separate root-to-leaf paths by hand at vpn 0x0000 and
	// vpn 0xf000 (frames chosen arbitrarily, distinct from 0).
	link := func(parent, slot, child uint64) {
		pm.PMwrite(parent*ps+slot, int64(child))
	}
	// path for vpn 0x0000: indices 0,0,0,0
	link(0, 0, 1)
	link(1, 0, 2)
	link(2, 0, 3)
	link(3, 0, 4) // leaf frame 4, vpn 0x0000

	// path for vpn 0xf000: indices 0xf,0,0,0 (second root child at slot 0xf)
	link(0, 0xf, 5)
	link(5, 0, 6)
	link(6, 0, 7)
	link(7, 0, 8) // leaf frame 8, vpn 0xf000

	st := Walk(pm, g, 0, 0)
	if !st.FarthestFound {
		t.Fatal("expected FarthestFound = true")
	}
	if st.FarthestVPN != 0xf000 {
		t.Errorf("FarthestVPN = 0x%x, want 0xf000", st.FarthestVPN)
	}
	if st.MaxFrame != 8 {
		t.Errorf("MaxFrame = %d, want 8", st.MaxFrame)
	}
}
