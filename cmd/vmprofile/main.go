// Command vmprofile drives a Translator under a synthetic access pattern
// while CPU-profiling it, then summarizes where the time went.
//
// It plays the role a load-generation harness plays against the teaching
// kernel this module descends from, adapted to a single translator
// instead of a whole syscall surface: generate traffic, capture a
// runtime/pprof CPU profile, then use the same profile.Profile parser
// pprof's own report command uses to rank the hottest functions.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"runtime/pprof"
	"sort"

	"github.com/google/pprof/profile"

	"biscuitvm/geom"
	"biscuitvm/vm"
)

func main() {
	pattern := flag.String("pattern", "sequential", "access pattern: sequential, random, or adversarial")
	ops := flag.Int("ops", 200000, "number of read/write operations to perform")
	flag.Parse()

	g := geom.Default()
	t := vm.New(g)

	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		log.Fatal(err)
	}
	run(t, g, *pattern, *ops)
	pprof.StopCPUProfile()

	prof, err := profile.Parse(&buf)
	if err != nil {
		log.Fatal(err)
	}
	report(prof)

	st := t.Stats()
	fmt.Printf("\nfaults=%d hits=%d evicted_pages=%d\n", st.Faults.Load(), st.Hits.Load(), t.EvictedPages())
}

// run performs ops translations against t, following the named access
// pattern. "adversarial" walks VPNs in a stride chosen to be far from the
// faulting page under the cyclic distance metric every step, the pattern
// most likely to force rank-3 evictions.
func run(t *vm.Translator, g geom.Geometry, pattern string, ops int) {
	space := g.VpnSpace()
	pageSize := uint64(g.PageSize())
	var vpn uint64
	var word int64

	for i := 0; i < ops; i++ {
		switch pattern {
		case "sequential":
			vpn = uint64(i) % space
		case "random":
			vpn = lcg(uint64(i)) % space
		case "adversarial":
			vpn = (vpn + space/2 + 1) % space
		default:
			log.Fatalf("unknown pattern %q", pattern)
		}
		vaddr := vpn*pageSize + uint64(i)%pageSize
		if i%2 == 0 {
			t.Write(vaddr, int64(i))
		} else {
			t.Read(vaddr, &word)
		}
	}
}

// lcg is a small linear congruential generator, good enough to scatter
// access patterns without pulling in math/rand for a load harness that
// only needs repeatable pseudo-randomness.
func lcg(seed uint64) uint64 {
	return seed*6364136223846793005 + 1442695040888963407
}

// report prints the leaf functions accounting for the most sampled CPU
// time, in the manner of pprof's own "top" report.
func report(p *profile.Profile) {
	type count struct {
		name string
		n    int64
	}
	totals := map[string]int64{}
	for _, s := range p.Sample {
		if len(s.Location) == 0 || len(s.Location[0].Line) == 0 {
			continue
		}
		fn := s.Location[0].Line[0].Function
		name := "?"
		if fn != nil {
			name = fn.Name
		}
		var v int64
		if len(s.Value) > 0 {
			v = s.Value[0]
		}
		totals[name] += v
	}

	counts := make([]count, 0, len(totals))
	for name, n := range totals {
		counts = append(counts, count{name, n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].n > counts[j].n })

	fmt.Println("top samples by leaf function:")
	for i, c := range counts {
		if i >= 10 {
			break
		}
		fmt.Printf("  %8d  %s\n", c.n, c.name)
	}
}
