package pmem

// backing_t is the evicted-page store, keyed by virtual page number. It is
// a direct descendant of the teaching kernel's hashtable.Hashtable_t:
// bucket chaining by hash, with new entries prepended to their bucket's
// chain. The lock-free-read machinery (atomic.LoadPointer/StorePointer
// over unsafe.Pointer) is dropped: the surrounding contract is explicitly
// single-threaded (see pmem.Memory's doc comment), so plain pointers serve
// the same purpose without the concurrency plumbing nothing here needs.
type backing_t struct {
	buckets  []*bchain_t
	pageSize int
}

type bchain_t struct {
	vpn   uint64
	words []int64
	next  *bchain_t
}

// mkBacking allocates an empty backing store with the given bucket count.
// pageSize is the number of words per stored page, used to hand back a
// freshly zeroed page for a VPN that was never evicted.
func mkBacking(buckets int, pageSize int) *backing_t {
	if buckets <= 0 {
		buckets = 1
	}
	return &backing_t{buckets: make([]*bchain_t, buckets), pageSize: pageSize}
}

func (b *backing_t) bucket(vpn uint64) int {
	// Multiplicative (Knuth-style) mix, truncated to the bucket count; keys are already
	// integers so no hash/fnv pass over bytes is needed.
	h := vpn*2654435761 + 1
	return int(h % uint64(len(b.buckets)))
}

// get returns the stored page for vpn, or false if vpn was never evicted.
func (b *backing_t) get(vpn uint64) ([]int64, bool) {
	for e := b.buckets[b.bucket(vpn)]; e != nil; e = e.next {
		if e.vpn == vpn {
			return e.words, true
		}
	}
	return nil, false
}

// set stores (or replaces) the page for vpn. The caller-supplied slice is
// copied so later mutation of the source doesn't corrupt the store.
func (b *backing_t) set(vpn uint64, words []int64) {
	idx := b.bucket(vpn)
	cp := make([]int64, len(words))
	copy(cp, words)
	for e := b.buckets[idx]; e != nil; e = e.next {
		if e.vpn == vpn {
			e.words = cp
			return
		}
	}
	b.buckets[idx] = &bchain_t{vpn: vpn, words: cp, next: b.buckets[idx]}
}

// restore returns the page for vpn, zero-filled if vpn was never evicted,
// matching PMrestore's contract (§4.6/§9: a cold restore yields zeros).
func (b *backing_t) restore(vpn uint64) []int64 {
	if words, ok := b.get(vpn); ok {
		cp := make([]int64, len(words))
		copy(cp, words)
		return cp
	}
	return make([]int64, b.pageSize)
}

// size reports the number of evicted pages currently held, for diagnostics.
func (b *backing_t) size() int {
	n := 0
	for _, head := range b.buckets {
		for e := head; e != nil; e = e.next {
			n++
		}
	}
	return n
}
