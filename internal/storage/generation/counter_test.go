package generation

import (
	"sort"
	"sync"
	"testing"
)

func TestCounter_StartsAtZero(t *testing.T) {
	var c Counter
	if got := c.Current(); got != 0 {
		t.Fatalf("Current = %d, want 0", got)
	}
	if got := New().Current(); got != 0 {
		t.Fatalf("New().Current = %d, want 0", got)
	}
}

func TestCounter_Advance(t *testing.T) {
	c := New()
	for want := uint64(1); want <= 5; want++ {
		if got := c.Advance(); got != want {
			t.Fatalf("Advance = %d, want %d", got, want)
		}
		if got := c.Current(); got != want {
			t.Fatalf("Current = %d, want %d", got, want)
		}
	}
}

func TestCounter_ConcurrentAdvanceIsGapless(t *testing.T) {
	c := New()
	numGoroutines := 64
	perGoroutine := 500
	total := numGoroutines * perGoroutine

	results := make([][]uint64, numGoroutines)
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for g := 0; g < numGoroutines; g++ {
		go func(g int) {
			defer wg.Done()
			seen := make([]uint64, 0, perGoroutine)
			var last uint64
			for i := 0; i < perGoroutine; i++ {
				v := c.Advance()
				if v <= last {
					t.Errorf("goroutine %d observed %d after %d", g, v, last)
				}
				last = v
				seen = append(seen, v)
			}
			results[g] = seen
		}(g)
	}
	wg.Wait()

	all := make([]uint64, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	for i, v := range all {
		if v != uint64(i+1) {
			t.Fatalf("value at %d = %d, want %d (duplicate or gap)", i, v, i+1)
		}
	}
	if got := c.Current(); got != uint64(total) {
		t.Fatalf("Current = %d, want %d", got, total)
	}
}
