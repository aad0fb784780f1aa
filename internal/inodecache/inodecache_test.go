package inodecache

import (
	"sync"
	"testing"

	"github.com/nullpointer-dev/zstar/internal/fileid"
)

func TestGetOrInsertFirstWins(t *testing.T) {
	c := New()
	var id fileid.FileID

	existing, inserted := c.GetOrInsert(id, "a/first")
	if !inserted {
		t.Fatalf("expected first insert to win")
	}
	if existing != "" {
		t.Fatalf("expected empty existing path on insert, got %q", existing)
	}

	existing, inserted = c.GetOrInsert(id, "a/second")
	if inserted {
		t.Fatalf("expected second insert to lose")
	}
	if existing != "a/first" {
		t.Fatalf("expected existing=%q, got %q", "a/first", existing)
	}
}

func TestGetOrInsertConcurrent(t *testing.T) {
	c := New()
	var id fileid.FileID

	const n = 64
	var wg sync.WaitGroup
	wins := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, inserted := c.GetOrInsert(id, "path")
			wins[i] = inserted
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}
