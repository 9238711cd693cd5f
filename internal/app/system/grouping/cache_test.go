package grouping_test

import (
	"sync"
	"testing"
	"time"

	"github.com/khebert/koinonia/internal/app/system/grouping"
	"github.com/khebert/koinonia/internal/divider"
)

func sample() grouping.Result {
	return grouping.Result{
		Partition: divider.Partition{
			{Members: []divider.Member{{ID: "a", Gender: "M"}, {ID: "b", Gender: "F"}}},
		},
		Date:        "2026-03-01",
		GeneratedAt: time.Now(),
	}
}

func TestCachePutGet(t *testing.T) {
	c := grouping.NewCache()

	if _, ok := c.Get("s1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("s1", sample())
	got, ok := c.Get("s1")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.Date != "2026-03-01" {
		t.Errorf("date: got %q", got.Date)
	}
	if got.Partition.TotalMembers() != 2 {
		t.Errorf("members: got %d, want 2", got.Partition.TotalMembers())
	}
}

func TestCacheIsolatesSessions(t *testing.T) {
	c := grouping.NewCache()
	c.Put("s1", sample())

	if _, ok := c.Get("s2"); ok {
		t.Error("sessions must not see each other's partitions")
	}
}

func TestCacheCopiesOnGet(t *testing.T) {
	c := grouping.NewCache()
	c.Put("s1", sample())

	got, _ := c.Get("s1")
	got.Partition[0].Members[0].ID = "mutated"

	again, _ := c.Get("s1")
	if again.Partition[0].Members[0].ID != "a" {
		t.Error("mutating a returned partition must not corrupt the cache")
	}
}

func TestCacheIgnoresEmptySessionID(t *testing.T) {
	c := grouping.NewCache()
	c.Put("", sample())
	if c.Len() != 0 {
		t.Error("empty session IDs must not be cached")
	}
}

func TestCacheSweep(t *testing.T) {
	c := grouping.NewCache()
	old := sample()
	old.GeneratedAt = time.Now().Add(-24 * time.Hour)
	c.Put("stale", old)
	c.Put("fresh", sample())

	if dropped := c.Sweep(time.Now()); dropped != 1 {
		t.Errorf("sweep dropped %d, want 1", dropped)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry must survive the sweep")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := grouping.NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%4))
			for k := 0; k < 100; k++ {
				c.Put(id, sample())
				c.Get(id)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 4 {
		t.Errorf("len: got %d, want 4", c.Len())
	}
}
