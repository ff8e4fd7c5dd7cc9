package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *clock) {
	c := NewLRUCache[int](size, ttl)
	clk := &clock{t: time.Date(2025, 1, 21, 12, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Entries != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b was least recently used and should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%s should still be cached", k)
		}
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", 3)

	clk.t = clk.t.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Fatalf("CleanExpired() = %d, want 0 (a already dropped by Get)", n)
	}

	clk.t = clk.t.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.Delete("k0")
	c.Delete("missing")
	if c.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", c.Size())
	}
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Size() after Clear = %d", c.Size())
	}
	c.Set("k1", 1)
	if v, ok := c.Get("k1"); !ok || v != 1 {
		t.Fatal("cache should be usable after Clear")
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[int](50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*i)%80)
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.Clear()
				}
			}
		}(g)
	}
	wg.Wait()
	if c.Size() > 50 {
		t.Fatalf("Size() = %d exceeds max", c.Size())
	}
}

type countingCleaner struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCleaner) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1
}

func (c *countingCleaner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestManager(t *testing.T) {
	m := NewManager(nil)
	a, b := &countingCleaner{}, &countingCleaner{}
	m.Register(a)
	m.Register(b)

	if n := m.CleanNow(); n != 2 {
		t.Fatalf("CleanNow() = %d, want 2", n)
	}

	m.StartCleanup(5 * time.Millisecond)
	m.StartCleanup(5 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for a.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	m.Stop()

	if a.count() < 3 {
		t.Fatalf("periodic cleanup did not run, calls = %d", a.count())
	}
	after := a.count()
	time.Sleep(20 * time.Millisecond)
	if a.count() != after {
		t.Fatal("cleanup kept running after Stop")
	}
}
