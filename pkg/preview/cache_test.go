package preview

import (
	"fmt"
	"testing"
)

func TestCacheEvictsOldestInserted(t *testing.T) {
	c := NewCache(3)
	c.Put("a", "<svg>a</svg>")
	c.Put("b", "<svg>b</svg>")
	c.Put("c", "<svg>c</svg>")

	// Reading does not refresh an entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing before eviction")
	}
	c.Put("d", "<svg>d</svg>")

	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest inserted entry survived")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s evicted", k)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestCachePutNeverOverwrites(t *testing.T) {
	c := NewCache(2)
	c.Put("a", "first")
	c.Put("a", "second")
	if v, _ := c.Get("a"); v != "first" {
		t.Fatalf("entry mutated to %q", v)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := NewCache(0)
	for i := 0; i < DefaultCacheSize+5; i++ {
		c.Put(fmt.Sprint(i), "x")
	}
	if c.Len() != DefaultCacheSize {
		t.Fatalf("len = %d, want %d", c.Len(), DefaultCacheSize)
	}
	if _, ok := c.Get("4"); ok {
		t.Fatal("entry 4 should have been evicted")
	}
	if _, ok := c.Get("5"); !ok {
		t.Fatal("entry 5 should remain")
	}
}
