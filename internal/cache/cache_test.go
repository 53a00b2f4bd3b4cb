package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jobcrap/jobcrap-cli/internal/api"
)

func testCache(t *testing.T) (*Cache, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dbPath)
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, dbPath
}

func TestPageRoundTrip(t *testing.T) {
	c, _ := testCache(t)

	in := []api.Story{{ID: "a", Text: "boss ate my stapler", Upvotes: 3}}
	if err := c.PutPage("c=funny&n=&t=&s=&o=top", 1, in, true); err != nil {
		t.Fatalf("putting page: %v", err)
	}

	out, hasNext, ok, err := c.GetPage("c=funny&n=&t=&s=&o=top", 1, time.Minute)
	if err != nil {
		t.Fatalf("getting page: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !hasNext {
		t.Error("hasNext not preserved")
	}
	if len(out) != 1 || out[0].ID != "a" || out[0].Upvotes != 3 {
		t.Errorf("unexpected stories: %+v", out)
	}
}

func TestGetPageMiss(t *testing.T) {
	c, _ := testCache(t)
	_, _, ok, err := c.GetPage("c=&n=&t=&s=&o=recent", 1, time.Minute)
	if err != nil {
		t.Fatalf("getting page: %v", err)
	}
	if ok {
		t.Error("expected miss on empty cache")
	}
}

func TestGetPageExpired(t *testing.T) {
	c, _ := testCache(t)
	if err := c.PutPage("k", 1, []api.Story{{ID: "a"}}, false); err != nil {
		t.Fatalf("putting page: %v", err)
	}
	// A zero TTL makes anything already stored stale.
	_, _, ok, err := c.GetPage("k", 1, 0)
	if err != nil {
		t.Fatalf("getting page: %v", err)
	}
	if ok {
		t.Error("expired entry returned as hit")
	}
}

func TestPagesKeyedByQueryAndPage(t *testing.T) {
	c, _ := testCache(t)
	c.PutPage("k1", 1, []api.Story{{ID: "a"}}, true)
	c.PutPage("k1", 2, []api.Story{{ID: "b"}}, false)
	c.PutPage("k2", 1, []api.Story{{ID: "x"}}, false)

	out, _, ok, _ := c.GetPage("k1", 2, time.Minute)
	if !ok || out[0].ID != "b" {
		t.Errorf("k1 page 2 = %+v ok=%v", out, ok)
	}
	out, _, ok, _ = c.GetPage("k2", 1, time.Minute)
	if !ok || out[0].ID != "x" {
		t.Errorf("k2 page 1 = %+v ok=%v", out, ok)
	}
}

func TestPutPageOverwrites(t *testing.T) {
	c, _ := testCache(t)
	c.PutPage("k", 1, []api.Story{{ID: "old"}}, true)
	c.PutPage("k", 1, []api.Story{{ID: "new"}}, false)

	out, hasNext, ok, _ := c.GetPage("k", 1, time.Minute)
	if !ok || out[0].ID != "new" || hasNext {
		t.Errorf("overwrite not applied: %+v hasNext=%v ok=%v", out, hasNext, ok)
	}
}

func TestInvalidatePages(t *testing.T) {
	c, _ := testCache(t)
	c.PutPage("k1", 1, []api.Story{{ID: "a"}}, false)
	c.PutPage("k2", 1, []api.Story{{ID: "b"}}, false)

	if err := c.InvalidatePages("k1"); err != nil {
		t.Fatalf("invalidating: %v", err)
	}
	if _, _, ok, _ := c.GetPage("k1", 1, time.Minute); ok {
		t.Error("k1 survived invalidation")
	}
	if _, _, ok, _ := c.GetPage("k2", 1, time.Minute); !ok {
		t.Error("k2 was dropped by unrelated invalidation")
	}
}

func TestDetailRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	in := api.Story{ID: "s1", Text: "full text", CommentCount: 4}
	if err := c.PutDetail(in); err != nil {
		t.Fatalf("putting detail: %v", err)
	}

	out, ok, err := c.GetDetail("s1", time.Minute)
	if err != nil {
		t.Fatalf("getting detail: %v", err)
	}
	if !ok || out.Text != "full text" || out.CommentCount != 4 {
		t.Errorf("unexpected detail: %+v ok=%v", out, ok)
	}

	if err := c.InvalidateDetail("s1"); err != nil {
		t.Fatalf("invalidating detail: %v", err)
	}
	if _, ok, _ := c.GetDetail("s1", time.Minute); ok {
		t.Error("detail survived invalidation")
	}
}

func TestPrune(t *testing.T) {
	c, _ := testCache(t)
	c.PutPage("k", 1, []api.Story{{ID: "a"}}, false)
	c.PutDetail(api.Story{ID: "s1"})

	// Negative max age puts the cutoff in the future, so everything goes.
	n, err := c.Prune(-time.Minute)
	if err != nil {
		t.Fatalf("pruning: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d rows, want 2", n)
	}
	if _, _, ok, _ := c.GetPage("k", 1, time.Minute); ok {
		t.Error("page survived prune")
	}
}

func TestPruneKeepsFreshEntries(t *testing.T) {
	c, _ := testCache(t)
	c.PutPage("k", 1, []api.Story{{ID: "a"}}, false)

	n, err := c.Prune(time.Hour)
	if err != nil {
		t.Fatalf("pruning: %v", err)
	}
	if n != 0 {
		t.Errorf("pruned %d fresh rows", n)
	}
}

func TestStats(t *testing.T) {
	c, dbPath := testCache(t)
	c.PutPage("k", 1, []api.Story{{ID: "a"}}, false)
	c.PutPage("k", 2, []api.Story{{ID: "b"}}, false)
	c.PutDetail(api.Story{ID: "s1"})

	pages, details, size, err := c.Stats(dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if pages != 2 || details != 1 {
		t.Errorf("pages=%d details=%d, want 2 and 1", pages, details)
	}
	if size <= 0 {
		t.Errorf("size = %d", size)
	}
}
