package feed

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jobcrap/jobcrap-cli/internal/api"
)

func stories(ids ...string) []api.Story {
	out := make([]api.Story, len(ids))
	for i, id := range ids {
		out[i] = api.Story{ID: id, Text: "story " + id}
	}
	return out
}

func ids(items []api.Story) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

// mustNext asserts the controller hands out a request for the given page.
func mustNext(t *testing.T, c *Controller, page int) PageRequest {
	t.Helper()
	req, ok := c.NextPage()
	if !ok {
		t.Fatalf("expected a page request, got none")
	}
	if req.Page != page {
		t.Fatalf("expected page %d, got %d", page, req.Page)
	}
	return req
}

func TestSettersKeepLastValueAndResetCursor(t *testing.T) {
	c := NewController(DefaultQuery())

	c.SetCategory("funny")
	c.SetCategory("dark")
	c.SetCountry("Germany")
	c.SetTag("layoffs")
	c.SetTag("managers")
	c.SetSort(SortTop)

	q := c.Query()
	if q.Category != "dark" || q.Country != "Germany" || q.Tag != "managers" || q.Sort != SortTop {
		t.Errorf("unexpected query after setters: %+v", q)
	}

	// Every setter restarted the sequence at page 1.
	mustNext(t, c, 1)
}

func TestSetterWithSameValueIsNoop(t *testing.T) {
	c := NewController(DefaultQuery())
	c.SetCategory("funny")
	req := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req, Stories: stories("a"), HasNext: true})

	if c.SetCategory("funny") {
		t.Error("setting the same category should report no change")
	}
	if len(c.Items()) != 1 {
		t.Errorf("no-op setter must not discard loaded items, got %d", len(c.Items()))
	}
}

func TestClearFiltersIdempotent(t *testing.T) {
	c := NewController(Query{Category: "funny", Search: "boss", Sort: SortTop})

	if !c.ClearFilters() {
		t.Error("first clear should report a change")
	}
	first := c.Query()
	if c.ClearFilters() {
		t.Error("second clear should be a no-op")
	}
	if c.Query() != first {
		t.Errorf("second clear changed the query: %+v vs %+v", c.Query(), first)
	}
	if first != DefaultQuery() {
		t.Errorf("cleared query is not the default: %+v", first)
	}
}

func TestPaginationBoundary(t *testing.T) {
	c := NewController(DefaultQuery())

	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{
		Req:     req1,
		Stories: stories("1", "2", "3", "4", "5", "6", "7", "8", "9", "10"),
		HasNext: true,
	})

	req2 := mustNext(t, c, 2)
	c.Apply(PageResult{Req: req2, Stories: stories("11", "12", "13", "14"), HasNext: false})

	if len(c.Items()) != 14 {
		t.Fatalf("expected 14 stories, got %d", len(c.Items()))
	}
	if got := c.Items()[10].ID; got != "11" {
		t.Errorf("server order not preserved across pages: item 10 is %s", got)
	}

	// The sequence is exhausted: further scroll triggers are inert.
	if _, ok := c.NextPage(); ok {
		t.Error("expected no further page requests after hasNext=false")
	}
}

func TestStaleResponseDiscardedAfterQueryChange(t *testing.T) {
	c := NewController(Query{Category: "funny", Sort: SortRecent})

	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req1, Stories: stories("f1", "f2"), HasNext: true})
	req2 := mustNext(t, c, 2)

	// Query moves on while the page-2 fetch is in flight.
	c.SetCategory("sad")
	newReq := mustNext(t, c, 1)
	c.Apply(PageResult{Req: newReq, Stories: stories("s1"), HasNext: false})

	// The stale funny page 2 arrives late.
	c.Apply(PageResult{Req: req2, Stories: stories("f3", "f4"), HasNext: true})

	got := ids(c.Items())
	if len(got) != 1 || got[0] != "s1" {
		t.Errorf("stale page leaked into the feed: %v", got)
	}
	if c.HasNext() {
		t.Error("stale page's hasNext overwrote the active sequence")
	}
}

func TestOutOfOrderCompletionsAppendInPageOrder(t *testing.T) {
	c := NewController(DefaultQuery())

	// Simulate a pipelining caller: take three requests off the same
	// generation, then complete them out of order.
	req1 := mustNext(t, c, 1)
	req2 := PageRequest{Gen: req1.Gen, Page: 2, Query: req1.Query}
	req3 := PageRequest{Gen: req1.Gen, Page: 3, Query: req1.Query}

	c.Apply(PageResult{Req: req3, Stories: stories("e", "f"), HasNext: false})
	if len(c.Items()) != 0 {
		t.Fatalf("page 3 must wait for pages 1 and 2, got %d items", len(c.Items()))
	}
	c.Apply(PageResult{Req: req2, Stories: stories("c", "d"), HasNext: true})
	if len(c.Items()) != 0 {
		t.Fatalf("page 2 must wait for page 1, got %d items", len(c.Items()))
	}
	c.Apply(PageResult{Req: req1, Stories: stories("a", "b"), HasNext: true})

	got := ids(c.Items())
	want := []string{"a", "b", "c", "d", "e", "f"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("items out of order: got %v, want %v", got, want)
	}
	if c.HasNext() {
		t.Error("hasNext should reflect the highest appended page")
	}
}

func TestDuplicateStoriesAcrossPagesDropped(t *testing.T) {
	c := NewController(DefaultQuery())

	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req1, Stories: stories("a", "b", "c"), HasNext: true})
	req2 := mustNext(t, c, 2)
	// "c" slid onto page 2 because a new story was inserted upstream.
	c.Apply(PageResult{Req: req2, Stories: stories("c", "d"), HasNext: false})

	got := ids(c.Items())
	want := []string{"a", "b", "c", "d"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected de-duplicated %v, got %v", want, got)
	}
}

func TestFailedPageKeepsLoadedItemsAndRetries(t *testing.T) {
	c := NewController(DefaultQuery())

	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req1, Stories: stories("a", "b"), HasNext: true})

	req2 := mustNext(t, c, 2)
	bad := errors.New("boom")
	c.Apply(PageResult{Req: req2, Err: bad})

	if len(c.Items()) != 2 {
		t.Errorf("failure dropped loaded items: %d left", len(c.Items()))
	}
	if !errors.Is(c.Err(), bad) {
		t.Errorf("expected surfaced error, got %v", c.Err())
	}

	// Retry re-issues just the failed page and clears the error.
	retry := mustNext(t, c, 2)
	if c.Err() != nil {
		t.Errorf("dispatching a retry should clear the error, got %v", c.Err())
	}
	c.Apply(PageResult{Req: retry, Stories: stories("c"), HasNext: false})
	if len(c.Items()) != 3 {
		t.Errorf("expected 3 items after retry, got %d", len(c.Items()))
	}
}

func TestNoConcurrentFetchForSameSequence(t *testing.T) {
	c := NewController(DefaultQuery())
	mustNext(t, c, 1)
	if _, ok := c.NextPage(); ok {
		t.Error("second NextPage while one is in flight should be refused")
	}
	if !c.Loading() {
		t.Error("Loading should report the in-flight fetch")
	}
}

func TestRefetchKeepsItemsUntilFreshPageLands(t *testing.T) {
	c := NewController(DefaultQuery())
	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req1, Stories: stories("a", "b"), HasNext: true})
	req2 := mustNext(t, c, 2)
	c.Apply(PageResult{Req: req2, Stories: stories("c"), HasNext: true})

	refetch, ok := c.Refetch()
	if !ok {
		t.Fatal("expected refetch request")
	}
	if refetch.Page != 1 || !refetch.Refetch {
		t.Fatalf("unexpected refetch request: %+v", refetch)
	}
	// Old sequence still shown while the fresh page 1 is pending.
	if len(c.Items()) != 3 {
		t.Errorf("refetch cleared items early: %d left", len(c.Items()))
	}

	c.Apply(PageResult{Req: refetch, Stories: stories("x", "y"), HasNext: true})
	got := ids(c.Items())
	want := []string{"x", "y"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("refetch did not replace the sequence: %v", got)
	}
	// Scrolling continues from page 2 of the fresh sequence.
	mustNext(t, c, 2)
}

func TestRefetchFailureKeepsOldSequence(t *testing.T) {
	c := NewController(DefaultQuery())
	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req1, Stories: stories("a", "b"), HasNext: true})

	refetch, _ := c.Refetch()
	c.Apply(PageResult{Req: refetch, Err: errors.New("boom")})

	if len(c.Items()) != 2 {
		t.Errorf("failed refetch dropped items: %d left", len(c.Items()))
	}
	if c.Err() == nil {
		t.Error("expected surfaced refetch error")
	}
	// The old sequence remains loadable.
	mustNext(t, c, 2)
}

func TestStaleRefetchDiscardedAfterQueryChange(t *testing.T) {
	c := NewController(DefaultQuery())
	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req1, Stories: stories("a"), HasNext: false})

	refetch, _ := c.Refetch()
	c.SetCategory("dark")
	c.Apply(PageResult{Req: refetch, Stories: stories("stale"), HasNext: false})

	if len(c.Items()) != 0 {
		t.Errorf("stale refetch applied after query change: %v", ids(c.Items()))
	}
}

func TestApplyVoteOverwritesCounts(t *testing.T) {
	c := NewController(DefaultQuery())
	req1 := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req1, Stories: []api.Story{
		{ID: "x", Upvotes: 5, Downvotes: 1},
	}, HasNext: false})

	c.ApplyVote("x", api.VoteResult{Vote: "upvote", Upvotes: 6, Downvotes: 1})
	s, ok := c.Story("x")
	if !ok {
		t.Fatal("story x missing")
	}
	if s.Upvotes != 6 || s.Downvotes != 1 || s.UserVote != "upvote" {
		t.Errorf("vote not applied: %+v", s)
	}

	// Toggle off: the server retracts the vote.
	c.ApplyVote("x", api.VoteResult{Vote: "", Upvotes: 5, Downvotes: 1})
	s, _ = c.Story("x")
	if s.Upvotes != 5 || s.Downvotes != 1 || s.UserVote != "" {
		t.Errorf("vote retraction not applied: %+v", s)
	}

	// Unknown story is a no-op.
	c.ApplyVote("nope", api.VoteResult{Vote: "upvote", Upvotes: 1})
}

func TestEmptyResultIsTerminalNotError(t *testing.T) {
	c := NewController(Query{Search: "nothing matches this", Sort: SortRecent})
	req := mustNext(t, c, 1)
	c.Apply(PageResult{Req: req, Stories: nil, HasNext: false})

	if !c.Loaded() {
		t.Error("empty page should still mark the sequence loaded")
	}
	if c.Err() != nil {
		t.Errorf("empty result is not an error, got %v", c.Err())
	}
	if _, ok := c.NextPage(); ok {
		t.Error("no further fetches after an empty terminal page")
	}
}
