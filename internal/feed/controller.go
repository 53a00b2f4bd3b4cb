package feed

import (
	"github.com/jobcrap/jobcrap-cli/internal/api"
)

// PageRequest describes one page fetch to dispatch. It snapshots the query
// and generation it was issued for, so a result arriving after the feed has
// moved on can be recognized and discarded.
type PageRequest struct {
	Gen     int
	Page    int
	Query   Query
	Refetch bool
}

// PageResult is the outcome of a dispatched PageRequest.
type PageResult struct {
	Req     PageRequest
	Stories []api.Story
	HasNext bool
	Err     error
}

// Controller owns the feed state: the active query, the loaded story
// sequence, and the pagination cursor. It is a plain state machine with no
// I/O of its own; callers dispatch the PageRequests it hands out and feed
// the PageResults back through Apply. Single-writer: it is owned by the
// feed view and must only be touched from the UI event loop.
type Controller struct {
	query Query
	gen   int

	items []api.Story
	index map[string]int // story id -> position in items

	nextFetch  int // next page to dispatch
	nextAppend int // next page to merge into items
	pending    map[int]PageResult
	inFlight   map[int]bool
	hasNext    bool
	refetching bool
	loaded     bool // at least one page of the current sequence has landed
	err        error
}

func NewController(q Query) *Controller {
	if q.Sort == "" {
		q.Sort = SortRecent
	}
	c := &Controller{query: q}
	c.restart()
	return c
}

// restart discards the loaded sequence and begins a fresh one at page 1.
// Bumping the generation orphans every outstanding request.
func (c *Controller) restart() {
	c.gen++
	c.items = nil
	c.index = make(map[string]int)
	c.nextFetch = 1
	c.nextAppend = 1
	c.pending = make(map[int]PageResult)
	c.inFlight = make(map[int]bool)
	c.hasNext = true
	c.refetching = false
	c.loaded = false
	c.err = nil
}

func (c *Controller) Query() Query       { return c.query }
func (c *Controller) Items() []api.Story { return c.items }
func (c *Controller) HasNext() bool      { return c.hasNext }
func (c *Controller) Loaded() bool       { return c.loaded }
func (c *Controller) Err() error         { return c.err }

// Loading reports whether any fetch for the current sequence is in flight.
func (c *Controller) Loading() bool {
	return c.refetching || len(c.inFlight) > 0
}

// Story returns the loaded story with the given id, if present.
func (c *Controller) Story(id string) (api.Story, bool) {
	i, ok := c.index[id]
	if !ok {
		return api.Story{}, false
	}
	return c.items[i], true
}

// SetCategory replaces the category filter. Reports whether the query
// changed (and therefore the sequence restarted at page 1).
func (c *Controller) SetCategory(v string) bool {
	if c.query.Category == v {
		return false
	}
	c.query.Category = v
	c.restart()
	return true
}

func (c *Controller) SetCountry(v string) bool {
	if c.query.Country == v {
		return false
	}
	c.query.Country = v
	c.restart()
	return true
}

func (c *Controller) SetTag(v string) bool {
	if c.query.Tag == v {
		return false
	}
	c.query.Tag = v
	c.restart()
	return true
}

func (c *Controller) SetSearch(v string) bool {
	if c.query.Search == v {
		return false
	}
	c.query.Search = v
	c.restart()
	return true
}

func (c *Controller) SetSort(m SortMode) bool {
	if c.query.Sort == m {
		return false
	}
	c.query.Sort = m
	c.restart()
	return true
}

// ClearFilters resets every filter dimension and the sort to recent.
// Calling it on an already-clear feed is a no-op.
func (c *Controller) ClearFilters() bool {
	if c.query == DefaultQuery() {
		return false
	}
	c.query = DefaultQuery()
	c.restart()
	return true
}

// NextPage hands out the next page to fetch, or ok=false when a fetch is
// already in flight or the sequence is exhausted. After a page failure it
// re-issues the failed page, clearing the error.
func (c *Controller) NextPage() (PageRequest, bool) {
	if c.refetching || len(c.inFlight) > 0 || !c.hasNext {
		return PageRequest{}, false
	}
	req := PageRequest{Gen: c.gen, Page: c.nextFetch, Query: c.query}
	c.inFlight[c.nextFetch] = true
	c.nextFetch++
	c.err = nil
	return req, true
}

// Refetch re-issues page 1 for the current query. The displayed sequence is
// kept until the fresh page 1 arrives; on success it replaces the whole
// sequence. Not available while another fetch is in flight.
func (c *Controller) Refetch() (PageRequest, bool) {
	if c.refetching || len(c.inFlight) > 0 {
		return PageRequest{}, false
	}
	c.refetching = true
	c.err = nil
	return PageRequest{Gen: c.gen, Page: 1, Query: c.query, Refetch: true}, true
}

// Apply merges a completed fetch. Results from a superseded generation are
// dropped, successful pages are appended strictly in page order (buffering
// early arrivals until the lower page lands), and failures keep every
// already-loaded item so just the failed page can be retried.
func (c *Controller) Apply(res PageResult) {
	if res.Req.Gen != c.gen {
		return
	}

	if res.Req.Refetch {
		c.refetching = false
		if res.Err != nil {
			c.err = res.Err
			return
		}
		// Orphan any still-outstanding pages of the old sequence, then
		// rebuild from the fresh page 1.
		c.gen++
		c.items = nil
		c.index = make(map[string]int)
		c.pending = make(map[int]PageResult)
		c.inFlight = make(map[int]bool)
		c.appendStories(res.Stories)
		c.hasNext = res.HasNext
		c.nextAppend = 2
		c.nextFetch = 2
		c.loaded = true
		return
	}

	delete(c.inFlight, res.Req.Page)

	if res.Err != nil {
		c.err = res.Err
		if res.Req.Page < c.nextFetch {
			c.nextFetch = res.Req.Page
		}
		return
	}

	c.pending[res.Req.Page] = res
	for {
		next, ok := c.pending[c.nextAppend]
		if !ok {
			break
		}
		delete(c.pending, c.nextAppend)
		c.appendStories(next.Stories)
		c.hasNext = next.HasNext
		c.nextAppend++
		c.loaded = true
	}
}

func (c *Controller) appendStories(stories []api.Story) {
	for _, s := range stories {
		if _, dup := c.index[s.ID]; dup {
			continue
		}
		c.index[s.ID] = len(c.items)
		c.items = append(c.items, s)
	}
}

// ApplyVote overwrites a loaded story's vote fields with the
// server-confirmed triple. No-op when the story is not in the sequence.
func (c *Controller) ApplyVote(id string, res api.VoteResult) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	c.items[i].Upvotes = res.Upvotes
	c.items[i].Downvotes = res.Downvotes
	c.items[i].UserVote = res.Vote
}
