package feed

import (
	"net/url"
	"strings"

	"github.com/jobcrap/jobcrap-cli/internal/api"
)

// SortMode is one of the feed orderings offered by the platform.
type SortMode string

const (
	SortRecent        SortMode = "recent"
	SortTop           SortMode = "top"
	SortTrending      SortMode = "trending"
	SortDiscussed     SortMode = "discussed"
	SortControversial SortMode = "controversial"
)

// SortModes lists all orderings in display order.
var SortModes = []SortMode{SortRecent, SortTop, SortTrending, SortDiscussed, SortControversial}

// apiParam maps a sort mode to the server-side ordering key. The mapping is
// part of the backend contract and must not change.
func (s SortMode) apiParam() string {
	switch s {
	case SortTop:
		return "-upvotes"
	case SortTrending:
		return "trending"
	case SortDiscussed:
		return "discussed"
	case SortControversial:
		return "controversial"
	default:
		return "-createdAt"
	}
}

// ValidSort reports whether s names a known sort mode.
func ValidSort(s string) bool {
	for _, m := range SortModes {
		if string(m) == s {
			return true
		}
	}
	return false
}

// Categories is the fixed category set stories can be filed under.
var Categories = []string{"dark", "funny", "scary", "sad", "wholesome", "wild"}

// ValidCategory reports whether c is one of the known categories.
// The empty string means "all" and is always valid.
func ValidCategory(c string) bool {
	if c == "" {
		return true
	}
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Query is the combined filter+sort selection driving the feed. Each filter
// dimension is single-select; the empty string means unset. Any field change
// restarts pagination from page 1.
type Query struct {
	Category string
	Country  string
	Tag      string
	Search   string
	Sort     SortMode
}

// DefaultQuery is the unfiltered feed, newest first.
func DefaultQuery() Query {
	return Query{Sort: SortRecent}
}

// ListParams converts the query into wire parameters for one page.
func (q Query) ListParams(page, limit int) api.ListParams {
	return api.ListParams{
		Page:     page,
		Limit:    limit,
		Category: q.Category,
		Country:  q.Country,
		Tag:      q.Tag,
		Search:   q.Search,
		Sort:     q.Sort.apiParam(),
	}
}

// Key is a canonical fingerprint of the query, used to key the page cache so
// distinct filters never collide. Each field is escaped so free-text values
// containing the separator characters cannot forge another field.
func (q Query) Key() string {
	return strings.Join([]string{
		"c=" + url.QueryEscape(q.Category),
		"n=" + url.QueryEscape(q.Country),
		"t=" + url.QueryEscape(q.Tag),
		"s=" + url.QueryEscape(q.Search),
		"o=" + url.QueryEscape(string(q.Sort)),
	}, "&")
}

// IsFiltered reports whether any filter dimension is active.
func (q Query) IsFiltered() bool {
	return q.Category != "" || q.Country != "" || q.Tag != "" || q.Search != ""
}

// Label is a short human-readable summary of the active filters.
func (q Query) Label() string {
	var parts []string
	if q.Category != "" {
		parts = append(parts, q.Category)
	}
	if q.Country != "" {
		parts = append(parts, q.Country)
	}
	if q.Tag != "" {
		parts = append(parts, "#"+q.Tag)
	}
	if q.Search != "" {
		parts = append(parts, `"`+q.Search+`"`)
	}
	if len(parts) == 0 {
		return "All"
	}
	return strings.Join(parts, " · ")
}
