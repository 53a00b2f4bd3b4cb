package feed

import (
	"fmt"
	"net/url"
	"strings"
)

// The web frontend mirrors the active feed into its address bar using these
// query parameters. Emitting and parsing the same set keeps terminal share
// links and pasted web links interchangeable.

// Values encodes the query as URL parameters, carrying only non-empty
// fields. The default sort (recent) is omitted like any other unset field.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Country != "" {
		v.Set("country", q.Country)
	}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	if q.Sort != "" && q.Sort != SortRecent {
		v.Set("sort", string(q.Sort))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// ShareURL builds the canonical web link for the current feed view.
func (q Query) ShareURL(webBase string) string {
	base := strings.TrimRight(webBase, "/")
	enc := q.Values().Encode()
	if enc == "" {
		return base
	}
	return base + "/?" + enc
}

// ParseValues seeds a query from URL parameters. Unknown parameters are
// ignored; an unknown category or sort value is an error so a mistyped link
// fails loudly instead of silently showing the wrong feed.
func ParseValues(v url.Values) (Query, error) {
	q := DefaultQuery()
	if c := v.Get("category"); c != "" {
		if !ValidCategory(c) {
			return Query{}, fmt.Errorf("unknown category %q", c)
		}
		q.Category = c
	}
	q.Country = v.Get("country")
	q.Tag = v.Get("tag")
	q.Search = v.Get("search")
	if s := v.Get("sort"); s != "" {
		if !ValidSort(s) {
			return Query{}, fmt.Errorf("unknown sort mode %q", s)
		}
		q.Sort = SortMode(s)
	}
	return q, nil
}

// ParseShareURL extracts the feed query from a pasted web link.
func ParseShareURL(raw string) (Query, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Query{}, fmt.Errorf("parsing share url: %w", err)
	}
	return ParseValues(u.Query())
}
