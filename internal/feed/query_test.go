package feed

import "testing"

func TestSortModeAPIParams(t *testing.T) {
	// Backend contract: this mapping must be preserved exactly.
	tests := []struct {
		mode SortMode
		want string
	}{
		{SortRecent, "-createdAt"},
		{SortTop, "-upvotes"},
		{SortTrending, "trending"},
		{SortDiscussed, "discussed"},
		{SortControversial, "controversial"},
	}
	for _, tt := range tests {
		p := Query{Sort: tt.mode}.ListParams(1, 10)
		if p.Sort != tt.want {
			t.Errorf("sort %s maps to %q, want %q", tt.mode, p.Sort, tt.want)
		}
	}
}

func TestListParamsCarryFilters(t *testing.T) {
	q := Query{Category: "funny", Country: "Brazil", Tag: "hr", Search: "layoff", Sort: SortTop}
	p := q.ListParams(3, 25)

	if p.Page != 3 || p.Limit != 25 {
		t.Errorf("pagination not carried: page=%d limit=%d", p.Page, p.Limit)
	}
	if p.Category != "funny" || p.Country != "Brazil" || p.Tag != "hr" || p.Search != "layoff" {
		t.Errorf("filters not carried: %+v", p)
	}
}

func TestQueryKeyDistinguishesFilters(t *testing.T) {
	a := Query{Category: "funny", Sort: SortRecent}
	b := Query{Category: "sad", Sort: SortRecent}
	c := Query{Category: "funny", Sort: SortTop}

	if a.Key() == b.Key() {
		t.Error("different categories produced the same cache key")
	}
	if a.Key() == c.Key() {
		t.Error("different sorts produced the same cache key")
	}
	if a.Key() != (Query{Category: "funny", Sort: SortRecent}).Key() {
		t.Error("equal queries produced different cache keys")
	}
}

func TestQueryKeySurvivesSeparatorsInValues(t *testing.T) {
	// Free-text fields may contain the fingerprint's own separator
	// characters; they must not let one query forge another's key.
	q1 := Query{Tag: "x&s=y", Sort: SortRecent}
	q2 := Query{Tag: "x", Search: "y&s=", Sort: SortRecent}
	if q1.Key() == q2.Key() {
		t.Errorf("distinct queries collide on cache key %q", q1.Key())
	}

	q3 := Query{Search: "a=b&c", Sort: SortRecent}
	q4 := Query{Search: "a=b", Country: "c", Sort: SortRecent}
	if q3.Key() == q4.Key() {
		t.Errorf("distinct queries collide on cache key %q", q3.Key())
	}
}

func TestQueryLabel(t *testing.T) {
	if got := DefaultQuery().Label(); got != "All" {
		t.Errorf("default label = %q, want All", got)
	}
	q := Query{Category: "dark", Tag: "oncall", Search: "pager", Sort: SortRecent}
	want := `dark · #oncall · "pager"`
	if got := q.Label(); got != want {
		t.Errorf("label = %q, want %q", got, want)
	}
}

func TestValidCategory(t *testing.T) {
	if !ValidCategory("") || !ValidCategory("wholesome") {
		t.Error("expected empty and known categories to validate")
	}
	if ValidCategory("melancholy") {
		t.Error("unknown category validated")
	}
}
