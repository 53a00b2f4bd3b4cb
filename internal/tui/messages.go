package tui

import (
	"github.com/jobcrap/jobcrap-cli/internal/api"
	"github.com/jobcrap/jobcrap-cli/internal/feed"
)

type pageLoadedMsg struct {
	res feed.PageResult
}

type voteDoneMsg struct {
	storyID string
	result  api.VoteResult
}

type detailLoadedMsg struct {
	story    api.Story
	comments []api.Comment
}

type commentPostedMsg struct {
	comment api.Comment
}

type translationMsg struct {
	storyID string
	text    string
}

type authorBlockedMsg struct {
	storyID string
}

// searchDebounceMsg fires when the search input has been quiet long enough.
// The seq number identifies the keystroke that armed the timer; only the
// latest one is honored.
type searchDebounceMsg struct {
	seq int
}

// slowFetchMsg fires when a page fetch has been pending long enough to
// warrant a "taking longer than usual" notice.
type slowFetchMsg struct {
	gen  int
	page int
}

type errMsg struct {
	err error
}
