package api

import "time"

// Story is one anonymous workplace story as returned by the platform API.
// Everything except the vote fields is read-only from the client's
// perspective; vote counts are reconciled from vote responses.
type Story struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	AuthorName      string    `json:"authorName,omitempty"`
	IsAnonymous     bool      `json:"isAnonymous"`
	Category        string    `json:"category,omitempty"`
	Country         string    `json:"country,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	Upvotes         int       `json:"upvotes"`
	Downvotes       int       `json:"downvotes"`
	UserVote        string    `json:"userVote,omitempty"`
	CommentCount    int       `json:"commentCount"`
	TriggerWarnings []string  `json:"triggerWarnings,omitempty"`
	Status          string    `json:"status,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Pagination mirrors the listing endpoint's pagination envelope.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
}

// StoryPage is one page of the story listing.
type StoryPage struct {
	Stories    []Story    `json:"stories"`
	Pagination Pagination `json:"pagination"`
}

// ListParams are the wire-level query parameters for the listing endpoint.
// Empty filter fields are omitted from the request entirely; Sort is the
// already-mapped server ordering key.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Country  string
	Tag      string
	Search   string
	Sort     string
}

// VoteResult is the server-confirmed outcome of a vote. Vote is "upvote",
// "downvote", or "" when the vote was retracted.
type VoteResult struct {
	Vote      string
	Upvotes   int
	Downvotes int
}

// Comment is one comment on a story.
type Comment struct {
	ID          string    `json:"id"`
	StoryID     string    `json:"storyId"`
	Text        string    `json:"text"`
	AuthorName  string    `json:"authorName,omitempty"`
	IsAnonymous bool      `json:"isAnonymous"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentPage is one page of a story's comments.
type CommentPage struct {
	Comments   []Comment  `json:"comments"`
	Pagination Pagination `json:"pagination"`
}

// SessionInfo is the backend session created from an identity-provider token.
type SessionInfo struct {
	Token       string `json:"token"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Settings is the authenticated user's settings readback.
type Settings struct {
	DisplayName     string `json:"displayName"`
	DefaultCountry  string `json:"defaultCountry,omitempty"`
	HideTriggering  bool   `json:"hideTriggering"`
	EmailOnComments bool   `json:"emailOnComments"`
}
