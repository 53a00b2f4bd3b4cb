package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the jobcrap platform API. The zero token means
// unauthenticated: read operations work, mutating operations are rejected
// locally without a network round-trip.
type Client struct {
	base  string
	http  *http.Client
	token string
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url scheme must be http or https, got %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}, nil
}

// SetToken attaches a backend session token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Authenticated reports whether a session token is set.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// ListStories fetches one page of the story feed. Unset filter params are
// omitted from the request entirely.
func (c *Client) ListStories(ctx context.Context, p ListParams) (*StoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Country != "" {
		q.Set("country", p.Country)
	}
	if p.Tag != "" {
		q.Set("tag", p.Tag)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}

	var page StoryPage
	if err := c.getJSON(ctx, "/stories?"+q.Encode(), &page); err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	return &page, nil
}

// GetStory fetches a single story by id.
func (c *Client) GetStory(ctx context.Context, id string) (*Story, error) {
	var wrapper struct {
		Story Story `json:"story"`
	}
	if err := c.getJSON(ctx, "/stories/"+url.PathEscape(id), &wrapper); err != nil {
		return nil, fmt.Errorf("fetching story %s: %w", id, err)
	}
	return &wrapper.Story, nil
}

// Vote casts or toggles a vote on a story. The server owns the toggle
// semantics; the returned triple is authoritative and should replace the
// local counts as-is.
func (c *Client) Vote(ctx context.Context, storyID, direction string) (*VoteResult, error) {
	if !c.Authenticated() {
		return nil, ErrAuthRequired
	}
	if direction != "upvote" && direction != "downvote" {
		return nil, fmt.Errorf("invalid vote direction %q", direction)
	}

	body := map[string]string{"voteType": direction}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Vote  *string `json:"vote"`
			Story struct {
				Upvotes   int `json:"upvotes"`
				Downvotes int `json:"downvotes"`
			} `json:"story"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "/stories/"+url.PathEscape(storyID)+"/vote", body, &resp); err != nil {
		return nil, fmt.Errorf("voting on story %s: %w", storyID, err)
	}

	result := &VoteResult{
		Upvotes:   resp.Data.Story.Upvotes,
		Downvotes: resp.Data.Story.Downvotes,
	}
	if resp.Data.Vote != nil {
		result.Vote = *resp.Data.Vote
	}
	return result, nil
}

// ListComments fetches one page of a story's comments.
func (c *Client) ListComments(ctx context.Context, storyID string, page, limit int) (*CommentPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out CommentPage
	if err := c.getJSON(ctx, "/comments/"+url.PathEscape(storyID)+"?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("listing comments for %s: %w", storyID, err)
	}
	return &out, nil
}

// AddComment posts a comment on a story. Requires authentication.
func (c *Client) AddComment(ctx context.Context, storyID, text string) (*Comment, error) {
	if !c.Authenticated() {
		return nil, ErrAuthRequired
	}
	var wrapper struct {
		Comment Comment `json:"comment"`
	}
	err := c.postJSON(ctx, "/comments/"+url.PathEscape(storyID), map[string]string{"text": text}, &wrapper)
	if err != nil {
		return nil, fmt.Errorf("adding comment to %s: %w", storyID, err)
	}
	return &wrapper.Comment, nil
}

// Translate returns the story text translated into targetLang.
func (c *Client) Translate(ctx context.Context, storyID, targetLang string) (string, error) {
	body := map[string]string{"targetLanguage": targetLang}
	var resp struct {
		Translation string `json:"translation"`
	}
	if err := c.postJSON(ctx, "/translate/"+url.PathEscape(storyID), body, &resp); err != nil {
		return "", fmt.Errorf("translating story %s: %w", storyID, err)
	}
	return resp.Translation, nil
}

// Settings reads the authenticated user's settings.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	if !c.Authenticated() {
		return nil, ErrAuthRequired
	}
	var s Settings
	if err := c.getJSON(ctx, "/settings", &s); err != nil {
		return nil, fmt.Errorf("fetching settings: %w", err)
	}
	return &s, nil
}

// BlockAuthor blocks the (anonymous) author of the given story for the
// current user. Requires authentication.
func (c *Client) BlockAuthor(ctx context.Context, storyID string) error {
	if !c.Authenticated() {
		return ErrAuthRequired
	}
	if err := c.postJSON(ctx, "/block/"+url.PathEscape(storyID), struct{}{}, nil); err != nil {
		return fmt.Errorf("blocking author of %s: %w", storyID, err)
	}
	return nil
}

// CreateSession exchanges an identity-provider token for a backend session.
func (c *Client) CreateSession(ctx context.Context, providerToken string) (*SessionInfo, error) {
	body := map[string]string{"idToken": providerToken}
	var info SessionInfo
	if err := c.postJSON(ctx, "/auth/session", body, &info); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &info, nil
}

// DeleteSession invalidates the backend session for the current token.
func (c *Client) DeleteSession(ctx context.Context) error {
	if !c.Authenticated() {
		return ErrAuthRequired
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/auth/session", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return nil
}

// getJSON issues a GET and decodes the JSON response. Transport-level
// failures get a single retry; HTTP error statuses do not.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		resp, err = c.get(ctx, path)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.http.Do(req)
}

func decodeError(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		msg = body.Error
		if msg == "" {
			msg = body.Message
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
