package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobcrap/jobcrap-cli/internal/api"
	"github.com/jobcrap/jobcrap-cli/internal/auth"
	"github.com/jobcrap/jobcrap-cli/internal/browser"
	"github.com/jobcrap/jobcrap-cli/internal/cache"
	"github.com/jobcrap/jobcrap-cli/internal/config"
	"github.com/jobcrap/jobcrap-cli/internal/feed"
)

type mode int

const (
	modeFeed mode = iota
	modeSearch
	modeFilter
	modeInput
	modeDetail
	modeHelp
)

const translateLang = "en"

type App struct {
	cfg     *config.Config
	client  *api.Client
	store   *cache.Cache
	session *auth.Session

	ctrl   *feed.Controller
	cursor int
	mode   mode

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	// inputTarget names the field the text input is editing when in
	// modeInput: "tag", "country", or "comment".
	inputTarget string

	// searchSeq identifies the latest search keystroke; stale debounce
	// timers carry an older seq and are ignored.
	searchSeq int

	// pendingGen/pendingPage identify the in-flight fetch for the slow
	// notice; zeroed when the result lands.
	pendingGen  int
	pendingPage int

	detail *detailState

	notice string
	err    error
}

// RunOpts holds all collaborators for launching the TUI. The feed
// controller is constructed here and owned by the view for its lifetime.
type RunOpts struct {
	Cfg     *config.Config
	Client  *api.Client
	Store   *cache.Cache
	Session *auth.Session
	Query   feed.Query
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search stories..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	fb := newFilterBar()
	fb.active = opts.Query.Category

	a := &App{
		cfg:         opts.Cfg,
		client:      opts.Client,
		store:       opts.Store,
		session:     opts.Session,
		ctrl:        feed.NewController(opts.Query),
		searchInput: ti,
		spinner:     sp,
		filterBar:   fb,
	}
	if opts.Query.Search != "" {
		a.searchInput.SetValue(opts.Query.Search)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadMore(), a.spinner.Tick)
}

// loadMore dispatches the next page if the controller allows it.
func (a *App) loadMore() tea.Cmd {
	req, ok := a.ctrl.NextPage()
	if !ok {
		return nil
	}
	return a.dispatch(req)
}

func (a *App) dispatch(req feed.PageRequest) tea.Cmd {
	a.pendingGen = req.Gen
	a.pendingPage = req.Page
	return tea.Batch(a.fetchPageCmd(req), a.slowNoticeCmd(req), a.spinner.Tick)
}

// fetchPageCmd captures the request snapshot into the closure; the result
// carries it back so the controller can discard stale completions.
func (a *App) fetchPageCmd(req feed.PageRequest) tea.Cmd {
	client, store := a.client, a.store
	ttl := a.cfg.CacheTTLDuration()
	limit := a.cfg.GetPageSize()
	timeout := a.cfg.RequestTimeoutDuration()
	return func() tea.Msg {
		if !req.Refetch && store != nil {
			stories, hasNext, ok, err := store.GetPage(req.Query.Key(), req.Page, ttl)
			if err == nil && ok {
				return pageLoadedMsg{
					res: feed.PageResult{Req: req, Stories: stories, HasNext: hasNext},
				}
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		page, err := client.ListStories(ctx, req.Query.ListParams(req.Page, limit))
		if err != nil {
			return pageLoadedMsg{res: feed.PageResult{Req: req, Err: err}}
		}
		if store != nil {
			// A refetch replaces the whole sequence, so pages 2+ cached
			// under the old sequence must not survive alongside the
			// fresh page 1.
			if req.Refetch {
				store.InvalidatePages(req.Query.Key())
			}
			store.PutPage(req.Query.Key(), req.Page, page.Stories, page.Pagination.HasNext)
		}
		return pageLoadedMsg{
			res: feed.PageResult{Req: req, Stories: page.Stories, HasNext: page.Pagination.HasNext},
		}
	}
}

func (a *App) slowNoticeCmd(req feed.PageRequest) tea.Cmd {
	return tea.Tick(a.cfg.SlowNoticeDuration(), func(time.Time) tea.Msg {
		return slowFetchMsg{gen: req.Gen, page: req.Page}
	})
}

func (a *App) voteCmd(storyID, direction string) tea.Cmd {
	// Local precondition: no network call without a session.
	if !a.session.Authenticated() {
		a.notice = "sign in to vote: run `jobcrap login`"
		return nil
	}
	client, store := a.client, a.store
	timeout := a.cfg.RequestTimeoutDuration()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := client.Vote(ctx, storyID, direction)
		if err != nil {
			return errMsg{err: fmt.Errorf("vote failed: %w", err)}
		}
		if store != nil {
			store.InvalidateDetail(storyID)
		}
		return voteDoneMsg{storyID: storyID, result: *result}
	}
}

func (a *App) openDetailCmd(storyID string) tea.Cmd {
	client, store := a.client, a.store
	ttl := a.cfg.CacheTTLDuration()
	timeout := a.cfg.RequestTimeoutDuration()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var (
			story     api.Story
			fromCache bool
		)
		if store != nil {
			if cached, ok, err := store.GetDetail(storyID, ttl); err == nil && ok {
				story, fromCache = cached, true
			}
		}
		if !fromCache {
			fetched, err := client.GetStory(ctx, storyID)
			if err != nil {
				return errMsg{err: fmt.Errorf("loading story: %w", err)}
			}
			story = *fetched
			if store != nil {
				store.PutDetail(story)
			}
		}

		page, err := client.ListComments(ctx, storyID, 1, 50)
		if err != nil {
			// Comments are secondary; show the story anyway.
			return detailLoadedMsg{story: story}
		}
		return detailLoadedMsg{story: story, comments: page.Comments}
	}
}

func (a *App) translateCmd(storyID string) tea.Cmd {
	client := a.client
	timeout := a.cfg.RequestTimeoutDuration()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := client.Translate(ctx, storyID, translateLang)
		if err != nil {
			return errMsg{err: fmt.Errorf("translation failed: %w", err)}
		}
		return translationMsg{storyID: storyID, text: text}
	}
}

func (a *App) blockAuthorCmd(storyID string) tea.Cmd {
	if !a.session.Authenticated() {
		a.notice = "sign in to block authors: run `jobcrap login`"
		return nil
	}
	client := a.client
	timeout := a.cfg.RequestTimeoutDuration()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := client.BlockAuthor(ctx, storyID); err != nil {
			return errMsg{err: fmt.Errorf("block failed: %w", err)}
		}
		return authorBlockedMsg{storyID: storyID}
	}
}

func (a *App) postCommentCmd(storyID, text string) tea.Cmd {
	if !a.session.Authenticated() {
		a.notice = "sign in to comment: run `jobcrap login`"
		return nil
	}
	client := a.client
	timeout := a.cfg.RequestTimeoutDuration()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		comment, err := client.AddComment(ctx, storyID, text)
		if err != nil {
			return errMsg{err: fmt.Errorf("comment failed: %w", err)}
		}
		return commentPostedMsg{comment: *comment}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) permalink(storyID string) string {
	return strings.TrimRight(a.cfg.WebURL, "/") + "/story/" + storyID
}

// queryChanged runs after any filter/sort/search mutation that restarted
// the sequence: jump back to the top and kick off page 1.
func (a *App) queryChanged() tea.Cmd {
	a.cursor = 0
	a.err = nil
	a.notice = ""
	a.filterBar.active = a.ctrl.Query().Category
	return a.loadMore()
}

func (a *App) selectedStory() (api.Story, bool) {
	items := a.ctrl.Items()
	if len(items) == 0 || a.cursor >= len(items) {
		return api.Story{}, false
	}
	return items[a.cursor], true
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case pageLoadedMsg:
		if msg.res.Req.Gen == a.pendingGen && msg.res.Req.Page == a.pendingPage {
			a.pendingGen, a.pendingPage = 0, 0
			a.notice = ""
		}
		a.ctrl.Apply(msg.res)
		a.err = a.ctrl.Err()
		if a.cursor >= len(a.ctrl.Items()) {
			a.cursor = max(0, len(a.ctrl.Items())-1)
		}
		return a, nil

	case slowFetchMsg:
		if msg.gen == a.pendingGen && msg.page == a.pendingPage && a.ctrl.Loading() {
			a.notice = "taking longer than usual..."
		}
		return a, nil

	case searchDebounceMsg:
		if msg.seq != a.searchSeq {
			return a, nil
		}
		if a.ctrl.SetSearch(strings.TrimSpace(a.searchInput.Value())) {
			return a, a.queryChanged()
		}
		return a, nil

	case voteDoneMsg:
		a.ctrl.ApplyVote(msg.storyID, msg.result)
		if a.detail != nil && a.detail.story.ID == msg.storyID {
			a.detail.story.Upvotes = msg.result.Upvotes
			a.detail.story.Downvotes = msg.result.Downvotes
			a.detail.story.UserVote = msg.result.Vote
		}
		return a, nil

	case detailLoadedMsg:
		if a.detail != nil && a.detail.story.ID == msg.story.ID {
			a.detail.story = msg.story
			a.detail.comments = msg.comments
			a.detail.loading = false
		}
		return a, nil

	case translationMsg:
		if a.detail != nil && a.detail.story.ID == msg.storyID {
			a.detail.translation = msg.text
		}
		return a, nil

	case authorBlockedMsg:
		a.notice = "author blocked; their stories disappear on the next refresh"
		return a, nil

	case commentPostedMsg:
		if a.detail != nil && a.detail.story.ID == msg.comment.StoryID {
			a.detail.comments = append(a.detail.comments, msg.comment)
			a.detail.story.CommentCount++
		}
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.ctrl.Loading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeInput:
		return a.handleInputKey(msg)
	case modeDetail:
		return a.handleDetailKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeFeed
		}
		return a, nil
	}

	return a.handleFeedKey(msg)
}

func (a *App) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.ctrl.Items())-1 {
			a.cursor++
		}
		// Approaching the end of the loaded list is the load-more
		// sentinel.
		if a.cursor >= len(a.ctrl.Items())-3 {
			return a, a.loadMore()
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "g":
		a.cursor = 0
		return a, nil
	case "G":
		a.cursor = max(0, len(a.ctrl.Items())-1)
		return a, a.loadMore()
	case "enter":
		if story, ok := a.selectedStory(); ok {
			a.mode = modeDetail
			a.detail = &detailState{story: story, loading: true}
			return a, a.openDetailCmd(story.ID)
		}
		return a, nil
	case "u":
		if story, ok := a.selectedStory(); ok {
			return a, a.voteCmd(story.ID, "upvote")
		}
		return a, nil
	case "d":
		if story, ok := a.selectedStory(); ok {
			return a, a.voteCmd(story.ID, "downvote")
		}
		return a, nil
	case "o":
		if story, ok := a.selectedStory(); ok {
			return a, openBrowserCmd(a.permalink(story.ID))
		}
		return a, nil
	case "y":
		a.notice = "share: " + a.ctrl.Query().ShareURL(a.cfg.WebURL)
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Placeholder = "Search stories..."
		a.searchInput.SetValue(a.ctrl.Query().Search)
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "s":
		a.ctrl.SetSort(nextSort(a.ctrl.Query().Sort))
		return a, a.queryChanged()
	case "c":
		if a.ctrl.ClearFilters() {
			a.searchInput.SetValue("")
			return a, a.queryChanged()
		}
		return a, nil
	case "r":
		if req, ok := a.ctrl.Refetch(); ok {
			return a, a.dispatch(req)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func nextSort(s feed.SortMode) feed.SortMode {
	for i, m := range feed.SortModes {
		if m == s {
			return feed.SortModes[(i+1)%len(feed.SortModes)]
		}
	}
	return feed.SortRecent
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeFeed
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.searchSeq++
		if a.ctrl.SetSearch("") {
			return a, a.queryChanged()
		}
		return a, nil
	case "enter":
		// Commit immediately, bypassing the debounce timer.
		a.mode = modeFeed
		a.searchInput.Blur()
		a.searchSeq++
		if a.ctrl.SetSearch(strings.TrimSpace(a.searchInput.Value())) {
			return a, a.queryChanged()
		}
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() == before {
		// Cursor movement etc; don't rearm the debounce timer.
		return a, cmd
	}

	a.searchSeq++
	seq := a.searchSeq
	debounce := tea.Tick(a.cfg.SearchDebounceDuration(), func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
	return a, tea.Batch(cmd, debounce)
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeFeed
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		a.filterBar.moveLeft()
		return a, nil
	case "right", "l":
		a.filterBar.moveRight()
		return a, nil
	case " ", "enter":
		picked := a.filterBar.pick()
		if picked == a.ctrl.Query().Category {
			picked = "" // picking the active chip clears it
		}
		if a.ctrl.SetCategory(picked) {
			return a, a.queryChanged()
		}
		return a, nil
	case "t":
		a.mode = modeInput
		a.inputTarget = "tag"
		a.searchInput.Placeholder = "Filter by tag..."
		a.searchInput.SetValue(a.ctrl.Query().Tag)
		a.searchInput.Focus()
		return a, textinput.Blink
	case "n":
		a.mode = modeInput
		a.inputTarget = "country"
		a.searchInput.Placeholder = "Filter by country..."
		a.searchInput.SetValue(a.ctrl.Query().Country)
		a.searchInput.Focus()
		return a, textinput.Blink
	case "s":
		a.ctrl.SetSort(nextSort(a.ctrl.Query().Sort))
		return a, a.queryChanged()
	case "c":
		a.mode = modeFeed
		a.filterBar.filterMode = false
		if a.ctrl.ClearFilters() {
			a.searchInput.SetValue("")
			return a, a.queryChanged()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeFeed
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		return a, nil
	case "enter":
		value := strings.TrimSpace(a.searchInput.Value())
		target := a.inputTarget
		a.mode = modeFeed
		a.searchInput.Blur()
		a.searchInput.SetValue("")

		switch target {
		case "tag":
			if a.ctrl.SetTag(value) {
				return a, a.queryChanged()
			}
		case "country":
			if a.ctrl.SetCountry(value) {
				return a, a.queryChanged()
			}
		case "comment":
			if value != "" && a.detail != nil {
				a.mode = modeDetail
				return a, a.postCommentCmd(a.detail.story.ID, value)
			}
			a.mode = modeDetail
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.detail == nil {
		a.mode = modeFeed
		return a, nil
	}
	switch msg.String() {
	case "esc", "q":
		a.mode = modeFeed
		a.detail = nil
		return a, nil
	case "j", "down":
		a.detail.scroll++
		return a, nil
	case "k", "up":
		if a.detail.scroll > 0 {
			a.detail.scroll--
		}
		return a, nil
	case "u":
		return a, a.voteCmd(a.detail.story.ID, "upvote")
	case "d":
		return a, a.voteCmd(a.detail.story.ID, "downvote")
	case "t":
		if a.detail.translation == "" {
			return a, a.translateCmd(a.detail.story.ID)
		}
		a.detail.translation = ""
		return a, nil
	case "b":
		return a, a.blockAuthorCmd(a.detail.story.ID)
	case "a":
		a.mode = modeInput
		a.inputTarget = "comment"
		a.searchInput.Placeholder = "Add a comment..."
		a.searchInput.SetValue("")
		a.searchInput.Focus()
		return a, textinput.Blink
	case "o":
		return a, openBrowserCmd(a.permalink(a.detail.story.ID))
	}
	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  jobcrap")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	// Layout calculations
	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 2 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	// Header
	headerLeft := headerStyle.Render("jobcrap")
	headerRight := headerMetaStyle.Render(time.Now().Format("Jan 2"))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Filter bar, replaced by the text input while typing
	filter := a.filterBar.render(a.width, a.ctrl.Query().Sort)
	if a.mode == modeSearch || a.mode == modeInput {
		filter = a.searchInput.View()
	}

	var content string
	if a.mode == modeDetail && a.detail != nil {
		inner := a.detail.render(a.width-4, contentHeight)
		content = detailPaneStyle.Width(a.width - 2).Height(contentHeight).Render(inner)
	} else {
		inner := a.renderFeedList(contentHeight)
		content = listPaneActiveStyle.Width(a.width - 2).Height(contentHeight).Render(inner)
	}

	// Status bar
	authedAs := ""
	if a.session.Authenticated() {
		authedAs = a.session.DisplayName
		if authedAs == "" {
			authedAs = "signed in"
		}
	}
	status := renderStatusBar(statusInfo{
		storyCount:  len(a.ctrl.Items()),
		filterLabel: a.ctrl.Query().Label(),
		searching:   a.mode == modeSearch,
		loading:     a.ctrl.Loading(),
		authedAs:    authedAs,
		notice:      a.notice,
		err:         a.err,
	}, a.width)

	if a.ctrl.Loading() {
		status = a.spinner.View() + " " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderFeedList(height int) string {
	items := a.ctrl.Items()
	if len(items) == 0 {
		if !a.ctrl.Loaded() {
			return lipglossCenter("Loading stories...", a.width-4, height)
		}
		return lipglossCenter("No stories match — press c to clear filters", a.width-4, height)
	}
	exhausted := a.ctrl.Loaded() && !a.ctrl.HasNext()
	return renderList(items, a.cursor, height, a.width-4, exhausted)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("jobcrap")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Feed") + "\n" +
		"  j/k, ↑/↓     Move through stories\n" +
		"  g/G           Jump to top / bottom\n" +
		"  enter         Open story and comments\n" +
		"  u / d         Upvote / downvote\n" +
		"  o             Open story in browser\n" +
		"  y             Show share link for this feed\n" +
		"  r             Refetch the feed\n\n" +
		dim.Render("Filters") + "\n" +
		"  /             Search (debounced as you type)\n" +
		"  f             Category picker\n" +
		"  s             Cycle sort mode\n" +
		"  c             Clear all filters\n" +
		"  t / n         Tag / country filter (in picker)\n\n" +
		dim.Render("Story view") + "\n" +
		"  j/k           Scroll\n" +
		"  t             Toggle translation\n" +
		"  a             Add a comment\n" +
		"  b             Block this author\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
