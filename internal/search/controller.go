// Package search implements the debounced user search and repository
// pagination behind the interactive widget.
//
// A Controller owns all search state. Its exported methods only post events;
// the events are applied one at a time by the goroutine running Run, so state
// is never shared between goroutines. Network calls run on worker goroutines
// and report back as events tagged with the generation they were started
// under. Results whose generation is no longer current are dropped.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/log"
	"github.com/spiffcs/usersearch/internal/model"
)

// Gateway is the API the controller fetches from.
type Gateway interface {
	FetchUser(ctx context.Context, username string) (*model.UserProfile, error)
	FetchRepos(ctx context.Context, username string, page, perPage int) ([]model.Repository, error)
}

// Controller turns rapidly changing input into debounced search sequences and
// manages pagination for "load more".
type Controller struct {
	gw       Gateway
	debounce time.Duration
	pageSize int
	clock    Clock
	onChange func(State)

	events  chan event
	updates chan State
	done    chan struct{}

	// afterHandle is called on the loop goroutine after every event. Tests only.
	afterHandle func(event)

	// Everything below is owned by the Run goroutine.
	ctx          context.Context
	state        State
	gen          uint64
	timer        Timer
	searchCtx    context.Context
	cancelSearch context.CancelFunc
	cancelMore   context.CancelFunc
}

// Option is a functional option for configuring a Controller.
type Option func(*Controller)

// WithDebounce sets how long input must be stable before a search starts.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithPageSize sets the number of repositories requested per page.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock replaces the clock used for the debounce timer.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithOnChange registers a callback invoked with a snapshot after every state
// change. It runs on the controller goroutine and must not call back into the
// controller synchronously.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates a controller. Call Run to start processing events.
func New(gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:       gw,
		debounce: constants.DebounceDelay,
		pageSize: constants.PageSize,
		clock:    realClock{},
		events:   make(chan event, 64),
		updates:  make(chan State, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.PageSize = c.pageSize
	return c
}

// Run processes events until ctx is cancelled. It stops the pending debounce
// timer and aborts in-flight requests before returning. Run must be called
// exactly once.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer close(c.done)
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			c.handle(ev)
			if c.afterHandle != nil {
				c.afterHandle(ev)
			}
		}
	}
}

// OnSearchTermChanged records term and (re)schedules the debounced search.
func (c *Controller) OnSearchTermChanged(term string) {
	c.post(termChanged{term: term})
}

// LoadMore fetches the next page of repositories for the active term. It is
// a no-op when there is nothing more to load or a load is already running.
func (c *Controller) LoadMore() {
	c.post(loadMore{})
}

// Snapshot returns a copy of the current state. It returns the zero State
// once Run has exited.
func (c *Controller) Snapshot() State {
	reply := make(chan State, 1)
	c.post(snapshotRequest{reply: reply})
	select {
	case s := <-reply:
		return s
	case <-c.done:
		return State{}
	}
}

// Updates delivers a snapshot after every state change. Only the latest
// snapshot is buffered; slow readers skip intermediate states.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) handle(ev event) {
	switch ev := ev.(type) {
	case termChanged:
		c.onTermChanged(ev.term)
	case settleFired:
		c.settle(ev.gen)
	case userResult:
		c.onUserResult(ev)
	case reposResult:
		if ev.initial {
			c.onFirstPage(ev)
		} else {
			c.onNextPage(ev)
		}
	case loadMore:
		c.loadMore()
	case snapshotRequest:
		ev.reply <- c.state.clone()
	}
}

func (c *Controller) onTermChanged(term string) {
	c.state.Term = term

	// Anything in flight now belongs to a superseded term.
	c.gen++
	c.abortSearch()
	c.abortLoadMore()

	if c.timer != nil {
		c.timer.Stop()
	}
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.debounce, func() {
		c.post(settleFired{gen: gen})
	})

	c.publish()
}

func (c *Controller) settle(gen uint64) {
	if gen != c.gen {
		// A timer that fired after being superseded.
		return
	}
	c.timer = nil

	// A load more issued during the debounce window still targets the
	// previous ActiveTerm; neither it nor its page may survive the settle.
	c.abortLoadMore()
	c.gen++
	gen = c.gen

	term := strings.TrimSpace(c.state.Term)
	if term == "" {
		c.state.clearResults()
		c.state.Err = ""
		c.state.Loading = false
		c.publish()
		return
	}

	log.Info("search", "term", term, "gen", gen)

	c.state.clearResults()
	c.state.ActiveTerm = term
	c.state.Loading = true
	c.state.Err = ""
	c.publish()

	ctx, cancel := context.WithCancel(c.ctx)
	c.searchCtx = ctx
	c.cancelSearch = cancel

	go func() {
		profile, err := c.gw.FetchUser(ctx, term)
		c.post(userResult{gen: gen, term: term, profile: profile, err: err})
	}()
}

func (c *Controller) onUserResult(ev userResult) {
	if ev.gen != c.gen {
		log.Debug("discarding stale profile", "term", ev.term, "gen", ev.gen, "current", c.gen)
		return
	}
	if ev.err != nil {
		c.failSearch(ev.term, ev.err)
		return
	}

	c.state.Profile = ev.profile
	c.publish()

	ctx, gen, term, size := c.searchCtx, ev.gen, ev.term, c.pageSize
	go func() {
		repos, err := c.gw.FetchRepos(ctx, term, 1, size)
		c.post(reposResult{gen: gen, term: term, page: 1, repos: repos, err: err, initial: true})
	}()
}

func (c *Controller) onFirstPage(ev reposResult) {
	if ev.gen != c.gen {
		log.Debug("discarding stale repositories", "term", ev.term, "page", ev.page, "gen", ev.gen, "current", c.gen)
		return
	}
	if ev.err != nil {
		// Same handler as the profile lookup.
		c.failSearch(ev.term, ev.err)
		return
	}

	c.state.Repos = ev.repos
	c.state.Page = 1
	c.state.HasMore = len(ev.repos) == c.pageSize
	c.state.Loading = false
	c.finishSearch()

	log.Info("search complete", "term", ev.term, "repos", len(ev.repos), "has_more", c.state.HasMore)
	c.publish()
}

func (c *Controller) failSearch(term string, err error) {
	log.Debug("search failed", "term", term, "error", err)

	c.state.clearResults()
	c.state.Err = constants.MsgUserNotFound
	c.state.Loading = false
	c.finishSearch()
	c.publish()
}

func (c *Controller) loadMore() {
	if !c.state.CanLoadMore() {
		log.Debug("load more ignored", "has_more", c.state.HasMore, "loading", c.state.Loading, "loading_more", c.state.LoadingMore)
		return
	}

	next := c.state.Page + 1
	term, gen, size := c.state.ActiveTerm, c.gen, c.pageSize
	log.Info("load more", "term", term, "page", next)

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelMore = cancel
	c.state.LoadingMore = true
	c.publish()

	go func() {
		repos, err := c.gw.FetchRepos(ctx, term, next, size)
		c.post(reposResult{gen: gen, term: term, page: next, repos: repos, err: err})
	}()
}

func (c *Controller) onNextPage(ev reposResult) {
	if ev.gen != c.gen {
		log.Debug("discarding stale page", "term", ev.term, "page", ev.page, "gen", ev.gen, "current", c.gen)
		return
	}

	c.state.LoadingMore = false
	if c.cancelMore != nil {
		c.cancelMore()
		c.cancelMore = nil
	}

	if ev.err != nil {
		log.Debug("load more failed", "term", ev.term, "page", ev.page, "error", ev.err)
		c.state.Err = constants.MsgLoadMoreFailed
		c.publish()
		return
	}

	// No de-duplication: the API is the source of truth for page contents.
	c.state.Repos = append(c.state.Repos, ev.repos...)
	c.state.Page = ev.page
	c.state.HasMore = len(ev.repos) == c.pageSize
	if c.state.Err == constants.MsgLoadMoreFailed {
		c.state.Err = ""
	}
	c.publish()
}

// finishSearch releases the context of a completed search sequence.
func (c *Controller) finishSearch() {
	if c.cancelSearch != nil {
		c.cancelSearch()
	}
	c.cancelSearch = nil
	c.searchCtx = nil
}

func (c *Controller) abortSearch() {
	if c.cancelSearch == nil {
		return
	}
	c.finishSearch()
	c.state.Loading = false
}

func (c *Controller) abortLoadMore() {
	if c.cancelMore == nil {
		return
	}
	c.cancelMore()
	c.cancelMore = nil
	c.state.LoadingMore = false
}

func (c *Controller) shutdown() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.abortSearch()
	c.abortLoadMore()
}

func (c *Controller) publish() {
	s := c.state.clone()
	if c.onChange != nil {
		c.onChange(s)
	}
	// Latest wins. The loop is the only sender, so the drain cannot race
	// another send.
	select {
	case <-c.updates:
	default:
	}
	c.updates <- s
}
