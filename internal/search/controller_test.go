package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/model"
)

// fakeClock is a manually driven Clock.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	d       time.Duration
	f       func()
	fired   bool
	stopped bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// pending returns the timers that are neither fired nor stopped.
func (c *fakeClock) pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// fireAll fires every pending timer and returns how many fired.
func (c *fakeClock) fireAll() int {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

var errFake = errors.New("fake failure")

// fakeGateway serves canned users and repositories. Calls can be held back
// with gates; gated calls ignore context cancellation so that late results
// actually reach the controller.
type fakeGateway struct {
	mu        sync.Mutex
	users     map[string]*model.UserProfile
	repos     map[string][]model.Repository
	pageErr   map[int]error
	gates     map[string]chan struct{}
	userCalls []string
	repoCalls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		users:   make(map[string]*model.UserProfile),
		repos:   make(map[string][]model.Repository),
		pageErr: make(map[int]error),
		gates:   make(map[string]chan struct{}),
	}
}

func (g *fakeGateway) addUser(login string, repoCount int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[login] = &model.UserProfile{
		Login:           login,
		ProfileURL:      "https://github.com/" + login,
		PublicRepoCount: repoCount,
	}
	repos := make([]model.Repository, repoCount)
	for i := range repos {
		repos[i] = model.Repository{
			ID:   int64(len(login)*1000 + i + 1),
			Name: fmt.Sprintf("%s-repo-%d", login, i+1),
		}
	}
	g.repos[login] = repos
}

func (g *fakeGateway) failPage(page int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.pageErr, page)
		return
	}
	g.pageErr[page] = err
}

// gate holds back calls for key until the returned func is called.
func (g *fakeGateway) gate(key string) func() {
	ch := make(chan struct{})
	g.mu.Lock()
	g.gates[key] = ch
	g.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (g *fakeGateway) wait(key string) {
	g.mu.Lock()
	ch := g.gates[key]
	g.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (g *fakeGateway) FetchUser(_ context.Context, username string) (*model.UserProfile, error) {
	g.mu.Lock()
	g.userCalls = append(g.userCalls, username)
	g.mu.Unlock()

	g.wait("user:" + username)

	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.users[username]
	if !ok {
		return nil, errFake
	}
	p := *u
	return &p, nil
}

func (g *fakeGateway) FetchRepos(_ context.Context, username string, page, perPage int) ([]model.Repository, error) {
	g.mu.Lock()
	g.repoCalls = append(g.repoCalls, fmt.Sprintf("%s:%d", username, page))
	g.mu.Unlock()

	g.wait(fmt.Sprintf("repos:%s:%d", username, page))

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.pageErr[page]; err != nil {
		return nil, err
	}
	all, ok := g.repos[username]
	if !ok {
		return nil, errFake
	}
	start := (page - 1) * perPage
	if start >= len(all) {
		return []model.Repository{}, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	out := make([]model.Repository, end-start)
	copy(out, all[start:end])
	return out, nil
}

func (g *fakeGateway) calls() (users, repos []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.userCalls...), append([]string(nil), g.repoCalls...)
}

type harness struct {
	t       *testing.T
	c       *Controller
	clock   *fakeClock
	gw      *fakeGateway
	handled chan event
}

func newHarness(t *testing.T, gw *fakeGateway, opts ...Option) *harness {
	t.Helper()
	clock := &fakeClock{}
	h := &harness{
		t:       t,
		clock:   clock,
		gw:      gw,
		handled: make(chan event, 256),
	}
	opts = append([]Option{WithClock(clock)}, opts...)
	h.c = New(gw, opts...)
	h.c.afterHandle = func(ev event) {
		select {
		case h.handled <- ev:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.c.Done()
	})
	return h
}

// sync returns once every event posted so far has been applied.
func (h *harness) sync() State {
	return h.c.Snapshot()
}

// typeAndSettle changes the term and fires the debounce timer.
func (h *harness) typeAndSettle(term string) {
	h.c.OnSearchTermChanged(term)
	h.sync()
	h.clock.fireAll()
	h.sync()
}

// search runs a full search sequence and waits for it to complete.
func (h *harness) search(term string) State {
	h.t.Helper()
	h.typeAndSettle(term)
	return h.waitFor("search for "+term+" to finish", func(s State) bool { return !s.Loading })
}

func (h *harness) loadMore() State {
	h.t.Helper()
	h.c.LoadMore()
	h.sync()
	return h.waitFor("load more to finish", func(s State) bool { return !s.LoadingMore })
}

func (h *harness) waitFor(desc string, pred func(State) bool) State {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := h.c.Snapshot()
		if pred(s) {
			return s
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s; state: %+v", desc, s)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (h *harness) waitHandled(desc string, match func(event) bool) {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-h.handled:
			if match(ev) {
				return
			}
		case <-timeout:
			h.t.Fatalf("timed out waiting for %s", desc)
		}
	}
}

func (h *harness) waitCalls(desc string, pred func(users, repos []string) bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if pred(h.gw.calls()) {
			return
		}
		if time.Now().After(deadline) {
			users, repos := h.gw.calls()
			h.t.Fatalf("timed out waiting for %s; users=%v repos=%v", desc, users, repos)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func repoNames(repos []model.Repository) []string {
	names := make([]string, len(repos))
	for i, r := range repos {
		names[i] = r.Name
	}
	return names
}

func TestDebounceOnlyFinalTermSettles(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("ali", 1)
	h := newHarness(t, gw)

	for _, term := range []string{"a", "al", "ali"} {
		h.c.OnSearchTermChanged(term)
	}
	s := h.sync()

	if s.Term != "ali" {
		t.Errorf("Term = %q, want ali", s.Term)
	}
	pending := h.clock.pending()
	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending debounce timer, got %d", len(pending))
	}
	if pending[0].d != constants.DebounceDelay {
		t.Errorf("debounce delay = %v, want %v", pending[0].d, constants.DebounceDelay)
	}
	if users, _ := gw.calls(); len(users) != 0 {
		t.Fatalf("expected no requests before settle, got %v", users)
	}

	h.clock.fireAll()
	h.sync()
	s = h.waitFor("search to finish", func(s State) bool { return !s.Loading })

	users, _ := gw.calls()
	if !reflect.DeepEqual(users, []string{"ali"}) {
		t.Errorf("user lookups = %v, want [ali]", users)
	}
	if s.Profile == nil || s.Profile.Login != "ali" {
		t.Errorf("expected profile for ali, got %+v", s.Profile)
	}
}

func TestStaleTimerFireIgnored(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("bob", 1)
	h := newHarness(t, gw)

	h.c.OnSearchTermChanged("alice")
	h.sync()
	stale := h.clock.pending()[0]

	h.c.OnSearchTermChanged("bob")
	h.sync()

	// Simulate a timer that fired before Stop took effect.
	stale.f()
	h.sync()

	if users, _ := gw.calls(); len(users) != 0 {
		t.Fatalf("superseded timer triggered lookups: %v", users)
	}

	h.clock.fireAll()
	h.sync()
	h.waitFor("search to finish", func(s State) bool { return !s.Loading })

	users, _ := gw.calls()
	if !reflect.DeepEqual(users, []string{"bob"}) {
		t.Errorf("user lookups = %v, want [bob]", users)
	}
}

func TestStaleProfileDiscarded(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 3)
	gw.addUser("bob", 2)
	releaseAlice := gw.gate("user:alice")
	defer releaseAlice()
	h := newHarness(t, gw)

	h.typeAndSettle("alice")
	h.waitCalls("alice lookup to start", func(users, _ []string) bool { return len(users) == 1 })

	h.search("bob")

	releaseAlice()
	h.waitHandled("alice result", func(ev event) bool {
		r, ok := ev.(userResult)
		return ok && r.term == "alice"
	})

	s := h.sync()
	if s.Profile == nil || s.Profile.Login != "bob" {
		t.Fatalf("expected bob's profile, got %+v", s.Profile)
	}
	if s.ActiveTerm != "bob" {
		t.Errorf("ActiveTerm = %q, want bob", s.ActiveTerm)
	}
	if !reflect.DeepEqual(repoNames(s.Repos), []string{"bob-repo-1", "bob-repo-2"}) {
		t.Errorf("unexpected repos %v", repoNames(s.Repos))
	}
	if _, repos := gw.calls(); !reflect.DeepEqual(repos, []string{"bob:1"}) {
		t.Errorf("repo fetches = %v, want [bob:1]", repos)
	}
}

func TestStaleFirstPageDiscarded(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 3)
	gw.addUser("bob", 2)
	releaseAlice := gw.gate("repos:alice:1")
	defer releaseAlice()
	h := newHarness(t, gw)

	h.typeAndSettle("alice")
	h.waitCalls("alice repos to start", func(_, repos []string) bool { return len(repos) == 1 })

	// Typing alone makes alice's pending page stale.
	h.c.OnSearchTermChanged("bo")
	h.sync()

	releaseAlice()
	h.waitHandled("alice page", func(ev event) bool {
		r, ok := ev.(reposResult)
		return ok && r.term == "alice"
	})

	s := h.sync()
	if len(s.Repos) != 0 {
		t.Errorf("stale page applied: %v", repoNames(s.Repos))
	}
	if s.Loading {
		t.Error("superseded search should not leave Loading set")
	}

	s = h.search("bob")
	if !reflect.DeepEqual(repoNames(s.Repos), []string{"bob-repo-1", "bob-repo-2"}) {
		t.Errorf("unexpected repos %v", repoNames(s.Repos))
	}
}

func TestEmptyTermClearsState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		term  string
	}{
		{
			name:  "after success",
			setup: func(h *harness) { h.search("alice") },
			term:  "",
		},
		{
			name:  "after failure",
			setup: func(h *harness) { h.search("ghost") },
			term:  "",
		},
		{
			name:  "whitespace only",
			setup: func(h *harness) { h.search("alice") },
			term:  "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.addUser("alice", 2)
			h := newHarness(t, gw)
			tt.setup(h)

			h.typeAndSettle(tt.term)
			s := h.sync()

			if s.Profile != nil {
				t.Errorf("expected no profile, got %+v", s.Profile)
			}
			if len(s.Repos) != 0 {
				t.Errorf("expected no repos, got %v", repoNames(s.Repos))
			}
			if s.Err != "" {
				t.Errorf("expected no error, got %q", s.Err)
			}
			if s.Status() != StatusIdle {
				t.Errorf("Status() = %v, want idle", s.Status())
			}
			if s.Term != tt.term {
				t.Errorf("Term = %q, want raw input %q", s.Term, tt.term)
			}
		})
	}
}

func TestPaginationAccumulates(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 11)
	h := newHarness(t, gw)

	s := h.search("alice")
	if len(s.Repos) != 6 || !s.HasMore || s.Page != 1 {
		t.Fatalf("after first page: len=%d hasMore=%v page=%d, want 6/true/1", len(s.Repos), s.HasMore, s.Page)
	}

	s = h.loadMore()
	if len(s.Repos) != 11 || s.HasMore || s.Page != 2 {
		t.Fatalf("after second page: len=%d hasMore=%v page=%d, want 11/false/2", len(s.Repos), s.HasMore, s.Page)
	}
	if s.Repos[6].Name != "alice-repo-7" {
		t.Errorf("second page appended out of order: %v", repoNames(s.Repos))
	}

	// Exhausted: no further request.
	h.c.LoadMore()
	h.sync()
	if _, repos := gw.calls(); len(repos) != 2 {
		t.Errorf("expected 2 page fetches, got %v", repos)
	}
}

func TestPaginationExactMultiple(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 12)
	h := newHarness(t, gw)

	h.search("alice")
	s := h.loadMore()
	if len(s.Repos) != 12 || !s.HasMore {
		t.Fatalf("after second page: len=%d hasMore=%v, want 12/true", len(s.Repos), s.HasMore)
	}

	// The heuristic needs an empty page to notice exhaustion.
	s = h.loadMore()
	if len(s.Repos) != 12 || s.HasMore || s.Page != 3 {
		t.Fatalf("after third page: len=%d hasMore=%v page=%d, want 12/false/3", len(s.Repos), s.HasMore, s.Page)
	}
}

func TestPageSizeOption(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 7)
	h := newHarness(t, gw, WithPageSize(constants.LibraryPageSize))

	s := h.search("alice")
	if len(s.Repos) != 5 || !s.HasMore || s.PageSize != 5 {
		t.Fatalf("len=%d hasMore=%v pageSize=%d, want 5/true/5", len(s.Repos), s.HasMore, s.PageSize)
	}
}

func TestProfileNotFound(t *testing.T) {
	gw := newFakeGateway()
	h := newHarness(t, gw)

	s := h.search("ghost")

	if s.Profile != nil {
		t.Errorf("expected no profile, got %+v", s.Profile)
	}
	if len(s.Repos) != 0 {
		t.Errorf("expected no repos, got %v", repoNames(s.Repos))
	}
	if s.Err != constants.MsgUserNotFound {
		t.Errorf("Err = %q, want %q", s.Err, constants.MsgUserNotFound)
	}
	if s.Status() != StatusError {
		t.Errorf("Status() = %v, want error", s.Status())
	}
	if _, repos := gw.calls(); len(repos) != 0 {
		t.Errorf("repository fetch attempted after failed lookup: %v", repos)
	}
}

func TestFirstPageFailureSharesHandler(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 3)
	gw.failPage(1, errFake)
	h := newHarness(t, gw)

	s := h.search("alice")

	if s.Err != constants.MsgUserNotFound {
		t.Errorf("Err = %q, want %q", s.Err, constants.MsgUserNotFound)
	}
	if s.Profile != nil {
		t.Errorf("expected profile to be cleared, got %+v", s.Profile)
	}
	if len(s.Repos) != 0 {
		t.Errorf("expected no repos, got %v", repoNames(s.Repos))
	}
}

func TestErrorClearedOnNextSearch(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 1)
	h := newHarness(t, gw)

	h.search("ghost")
	s := h.search("alice")

	if s.Err != "" {
		t.Errorf("Err = %q, want empty", s.Err)
	}
	if s.Profile == nil || s.Profile.Login != "alice" {
		t.Errorf("expected alice's profile, got %+v", s.Profile)
	}
}

func TestLoadMoreFailurePreservesState(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 11)
	h := newHarness(t, gw)

	before := h.search("alice")
	gw.failPage(2, errFake)

	s := h.loadMore()
	if len(s.Repos) != len(before.Repos) {
		t.Errorf("repos changed on failure: %d -> %d", len(before.Repos), len(s.Repos))
	}
	if s.Page != before.Page {
		t.Errorf("Page advanced on failure: %d -> %d", before.Page, s.Page)
	}
	if !s.HasMore {
		t.Error("HasMore changed on failure")
	}
	if s.Err != constants.MsgLoadMoreFailed {
		t.Errorf("Err = %q, want %q", s.Err, constants.MsgLoadMoreFailed)
	}
	if s.Profile == nil || s.Profile.Login != "alice" {
		t.Errorf("profile should be kept, got %+v", s.Profile)
	}

	// Retrying succeeds and drops the load-more error.
	gw.failPage(2, nil)
	s = h.loadMore()
	if len(s.Repos) != 11 || s.Page != 2 {
		t.Errorf("retry: len=%d page=%d, want 11/2", len(s.Repos), s.Page)
	}
	if s.Err != "" {
		t.Errorf("Err = %q after successful retry, want empty", s.Err)
	}
}

func TestReSearchIsIdempotent(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 8)
	gw.addUser("bob", 3)

	h := newHarness(t, gw)
	h.search("alice")
	h.loadMore()
	h.search("bob")
	got := h.search("alice")

	fresh := newHarness(t, gw)
	want := fresh.search("alice")

	if !reflect.DeepEqual(got.Profile, want.Profile) {
		t.Errorf("profile differs: %+v vs %+v", got.Profile, want.Profile)
	}
	if !reflect.DeepEqual(repoNames(got.Repos), repoNames(want.Repos)) {
		t.Errorf("repos differ: %v vs %v", repoNames(got.Repos), repoNames(want.Repos))
	}
	if got.Page != want.Page || got.HasMore != want.HasMore || got.Err != want.Err {
		t.Errorf("cursor differs: %+v vs %+v", got, want)
	}
}

func TestLoadMoreIgnoredWhileInFlight(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 11)
	release := gw.gate("repos:alice:2")
	defer release()
	h := newHarness(t, gw)

	h.search("alice")
	h.c.LoadMore()
	h.c.LoadMore()
	s := h.sync()

	if !s.LoadingMore {
		t.Error("expected LoadingMore while page 2 is in flight")
	}
	if s.Loading {
		t.Error("load more must not set the primary Loading flag")
	}

	release()
	s = h.waitFor("load more to finish", func(s State) bool { return !s.LoadingMore })
	if len(s.Repos) != 11 {
		t.Errorf("expected 11 repos, got %d", len(s.Repos))
	}
	if _, repos := gw.calls(); !reflect.DeepEqual(repos, []string{"alice:1", "alice:2"}) {
		t.Errorf("repo fetches = %v, want [alice:1 alice:2]", repos)
	}
}

func TestLoadMoreWithoutActiveSearch(t *testing.T) {
	gw := newFakeGateway()
	h := newHarness(t, gw)

	h.c.LoadMore()
	s := h.sync()

	if s.LoadingMore {
		t.Error("LoadMore without an active term should be a no-op")
	}
	if _, repos := gw.calls(); len(repos) != 0 {
		t.Errorf("unexpected fetches %v", repos)
	}
}

func TestLoadMoreDiscardedAfterTermChange(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 11)
	gw.addUser("bob", 2)
	release := gw.gate("repos:alice:2")
	defer release()
	h := newHarness(t, gw)

	h.search("alice")
	h.c.LoadMore()
	h.waitCalls("page 2 to start", func(_, repos []string) bool { return len(repos) == 2 })

	h.search("bob")
	release()
	h.waitHandled("alice page 2", func(ev event) bool {
		r, ok := ev.(reposResult)
		return ok && r.term == "alice" && r.page == 2
	})

	s := h.sync()
	if !reflect.DeepEqual(repoNames(s.Repos), []string{"bob-repo-1", "bob-repo-2"}) {
		t.Errorf("stale page leaked into bob's results: %v", repoNames(s.Repos))
	}
	if s.Page != 1 || s.LoadingMore {
		t.Errorf("page=%d loadingMore=%v, want 1/false", s.Page, s.LoadingMore)
	}
}

func TestLoadMoreDuringDebounceDiscarded(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 11)
	gw.addUser("bob", 2)
	release := gw.gate("repos:alice:2")
	defer release()
	h := newHarness(t, gw)

	h.search("alice")

	// Keystroke without settling: alice's results are still shown.
	h.c.OnSearchTermChanged("bob")
	if s := h.sync(); !s.CanLoadMore() {
		t.Fatalf("expected load more to be available before the settle; state: %+v", s)
	}
	h.c.LoadMore()
	h.waitCalls("alice page 2 to start", func(_, repos []string) bool { return len(repos) == 2 })

	h.clock.fireAll()
	if s := h.sync(); s.LoadingMore {
		t.Errorf("LoadingMore should be cleared by the settle")
	}
	s := h.waitFor("search for bob to finish", func(s State) bool { return !s.Loading })
	if s.LoadingMore {
		t.Errorf("LoadingMore = true after bob's search")
	}

	release()
	h.waitHandled("alice page 2", func(ev event) bool {
		r, ok := ev.(reposResult)
		return ok && r.term == "alice" && r.page == 2
	})

	s = h.sync()
	if s.Profile == nil || s.Profile.Login != "bob" {
		t.Fatalf("profile = %+v, want bob", s.Profile)
	}
	if !reflect.DeepEqual(repoNames(s.Repos), []string{"bob-repo-1", "bob-repo-2"}) {
		t.Errorf("alice's page leaked into bob's results: %v", repoNames(s.Repos))
	}
	if s.Page != 1 || s.LoadingMore {
		t.Errorf("page=%d loadingMore=%v, want 1/false", s.Page, s.LoadingMore)
	}
}

func TestLoadingFlagDuringSearch(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 1)
	release := gw.gate("user:alice")
	defer release()
	h := newHarness(t, gw)

	h.typeAndSettle("alice")
	s := h.sync()
	if s.Status() != StatusLoading {
		t.Errorf("Status() = %v, want loading", s.Status())
	}

	release()
	s = h.waitFor("search to finish", func(s State) bool { return !s.Loading })
	if s.Status() != StatusIdle {
		t.Errorf("Status() = %v, want idle", s.Status())
	}
}

func TestUpdatesAndOnChange(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 1)

	var mu sync.Mutex
	var seen []State
	h := newHarness(t, gw, WithOnChange(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))

	h.search("alice")

	select {
	case s := <-h.c.Updates():
		if s.Profile == nil || s.Loading {
			t.Errorf("expected the latest completed state, got %+v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an update")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 3 {
		t.Fatalf("expected at least 3 change notifications, got %d", len(seen))
	}
	if seen[0].Term != "alice" || seen[0].Loading {
		t.Errorf("first notification should be the keystroke, got %+v", seen[0])
	}
}

func TestSnapshotIsolated(t *testing.T) {
	gw := newFakeGateway()
	gw.addUser("alice", 2)
	h := newHarness(t, gw)

	s := h.search("alice")
	s.Repos[0].Name = "mutated"
	s.Profile.Login = "mutated"

	again := h.sync()
	if again.Repos[0].Name == "mutated" || again.Profile.Login == "mutated" {
		t.Error("snapshot shares memory with controller state")
	}
}

func TestRunStops(t *testing.T) {
	c := New(newFakeGateway(), WithClock(&fakeClock{}))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	c.OnSearchTermChanged("alice")
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Calls after shutdown must not block.
	c.OnSearchTermChanged("bob")
	if s := c.Snapshot(); s.Term != "" {
		t.Errorf("expected zero state after Run exits, got %+v", s)
	}
}

func TestStateStatus(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Status
	}{
		{"idle", State{}, StatusIdle},
		{"loading", State{Loading: true}, StatusLoading},
		{"loading wins over stale error", State{Loading: true, Err: "x"}, StatusLoading},
		{"error", State{Err: constants.MsgUserNotFound}, StatusError},
		{"loading more is not loading", State{LoadingMore: true}, StatusIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.want {
				t.Errorf("Status() = %v, want %v", got, tt.want)
			}
		})
	}
}
