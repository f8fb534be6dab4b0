package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/log"
	"github.com/spiffcs/usersearch/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Client is the API gateway used by the search controller. It exposes the two
// read-only operations the widget needs and collapses identical concurrent
// requests into one.
type Client struct {
	client    *gh.Client
	rateLimit *RateLimitState
	group     singleflight.Group
	timeout   time.Duration
	// authenticated is reported in logs only; the token itself is never kept.
	authenticated bool
}

// Option is a functional option for configuring a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
}

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests).
func WithBaseURL(base string) Option {
	return func(o *clientOptions) {
		o.baseURL = base
	}
}

// WithToken authenticates requests with a personal access token. An empty
// token leaves the client unauthenticated.
func WithToken(token string) Option {
	return func(o *clientOptions) {
		o.token = token
	}
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// with rate limit tracking.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithTimeout bounds each shared request.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// NewClient creates a new gateway client. Without a token the client makes
// anonymous requests, subject to the anonymous rate limit.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	o := &clientOptions{
		baseURL: constants.DefaultBaseURL,
		timeout: constants.RequestTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	hc := o.httpClient
	switch {
	case o.token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.token})
		if o.httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
		}
		hc = oauth2.NewClient(ctx, ts)
	case hc == nil:
		hc = &http.Client{}
	default:
		// Copy so the caller's client is not mutated.
		copied := *hc
		hc = &copied
	}

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	state := newRateLimitState()
	hc.Transport = &rateLimitTransport{base: base, state: state}

	client := gh.NewClient(hc)
	baseURL, err := parseBaseURL(o.baseURL)
	if err != nil {
		return nil, err
	}
	client.BaseURL = baseURL

	return &Client{
		client:        client,
		rateLimit:     state,
		timeout:       o.timeout,
		authenticated: o.token != "",
	}, nil
}

// parseBaseURL parses an API root and guarantees the trailing slash go-github requires.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", raw)
	}
	return u, nil
}

// Authenticated reports whether requests carry a token.
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// RateLimit returns the rate limit state observed on the most recent response.
func (c *Client) RateLimit() RateLimitStatus {
	return c.rateLimit.Status()
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, classify(err, ErrFetch, "get rate limits")
	}
	return limits, nil
}

// FetchUser issues GET {base}/users/{username}.
func (c *Client) FetchUser(ctx context.Context, username string) (*model.UserProfile, error) {
	// go-github treats an empty name as "the authenticated user"
	if username == "" {
		return nil, fmt.Errorf("fetch user: %w: empty username", ErrNotFound)
	}

	key := "user:" + username
	v, err := c.shared(ctx, key, func(ctx context.Context) (any, error) {
		start := time.Now()
		user, _, err := c.client.Users.Get(ctx, url.PathEscape(username))
		log.Debug("api call", "op", "users.get", "user", username, "duration", time.Since(start), "error", err)
		if err != nil {
			return nil, classify(err, ErrNotFound, fmt.Sprintf("fetch user %q", username))
		}
		return userToProfile(user), nil
	})
	if err != nil {
		return nil, err
	}
	profile := *v.(*model.UserProfile)
	return &profile, nil
}

// FetchRepos issues GET {base}/users/{username}/repos?page={page}&per_page={perPage}&sort=updated.
// A perPage of zero or less uses constants.LibraryPageSize. Results keep the
// order returned by the API (most recently updated first).
func (c *Client) FetchRepos(ctx context.Context, username string, page, perPage int) ([]model.Repository, error) {
	if username == "" {
		return nil, fmt.Errorf("fetch repos: %w: empty username", ErrFetch)
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = constants.LibraryPageSize
	}

	key := fmt.Sprintf("repos:%s:%d:%d", username, page, perPage)
	v, err := c.shared(ctx, key, func(ctx context.Context) (any, error) {
		opts := &gh.RepositoryListByUserOptions{
			Sort: constants.RepoSort,
			ListOptions: gh.ListOptions{
				Page:    page,
				PerPage: perPage,
			},
		}
		start := time.Now()
		repos, _, err := c.client.Repositories.ListByUser(ctx, url.PathEscape(username), opts)
		log.Debug("api call", "op", "repos.list", "user", username, "page", page, "per_page", perPage,
			"count", len(repos), "duration", time.Since(start), "error", err)
		if err != nil {
			return nil, classify(err, ErrFetch, fmt.Sprintf("fetch repos %q page %d", username, page))
		}
		result := make([]model.Repository, 0, len(repos))
		for _, r := range repos {
			result = append(result, repoToModel(r))
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	// Each caller gets its own slice so appends never alias.
	shared := v.([]model.Repository)
	out := make([]model.Repository, len(shared))
	copy(out, shared)
	return out, nil
}

// shared runs fn once per key among concurrent callers. The request runs on a
// context detached from any single caller so one caller giving up does not
// fail the others; each caller still stops waiting when its own ctx is done.
func (c *Client) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return fn(reqCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Trace("request shared", "key", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", key, ctx.Err())
	}
}

func userToProfile(u *gh.User) *model.UserProfile {
	return &model.UserProfile{
		Login:           u.GetLogin(),
		DisplayName:     u.GetName(),
		AvatarURL:       u.GetAvatarURL(),
		Bio:             u.GetBio(),
		Location:        u.GetLocation(),
		FollowerCount:   u.GetFollowers(),
		PublicRepoCount: u.GetPublicRepos(),
		ProfileURL:      u.GetHTMLURL(),
	}
}

func repoToModel(r *gh.Repository) model.Repository {
	return model.Repository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		URL:             r.GetHTMLURL(),
		Description:     r.GetDescription(),
		StarCount:       r.GetStargazersCount(),
		ForkCount:       r.GetForksCount(),
		PrimaryLanguage: r.GetLanguage(),
		UpdatedAt:       r.GetUpdatedAt().Time,
	}
}
