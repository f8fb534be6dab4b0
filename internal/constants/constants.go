// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the usersearch application.
package constants

import "time"

// Search behaviour constants
const (
	// DebounceDelay is how long input must stay unchanged before a search
	// sequence is started for the current term.
	DebounceDelay = 500 * time.Millisecond

	// PageSize is the number of repositories requested per page by the
	// interactive widget and the lookup command.
	PageSize = 6

	// LibraryPageSize is the page size the gateway falls back to when it is
	// asked for a page without an explicit size.
	LibraryPageSize = 5

	// MaxPageSize is the largest per_page value the GitHub API honours.
	MaxPageSize = 100

	// RepoSort is the sort key passed to the repository listing endpoint.
	RepoSort = "updated"

	// MaxLookupPages caps --pages for the lookup command.
	MaxLookupPages = 20

	// LookupConcurrency is the number of repository pages lookup fetches at once.
	LookupConcurrency = 4
)

// User-facing messages. These are fixed regardless of the underlying cause.
const (
	// MsgUserNotFound is shown when the profile or first repository page
	// cannot be loaded.
	MsgUserNotFound = "User not found"

	// MsgLoadMoreFailed is shown when an incremental page load fails.
	MsgLoadMoreFailed = "Failed to load more repositories"

	// MsgNoBio is displayed in place of an empty profile bio.
	MsgNoBio = "No bio available"

	// MsgNoDescription is displayed in place of an empty repository description.
	MsgNoDescription = "No description available"
)

// GitHub API constants
const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com/"

	// DefaultHost is the host used to look up a stored gh CLI token.
	DefaultHost = "github.com"

	// RequestTimeout bounds a single REST request.
	RequestTimeout = 15 * time.Second
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 10
)

// TUI display constants
const (
	// StatusMessageDuration is how long transient status messages stay visible.
	StatusMessageDuration = 2 * time.Second

	// HeaderLines is the number of lines used by the title and search box.
	HeaderLines = 4

	// FooterLines is the number of lines used by the help footer.
	FooterLines = 2

	// ProfileLines is the number of lines used by a rendered profile card.
	ProfileLines = 6

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)
