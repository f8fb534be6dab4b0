// Package ghclient provides the GitHub API gateway used by the search widget.
package ghclient

import (
	"context"

	"github.com/spiffcs/usersearch/internal/model"
)

// Gateway defines the read-only operations the lookup command depends on.
// Implementations must be safe for concurrent use.
type Gateway interface {
	FetchUser(ctx context.Context, username string) (*model.UserProfile, error)
	FetchRepos(ctx context.Context, username string, page, perPage int) ([]model.Repository, error)
}

// Ensure Client implements Gateway interface.
var _ Gateway = (*Client)(nil)
