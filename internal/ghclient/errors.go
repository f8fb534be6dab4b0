package ghclient

import (
	"context"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v57/github"
)

var (
	// ErrNotFound is returned when a profile lookup gets a non-success status.
	ErrNotFound = errors.New("user not found")

	// ErrFetch is returned when a repository listing gets a non-success status.
	ErrFetch = errors.New("failed to fetch repositories")

	// ErrNetwork is returned for transport-level failures (timeouts, DNS, connectivity).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// classify maps an error from go-github onto the package taxonomy.
// statusErr is used when the remote answered with a non-success status.
func classify(err error, statusErr error, subject string) error {
	if err == nil {
		return nil
	}

	var (
		errResp   *gh.ErrorResponse
		rateErr   *gh.RateLimitError
		abuseErr  *gh.AbuseRateLimitError
		acceptErr *gh.AcceptedError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", subject, err)
	case errors.Is(err, ErrRateLimited), errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return fmt.Errorf("%s: %w", subject, ErrRateLimited)
	case errors.As(err, &errResp):
		status := 0
		if errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
		return fmt.Errorf("%s: %w (status %d)", subject, statusErr, status)
	case errors.As(err, &acceptErr):
		return fmt.Errorf("%s: %w (status 202)", subject, statusErr)
	default:
		return fmt.Errorf("%s: %w: %v", subject, ErrNetwork, err)
	}
}
