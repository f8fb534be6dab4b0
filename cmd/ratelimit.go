package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	opts := NewOptions()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long: `Display the GitHub API rate limit status for the core and search APIs.
Searches are anonymous unless GITHUB_TOKEN is set or the gh CLI is logged in,
and the anonymous core limit is much lower.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRateLimitStatus(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "GitHub API root (default from config)")
	return cmd
}

func runRateLimitStatus(cmd *cobra.Command, opts *Options) error {
	initLogging(opts, cmd.ErrOrStderr())

	cfg, err := loadOptions(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := newClient(ctx, cfg, opts)
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return err
	}

	printRateLimits(cmd.OutOrStdout(), limits, client.Authenticated(), time.Now())
	return nil
}

func printRateLimits(w io.Writer, limits *gh.RateLimits, authenticated bool, now time.Time) {
	mode := "anonymous"
	if authenticated {
		mode = "authenticated"
	}
	fmt.Fprintf(w, "GitHub API Rate Limits (%s):\n", mode)
	fmt.Fprintln(w)

	rows := []struct {
		label string
		rate  *gh.Rate
	}{
		{"Core API:  ", limits.Core},
		{"Search API:", limits.Search},
		{"GraphQL:   ", limits.GraphQL},
	}
	for _, r := range rows {
		if r.rate == nil {
			continue
		}
		resetIn := r.rate.Reset.Time.Sub(now).Round(time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		fmt.Fprintf(w, "%s %d/%d remaining (resets in %s)\n", r.label, r.rate.Remaining, r.rate.Limit, resetIn)
	}
}
