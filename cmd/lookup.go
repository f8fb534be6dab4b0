package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/ghclient"
	"github.com/spiffcs/usersearch/internal/log"
	"github.com/spiffcs/usersearch/internal/model"
	"github.com/spiffcs/usersearch/internal/output"
	"github.com/spiffcs/usersearch/internal/tui"
)

// lookupRuntime bundles the progress display state threaded through lookup.
type lookupRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// start launches the progress display if enabled.
func (rt *lookupRuntime) start() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 32)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events)
	}()
}

// close closes the event channel and waits for the display to finish.
func (rt *lookupRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	rt.events = nil
	if err := <-rt.tuiDone; err != nil {
		log.Debug("progress display failed", "error", err)
	}
}

// NewCmdLookup creates the lookup command.
func NewCmdLookup(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <username>",
		Short: "Print a user's profile and repositories",
		Long: `Fetches a GitHub user's profile and the first pages of their
repositories, most recently updated first, and prints them as a table,
JSON or Markdown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args[0], opts)
		},
	}

	addCommonFlags(cmd, opts)
	addLookupFlags(cmd, opts)
	return cmd
}

func runLookup(cmd *cobra.Command, username string, opts *Options) error {
	prof := newProfiler(opts)
	if err := prof.Start(); err != nil {
		return err
	}
	defer prof.Stop()

	rt := &lookupRuntime{useTUI: showProgress(opts)}
	// Logs stay off stderr while the progress display draws there
	if rt.useTUI {
		initLogging(opts, io.Discard)
	} else {
		initLogging(opts, os.Stderr)
	}

	cfg, err := loadOptions(cmd, opts)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := newClient(ctx, cfg, opts)
	if err != nil {
		return err
	}

	rt.start()
	res, err := fetchLookup(ctx, client, username, opts.Pages, opts.PageSize, rt.events)
	if err == nil {
		tui.SendEvent(rt.events, tui.DoneEvent{})
	} else if errors.Is(err, ghclient.ErrRateLimited) {
		s := client.RateLimit()
		tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: true, ResetAt: s.ResetAt})
	}
	rt.close()
	if err != nil {
		return err
	}

	return output.NewFormatter(format).Format(res, cmd.OutOrStdout())
}

// fetchLookup fetches the profile for username and then pages 1..pages of
// their repositories concurrently. A failed profile or first page fails the
// lookup; a later failed page ends the result at the page before it.
// events may be nil.
func fetchLookup(ctx context.Context, gw ghclient.Gateway, username string, pages, pageSize int, events chan<- tui.Event) (output.Result, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return output.Result{}, errors.New("username must not be empty")
	}

	tui.SendTaskEvent(events, tui.TaskProfile, tui.StatusRunning)
	profile, err := gw.FetchUser(ctx, username)
	if err != nil {
		tui.SendTaskEvent(events, tui.TaskProfile, tui.StatusError, tui.WithError(err))
		tui.SendTaskEvent(events, tui.TaskRepos, tui.StatusSkipped)
		return output.Result{}, fmt.Errorf("%s: %w", constants.MsgUserNotFound, err)
	}
	tui.SendTaskEvent(events, tui.TaskProfile, tui.StatusComplete, tui.WithMessage(profile.Login))

	tui.SendTaskEvent(events, tui.TaskRepos, tui.StatusRunning, tui.WithMessage(fmt.Sprintf("0/%d pages", pages)))

	results := make([][]model.Repository, pages)
	errs := make([]error, pages)
	var completed atomic.Int64

	// Page errors are collected per page rather than returned, so one
	// failure does not cancel the pages before it.
	var g errgroup.Group
	g.SetLimit(constants.LookupConcurrency)
	for i := range pages {
		g.Go(func() error {
			page := i + 1
			results[i], errs[i] = gw.FetchRepos(ctx, username, page, pageSize)
			n := completed.Add(1)
			tui.SendTaskEvent(events, tui.TaskRepos, tui.StatusRunning,
				tui.WithProgress(float64(n)/float64(pages)),
				tui.WithMessage(fmt.Sprintf("%d/%d pages", n, pages)))
			return nil
		})
	}
	_ = g.Wait()

	if errs[0] != nil {
		tui.SendTaskEvent(events, tui.TaskRepos, tui.StatusError, tui.WithError(errs[0]))
		return output.Result{}, fmt.Errorf("%s: %w", constants.MsgUserNotFound, errs[0])
	}

	res := assemblePages(profile, results, errs, pageSize)
	tui.SendTaskEvent(events, tui.TaskRepos, tui.StatusComplete,
		tui.WithCount(len(res.Repos)),
		tui.WithMessage(fmt.Sprintf("%d repositories", len(res.Repos))))
	log.Info("lookup complete", "user", username, "pages", res.Pages, "repos", len(res.Repos), "has_more", res.HasMore)
	return res, nil
}

// assemblePages concatenates pages in order. It stops after the first short
// page, since nothing follows it, and before the first failed page.
func assemblePages(profile *model.UserProfile, pages [][]model.Repository, errs []error, pageSize int) output.Result {
	res := output.Result{Profile: profile}
	for i, repos := range pages {
		if errs[i] != nil {
			log.Warn("repository page failed, output is partial", "page", i+1, "error", errs[i])
			// A full page before the failure means more exist.
			res.HasMore = true
			return res
		}
		res.Repos = append(res.Repos, repos...)
		res.Pages = i + 1
		res.HasMore = len(repos) == pageSize
		if !res.HasMore {
			break
		}
	}
	return res
}
