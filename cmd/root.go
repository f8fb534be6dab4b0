package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/usersearch/internal/log"
	"github.com/spiffcs/usersearch/internal/search"
	"github.com/spiffcs/usersearch/internal/tui"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "usersearch [term]",
		Short: "Search GitHub users and browse their repositories",
		Long: `An interactive search for GitHub users. Type a username and the
profile and most recently updated repositories appear once you stop typing.

Without a terminal (or with --tui=false) a term is required and the result
is printed like 'usersearch lookup'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
		// main prints the error
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addCommonFlags(rootCmd, opts)
	addLookupFlags(rootCmd, opts)
	rootCmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Quiet time after typing before a search starts (default from config)")

	rootCmd.AddCommand(NewCmdLookup(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}

func runSearch(cmd *cobra.Command, args []string, opts *Options) error {
	if !interactive(opts) {
		if len(args) == 0 {
			return errors.New("a search term is required without a terminal; use 'usersearch <term>' or --tui=true")
		}
		return runLookup(cmd, args[0], opts)
	}

	prof := newProfiler(opts)
	if err := prof.Start(); err != nil {
		return err
	}
	defer prof.Stop()

	closeLog, err := initFileLogging(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadOptions(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := newClient(ctx, cfg, opts)
	if err != nil {
		return err
	}

	ctrl := search.New(client,
		search.WithDebounce(opts.Debounce),
		search.WithPageSize(opts.PageSize),
	)

	searchOpts := []tui.SearchOption{
		tui.WithRateLimit(func() (bool, time.Time) {
			s := client.RateLimit()
			return s.Limited, s.ResetAt
		}),
	}
	if len(args) == 1 {
		searchOpts = append(searchOpts, tui.WithInitialTerm(args[0]))
	}

	log.Info("starting search widget", "debounce", opts.Debounce, "page_size", opts.PageSize)
	return tui.RunSearch(ctx, ctrl, searchOpts...)
}
