package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spiffcs/usersearch/config"
	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/ghclient"
	"github.com/spiffcs/usersearch/internal/log"
)

// addCommonFlags registers the flags shared by the root and lookup commands.
func addCommonFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, fmt.Sprintf("Repositories per page, 1-%d (default from config)", constants.MaxPageSize))
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "GitHub API root (default from config)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable the TUI (default: auto-detect)")

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

// addLookupFlags registers the headless output flags.
func addLookupFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().IntVar(&opts.Pages, "pages", opts.Pages, fmt.Sprintf("Number of repository pages to fetch, 1-%d", constants.MaxLookupPages))
}

// resolveOptions fills every option the user did not set from cfg and
// validates the result. Flags win over config.
func resolveOptions(flags *pflag.FlagSet, opts *Options, cfg *config.Config) error {
	if opts.Format == "" {
		opts.Format = cfg.DefaultFormat
	}
	if !flags.Changed("page-size") && opts.PageSize == 0 {
		opts.PageSize = cfg.PageSize
	}
	if !flags.Changed("debounce") && opts.Debounce == 0 {
		opts.Debounce = cfg.DebounceDelay()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = cfg.BaseURL
	}

	if opts.PageSize < 1 || opts.PageSize > constants.MaxPageSize {
		return fmt.Errorf("--page-size must be between 1 and %d, got %d", constants.MaxPageSize, opts.PageSize)
	}
	if opts.Debounce < 0 {
		return fmt.Errorf("--debounce must not be negative, got %s", opts.Debounce)
	}
	if opts.Pages < 1 || opts.Pages > constants.MaxLookupPages {
		return fmt.Errorf("--pages must be between 1 and %d, got %d", constants.MaxLookupPages, opts.Pages)
	}
	switch opts.LogFormat {
	case log.FormatText, log.FormatJSON:
	default:
		return fmt.Errorf("--log-format must be text or json, got %q", opts.LogFormat)
	}
	return nil
}

// loadOptions loads the config files and resolves opts against them.
func loadOptions(cmd *cobra.Command, opts *Options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := resolveOptions(cmd.Flags(), opts, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogging configures the global logger for a headless run.
func initLogging(opts *Options, w io.Writer) {
	log.SetFormat(opts.LogFormat)
	log.Initialize(opts.Verbosity, w)
}

// initFileLogging configures logging while the widget owns the terminal.
// With -v logs are appended to the log file, otherwise they are dropped.
// The returned func closes the file.
func initFileLogging(opts *Options) (func(), error) {
	if opts.Verbosity == 0 {
		initLogging(opts, io.Discard)
		return func() {}, nil
	}

	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	initLogging(opts, f)
	return func() {
		log.SetOutput(io.Discard)
		_ = f.Close()
	}, nil
}

// newClient builds the API gateway for opts.BaseURL, authenticated when a
// token is available.
func newClient(ctx context.Context, cfg *config.Config, opts *Options) (*ghclient.Client, error) {
	client, err := ghclient.NewClient(ctx,
		ghclient.WithBaseURL(opts.BaseURL),
		ghclient.WithToken(cfg.GetGitHubToken()),
	)
	if err != nil {
		return nil, err
	}
	log.Debug("api client ready", "base_url", opts.BaseURL, "authenticated", client.Authenticated())
	return client, nil
}
