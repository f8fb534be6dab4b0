package cmd

import "time"

// Options holds the shared command-line options for the usersearch CLI.
type Options struct {
	Format    string
	Pages     int
	PageSize  int
	Debounce  time.Duration
	BaseURL   string
	Verbosity int
	LogFormat string
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
// Zero values for Format, PageSize, Debounce and BaseURL are filled from the
// config file when a command runs.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Pages:     1,
		LogFormat: "text",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithPages sets how many repository pages lookup fetches.
func WithPages(n int) Option {
	return func(o *Options) {
		o.Pages = n
	}
}

// WithPageSize sets the number of repositories per page.
func WithPageSize(n int) Option {
	return func(o *Options) {
		o.PageSize = n
	}
}

// WithDebounce sets the quiet time before a search starts.
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		o.Debounce = d
	}
}

// WithBaseURL sets the API root.
func WithBaseURL(u string) Option {
	return func(o *Options) {
		o.BaseURL = u
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithLogFormat sets the log handler (text, json).
func WithLogFormat(f string) Option {
	return func(o *Options) {
		o.LogFormat = f
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithCPUProfile sets the CPU profile output file.
func WithCPUProfile(path string) Option {
	return func(o *Options) {
		o.CPUProfile = path
	}
}

// WithMemProfile sets the memory profile output file.
func WithMemProfile(path string) Option {
	return func(o *Options) {
		o.MemProfile = path
	}
}

// WithTrace sets the execution trace output file.
func WithTrace(path string) Option {
	return func(o *Options) {
		o.Trace = path
	}
}
