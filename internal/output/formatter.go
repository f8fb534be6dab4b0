package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/usersearch/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or markdown)", s)
	}
}

// Result is one lookup: a profile and the repository pages fetched for it.
type Result struct {
	Profile *model.UserProfile
	Repos   []model.Repository
	// Pages is the number of pages fetched; HasMore reports whether the
	// last one was full.
	Pages   int
	HasMore bool
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(res Result, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return NewTableFormatter()
	}
}
