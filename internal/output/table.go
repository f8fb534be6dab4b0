package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/format"
	"github.com/spiffcs/usersearch/internal/model"
)

// Column widths
const (
	colName     = 28
	colLanguage = 12
	colStars    = 6
	colForks    = 6
	colUpdated  = 7
	colDesc     = 48
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	// Hyperlinks wraps names in OSC 8 links.
	Hyperlinks bool
	// Now is the reference time for ages. Defaults to time.Now.
	Now func() time.Time
}

// NewTableFormatter enables hyperlinks when stdout is a terminal.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		Hyperlinks: term.IsTerminal(int(os.Stdout.Fd())),
		Now:        time.Now,
	}
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
func (f *TableFormatter) hyperlink(text, url string) string {
	if !f.Hyperlinks || url == "" {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

func (f *TableFormatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// Format prints the profile block followed by the repository table.
func (f *TableFormatter) Format(res Result, w io.Writer) error {
	if res.Profile == nil {
		fmt.Fprintln(w, constants.MsgUserNotFound)
		return nil
	}

	f.formatProfile(res.Profile, w)
	fmt.Fprintln(w)

	if len(res.Repos) == 0 {
		fmt.Fprintln(w, "No public repositories.")
		return nil
	}

	header := fmt.Sprintf("%-*s  %-*s  %*s  %*s  %-*s  %s",
		colName, "Repository",
		colLanguage, "Language",
		colStars, "Stars",
		colForks, "Forks",
		colUpdated, "Updated",
		"Description")
	fmt.Fprintln(w, color.New(color.Bold).Sprint(header))
	fmt.Fprintln(w, strings.Repeat("-", colName+colLanguage+colStars+colForks+colUpdated+colDesc+10))

	now := f.now()
	for _, r := range res.Repos {
		name := format.Truncate(r.Name, colName)
		linked := format.PadRight(f.hyperlink(name, r.URL), colName)

		lang := format.Truncate(format.OrDefault(r.PrimaryLanguage, "-"), colLanguage)
		desc := format.Truncate(format.SingleLine(format.OrDefault(r.Description, constants.MsgNoDescription)), colDesc)

		fmt.Fprintf(w, "%s  %s  %s  %*s  %-*s  %s\n",
			linked,
			format.PadRight(color.CyanString(lang), colLanguage),
			padLeft(color.YellowString(format.Count(r.StarCount)), colStars),
			colForks, format.Count(r.ForkCount),
			colUpdated, format.Since(r.UpdatedAt, now),
			desc,
		)
	}

	fmt.Fprintln(w)
	more := ""
	if res.HasMore {
		more = color.New(color.Faint).Sprint(" (more available, use --pages)")
	}
	fmt.Fprintf(w, "%d repositories across %d page(s)%s\n", len(res.Repos), res.Pages, more)
	return nil
}

func (f *TableFormatter) formatProfile(p *model.UserProfile, w io.Writer) {
	title := color.New(color.Bold).Sprint(p.Name())
	if p.DisplayName != "" && p.DisplayName != p.Login {
		title += " " + color.New(color.Faint).Sprintf("@%s", p.Login)
	}
	fmt.Fprintln(w, f.hyperlink(title, p.ProfileURL))

	fmt.Fprintf(w, "  %s\n", format.SingleLine(format.OrDefault(p.Bio, constants.MsgNoBio)))
	if p.Location != "" {
		fmt.Fprintf(w, "  Location:  %s\n", p.Location)
	}
	fmt.Fprintf(w, "  Followers: %s   Public repos: %s\n",
		format.Count(p.FollowerCount), format.Count(p.PublicRepoCount))
}

// padLeft right-aligns s, which may contain colour codes, in width columns.
func padLeft(s string, width int) string {
	w := format.DisplayWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
