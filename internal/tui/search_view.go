package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/format"
	"github.com/spiffcs/usersearch/internal/model"
	"github.com/spiffcs/usersearch/internal/search"
)

// Repository row column widths
const (
	colRepoName = 26
	colLanguage = 12
	colStars    = 6
	colUpdated  = 4
	// cursor, separators and star glyph
	rowChrome = 12
	// repository header, load-more line and status line
	repoChromeLines = 3
	minRepoRows     = 3
)

// renderSearchView renders the complete widget
func renderSearchView(m SearchModel) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GitHub user search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if line := renderStatusLine(m); line != "" {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	s := m.state
	if s.Profile != nil {
		b.WriteString(renderProfile(s.Profile, m.width))
		b.WriteString("\n")
		b.WriteString(renderRepos(m))
	} else if strings.TrimSpace(s.Term) == "" {
		b.WriteString(dimStyle.Render("  Start typing a GitHub username."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.statusMsg))
	}
	return b.String()
}

// renderStatusLine shows the loading indicator, the error banner and any
// rate limit warning.
func renderStatusLine(m SearchModel) string {
	var parts []string
	s := m.state

	switch s.Status() {
	case search.StatusLoading:
		parts = append(parts, fmt.Sprintf("%s Searching for %s...", m.spinner.View(), profileNameStyle.Render(s.ActiveTerm)))
	case search.StatusError:
		parts = append(parts, bannerStyle.Render(s.Err))
	}

	if m.rateLimit != nil {
		if limited, resetAt := m.rateLimit(); limited {
			msg := "Rate limited"
			if wait := resetAt.Sub(m.now()).Round(time.Second); wait > 0 {
				msg += fmt.Sprintf(" (resets in %s)", wait)
			}
			parts = append(parts, warnStyle.Render(msg))
		}
	}
	return strings.Join(parts, "  ")
}

func renderProfile(p *model.UserProfile, width int) string {
	var b strings.Builder

	b.WriteString(profileNameStyle.Render(p.Name()))
	if p.DisplayName != "" && p.DisplayName != p.Login {
		b.WriteString(" " + profileLoginStyle.Render("@"+p.Login))
	}
	b.WriteString("\n")

	inner := width - 6
	if inner < 20 {
		inner = 20
	}
	bio := format.SingleLine(format.OrDefault(p.Bio, constants.MsgNoBio))
	b.WriteString(format.Truncate(bio, inner))
	b.WriteString("\n")

	stats := []string{
		fmt.Sprintf("%s followers", format.Count(p.FollowerCount)),
		fmt.Sprintf("%s repositories", format.Count(p.PublicRepoCount)),
	}
	if p.Location != "" {
		stats = append([]string{p.Location}, stats...)
	}
	b.WriteString(dimStyle.Render(format.Truncate(strings.Join(stats, " · "), inner)))

	return profileCardStyle.Render(b.String())
}

func renderRepos(m SearchModel) string {
	var b strings.Builder
	s := m.state

	if s.Loading {
		return ""
	}
	if len(s.Repos) == 0 {
		b.WriteString(dimStyle.Render("  No public repositories."))
		b.WriteString("\n")
		return b.String()
	}

	heading := fmt.Sprintf("Repositories (%d shown)", len(s.Repos))
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")

	viewHeight := m.height - constants.HeaderLines - constants.FooterLines - constants.ProfileLines - repoChromeLines
	if viewHeight < minRepoRows {
		viewHeight = minRepoRows
	}
	start, end := calculateScrollWindow(m.cursor, len(s.Repos), viewHeight)
	now := m.now()
	for i := start; i < end; i++ {
		b.WriteString(renderRepoRow(s.Repos[i], i == m.cursor, m.width, now))
		b.WriteString("\n")
	}

	switch {
	case s.LoadingMore:
		b.WriteString(fmt.Sprintf("%s Loading more...", m.spinner.View()))
		b.WriteString("\n")
	case s.HasMore:
		b.WriteString(dimStyle.Render("  More repositories available (pgdn)"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderRepoRow renders a single repository line
func renderRepoRow(r model.Repository, selected bool, width int, now time.Time) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}

	name := format.PadRight(format.Truncate(r.Name, colRepoName), colRepoName)
	lang := format.PadRight(format.Truncate(format.OrDefault(r.PrimaryLanguage, "-"), colLanguage), colLanguage)
	stars := fmt.Sprintf("★ %-*s", colStars-2, format.Count(r.StarCount))
	updated := fmt.Sprintf("%*s", colUpdated, format.Since(r.UpdatedAt, now))

	descWidth := width - colRepoName - colLanguage - colStars - colUpdated - rowChrome
	desc := ""
	if descWidth > constants.TruncationSuffixWidth {
		desc = format.Truncate(format.SingleLine(format.OrDefault(r.Description, constants.MsgNoDescription)), descWidth)
	}

	row := fmt.Sprintf("%s %s %s %s %s",
		applyStyle(repoNameStyle, name, selected),
		applyStyle(languageStyle, lang, selected),
		applyStyle(starStyle, stars, selected),
		applyStyle(dimStyle, updated, selected),
		applyStyle(dimStyle, desc, selected),
	)
	if selected {
		row = repoSelectedStyle.Render(row)
	}
	return cursor + row
}

// calculateScrollWindow keeps the cursor roughly centred in a window of
// viewHeight rows.
func calculateScrollWindow(cursor, total, viewHeight int) (start, end int) {
	if total <= viewHeight {
		return 0, total
	}

	start = cursor - viewHeight/2
	if start < 0 {
		start = 0
	}
	end = start + viewHeight
	if end > total {
		end = total
		start = end - viewHeight
	}
	return start, end
}
