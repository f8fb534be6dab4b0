package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/format"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct{}

// Format writes the profile as a heading and the repositories as a table.
func (f *MarkdownFormatter) Format(res Result, w io.Writer) error {
	if res.Profile == nil {
		fmt.Fprintln(w, constants.MsgUserNotFound)
		return nil
	}
	p := res.Profile

	fmt.Fprintf(w, "# [%s](%s)\n\n", escapeMarkdown(p.Name()), p.ProfileURL)
	fmt.Fprintf(w, "%s\n\n", escapeMarkdown(format.SingleLine(format.OrDefault(p.Bio, constants.MsgNoBio))))
	if p.Location != "" {
		fmt.Fprintf(w, "- **Location:** %s\n", escapeMarkdown(p.Location))
	}
	fmt.Fprintf(w, "- **Followers:** %d\n", p.FollowerCount)
	fmt.Fprintf(w, "- **Public repositories:** %d\n\n", p.PublicRepoCount)

	if len(res.Repos) == 0 {
		fmt.Fprintln(w, "No public repositories.")
		return nil
	}

	fmt.Fprintln(w, "| Repository | Language | Stars | Forks | Description |")
	fmt.Fprintln(w, "|---|---|---:|---:|---|")
	for _, r := range res.Repos {
		fmt.Fprintf(w, "| [%s](%s) | %s | %d | %d | %s |\n",
			escapeMarkdown(r.Name), r.URL,
			escapeMarkdown(format.OrDefault(r.PrimaryLanguage, "-")),
			r.StarCount, r.ForkCount,
			escapeMarkdown(format.SingleLine(format.OrDefault(r.Description, constants.MsgNoDescription))),
		)
	}

	if res.HasMore {
		fmt.Fprintf(w, "\n*Showing %d repositories; more are available.*\n", len(res.Repos))
	}
	return nil
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
