package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/usersearch/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONOutput is the document written by JSONFormatter.
type JSONOutput struct {
	Profile      *model.UserProfile `json:"profile"`
	Repositories []model.Repository `json:"repositories"`
	Pages        int                `json:"pages"`
	HasMore      bool               `json:"hasMore"`
}

// Format outputs the lookup result as a single JSON document.
func (f *JSONFormatter) Format(res Result, w io.Writer) error {
	out := JSONOutput{
		Profile:      res.Profile,
		Repositories: res.Repos,
		Pages:        res.Pages,
		HasMore:      res.HasMore,
	}
	if out.Repositories == nil {
		out.Repositories = []model.Repository{}
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
