package analyzer

import (
	"strings"

	"github.com/atikulmunna/logreader/internal/model"
)

// Split breaks raw text into numbered lines. Empty input yields one empty
// line and trailing empty segments are kept, so the line count always
// equals strings.Count(content, "\n")+1.
func Split(content string) []model.Line {
	parts := strings.Split(content, "\n")
	lines := make([]model.Line, len(parts))
	for i, p := range parts {
		lines[i] = model.Line{
			Number:  i + 1,
			Content: strings.TrimSuffix(p, "\r"),
		}
	}
	return lines
}

// Search returns the lines containing query, ignoring case, with their
// positional line numbers. The query is matched literally. An empty query
// matches nothing.
func Search(content, query string) []model.Line {
	matches := make([]model.Line, 0)
	if query == "" {
		return matches
	}
	needle := strings.ToLower(query)
	for _, l := range Split(content) {
		if strings.Contains(strings.ToLower(l.Content), needle) {
			matches = append(matches, l)
		}
	}
	return matches
}
