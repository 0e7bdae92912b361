package client

import (
	"strings"

	"github.com/sakif/intervw/internal/model"
)

// FilterSubmissions keeps the submissions whose name, company or country
// contains query, ignoring case. An empty or blank query keeps everything.
// It only narrows what is displayed; the server is not involved.
func FilterSubmissions(subs []model.Submission, query string) []model.Submission {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return subs
	}

	out := make([]model.Submission, 0, len(subs))
	for _, s := range subs {
		if strings.Contains(strings.ToLower(s.Name), query) ||
			strings.Contains(strings.ToLower(s.Company), query) ||
			strings.Contains(strings.ToLower(s.Country), query) {
			out = append(out, s)
		}
	}
	return out
}
