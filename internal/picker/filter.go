package picker

import (
	"sort"
	"strings"

	"contact-picker/internal/model"
)

// Filter returns the contacts whose name contains query, ignoring case, in their
// original order. An empty query matches everything.
func Filter(contacts []model.Contact, query string) []model.Contact {
	out := make([]model.Contact, 0, len(contacts))
	if query == "" {
		return append(out, contacts...)
	}
	q := strings.ToLower(query)
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

func sortByName(cs []model.Contact) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := strings.ToLower(cs[i].Name), strings.ToLower(cs[j].Name)
		if a != b {
			return a < b
		}
		return cs[i].ID < cs[j].ID
	})
}
