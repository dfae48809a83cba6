package picker

import "contact-picker/internal/model"

// Check verifies the picker invariants against the contacts it was mounted with:
// available and selected partition universe by id, and pendingDelete only holds
// on an empty query.
func Check(universe []model.Contact, s State) error {
	want := make(map[int]bool, len(universe))
	for _, c := range universe {
		want[c.ID] = true
	}

	seen := make(map[int]bool, len(universe))
	dups := map[int]bool{}
	unknown := map[int]bool{}
	note := func(cs []model.Contact) {
		for _, c := range cs {
			if seen[c.ID] {
				dups[c.ID] = true
			}
			seen[c.ID] = true
			if !want[c.ID] {
				unknown[c.ID] = true
			}
		}
	}
	note(s.available)
	note(s.selected)

	missing := map[int]bool{}
	for id := range want {
		if !seen[id] {
			missing[id] = true
		}
	}

	if len(missing) > 0 || len(dups) > 0 || len(unknown) > 0 {
		return &PartitionError{
			Missing:    sortedKeys(missing),
			Duplicated: sortedKeys(dups),
			Unknown:    sortedKeys(unknown),
		}
	}
	if s.pendingDelete && s.query != "" {
		return &StaleArmError{Query: s.query}
	}
	return nil
}
