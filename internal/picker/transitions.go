package picker

import (
	"sort"

	"contact-picker/internal/model"
)

type Outcome struct {
	// Changed is false when the state came back unchanged.
	Changed bool
	// Intercepted means the view must suppress the key's default text editing.
	Intercepted bool

	Selected *model.Contact
	Removed  *model.Contact

	// Ignored names the reason a transition was a no-op due to a stale reference.
	Ignored string
	// Err is only set in strict mode, alongside Ignored.
	Err error
}

func (s State) clone() State {
	n := s
	n.available = append([]model.Contact(nil), s.available...)
	n.selected = append([]model.Contact(nil), s.selected...)
	return n
}

func (s State) violation(op string, id int, reason string) (State, Outcome) {
	out := Outcome{Ignored: reason}
	if s.opts.Strict {
		out.Err = &ContractViolationError{Op: op, ID: id, Reason: reason}
	}
	return s, out
}

// Select moves c from available to the end of selected, clears the query and
// hides the list.
func (s State) Select(c model.Contact) (State, Outcome) {
	idx := indexByID(s.available, c.ID)
	if idx < 0 {
		return s.violation("select", c.ID, "not available")
	}
	n := s.clone()
	picked := n.available[idx]
	n.available = append(n.available[:idx], n.available[idx+1:]...)
	n.selected = append(n.selected, picked)
	n.query = ""
	n.pendingDelete = false
	n.listVisible = false
	return n, Outcome{Changed: true, Selected: &picked}
}

// Remove takes c out of selected and returns it to available per the reinsert policy.
func (s State) Remove(c model.Contact) (State, Outcome) {
	idx := indexByID(s.selected, c.ID)
	if idx < 0 {
		return s.violation("remove", c.ID, "not selected")
	}
	n := s.clone()
	removed := n.selected[idx]
	n.selected = append(n.selected[:idx], n.selected[idx+1:]...)
	n.available = n.reinsert(n.available, removed)
	n.pendingDelete = false
	return n, Outcome{Changed: true, Removed: &removed}
}

// Toggle removes c when it is already selected and selects it otherwise.
func (s State) Toggle(c model.Contact) (State, Outcome) {
	if s.IsSelected(c.ID) {
		return s.Remove(c)
	}
	return s.Select(c)
}

func (s State) QueryChanged(text string) (State, Outcome) {
	n := s
	n.query = text
	n.listVisible = true
	if text != "" {
		n.pendingDelete = false
	}
	return n, Outcome{Changed: n.query != s.query || n.listVisible != s.listVisible || n.pendingDelete != s.pendingDelete}
}

func (s State) Focus() (State, Outcome) {
	n := s
	n.listVisible = true
	return n, Outcome{Changed: !s.listVisible}
}

// Backspace runs the double-backspace gesture. The first press on an empty query
// with chips present arms it; the second removes the last chip.
func (s State) Backspace() (State, Outcome) {
	if s.query != "" {
		return s, Outcome{}
	}
	last, ok := s.LastSelected()
	if !ok {
		return s, Outcome{}
	}
	if !s.pendingDelete {
		n := s
		n.pendingDelete = true
		return n, Outcome{Changed: true, Intercepted: true}
	}
	n, out := s.Remove(last)
	out.Intercepted = true
	return n, out
}

func (s State) reinsert(available []model.Contact, c model.Contact) []model.Contact {
	switch s.opts.Reinsert {
	case ReinsertAppend:
		return append(available, c)
	case ReinsertByName:
		available = append(available, c)
		sortByName(available)
		return available
	default:
		pos, ok := s.mountOrder[c.ID]
		if !ok {
			return append(available, c)
		}
		at := sort.Search(len(available), func(i int) bool {
			return s.mountOrder[available[i].ID] > pos
		})
		available = append(available, model.Contact{})
		copy(available[at+1:], available[at:])
		available[at] = c
		return available
	}
}

func indexByID(cs []model.Contact, id int) int {
	for i, c := range cs {
		if c.ID == id {
			return i
		}
	}
	return -1
}
