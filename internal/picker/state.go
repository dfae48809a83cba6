// Package picker holds the contact picker's state and the pure transitions
// that move it between events. Views (terminal, browser) own rendering only.
package picker

import (
	"fmt"
	"strings"

	"contact-picker/internal/model"
)

type ReinsertPolicy string

const (
	// ReinsertOriginal puts a removed contact back at its mount-order position.
	ReinsertOriginal ReinsertPolicy = "original"
	// ReinsertAppend puts a removed contact at the end of the available list.
	ReinsertAppend ReinsertPolicy = "append"
	// ReinsertByName keeps the available list sorted by name.
	ReinsertByName ReinsertPolicy = "name"
)

func ParseReinsertPolicy(s string) (ReinsertPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ReinsertOriginal):
		return ReinsertOriginal, nil
	case string(ReinsertAppend):
		return ReinsertAppend, nil
	case string(ReinsertByName), "sort", "sorted":
		return ReinsertByName, nil
	default:
		return "", fmt.Errorf("invalid reinsert policy %q (expected original|append|name)", s)
	}
}

type Options struct {
	Reinsert ReinsertPolicy
	// Strict reports contract violations in Outcome.Err instead of silently ignoring them.
	Strict bool
}

// State is a value: transitions return a new State and never mutate the receiver.
type State struct {
	available     []model.Contact
	selected      []model.Contact
	query         string
	pendingDelete bool
	listVisible   bool

	// mountOrder maps contact id -> index in the mount list. Shared and read-only.
	mountOrder map[int]int
	opts       Options
}

// New mounts a picker over contacts. Duplicate ids keep their first occurrence.
func New(contacts []model.Contact, opts Options) State {
	if opts.Reinsert == "" {
		opts.Reinsert = ReinsertOriginal
	}
	s := State{
		available:  make([]model.Contact, 0, len(contacts)),
		mountOrder: make(map[int]int, len(contacts)),
		opts:       opts,
	}
	for _, c := range contacts {
		if _, dup := s.mountOrder[c.ID]; dup {
			continue
		}
		s.mountOrder[c.ID] = len(s.available)
		s.available = append(s.available, c)
	}
	if opts.Reinsert == ReinsertByName {
		sortByName(s.available)
	}
	return s
}

func (s State) Available() []model.Contact { return append([]model.Contact(nil), s.available...) }
func (s State) Selected() []model.Contact  { return append([]model.Contact(nil), s.selected...) }
func (s State) Query() string              { return s.query }
func (s State) PendingDelete() bool        { return s.pendingDelete }
func (s State) ListVisible() bool          { return s.listVisible }
func (s State) Options() Options           { return s.opts }

// Armed reports whether the next backspace on an empty query removes the last chip.
func (s State) Armed() bool { return s.pendingDelete }

// Matches is Filter applied to the available contacts, regardless of visibility.
func (s State) Matches() []model.Contact { return Filter(s.available, s.query) }

// Suggestions is what a view should draw as the suggestion list: nothing while
// the list is hidden or nothing matches.
func (s State) Suggestions() []model.Contact {
	if !s.listVisible {
		return nil
	}
	m := Filter(s.available, s.query)
	if len(m) == 0 {
		return nil
	}
	return m
}

// LastSelected is the chip a confirming backspace would remove.
func (s State) LastSelected() (model.Contact, bool) {
	if len(s.selected) == 0 {
		return model.Contact{}, false
	}
	return s.selected[len(s.selected)-1], true
}

func (s State) FindAvailable(id int) (model.Contact, bool) { return findByID(s.available, id) }
func (s State) FindSelected(id int) (model.Contact, bool)  { return findByID(s.selected, id) }

func (s State) IsSelected(id int) bool {
	_, ok := findByID(s.selected, id)
	return ok
}

// Universe returns every contact the picker was mounted with, in mount order.
func (s State) Universe() []model.Contact {
	out := make([]model.Contact, len(s.mountOrder))
	for _, c := range s.available {
		out[s.mountOrder[c.ID]] = c
	}
	for _, c := range s.selected {
		out[s.mountOrder[c.ID]] = c
	}
	return out
}

type Snapshot struct {
	Available     []model.Contact `json:"available"`
	Selected      []model.Contact `json:"selected"`
	Query         string          `json:"query"`
	PendingDelete bool            `json:"pendingDelete"`
	ListVisible   bool            `json:"listVisible"`
	Suggestions   []model.Contact `json:"suggestions"`
}

func (s State) Snapshot() Snapshot {
	sugg := s.Suggestions()
	if sugg == nil {
		sugg = []model.Contact{}
	}
	return Snapshot{
		Available:     s.Available(),
		Selected:      s.Selected(),
		Query:         s.query,
		PendingDelete: s.pendingDelete,
		ListVisible:   s.listVisible,
		Suggestions:   sugg,
	}
}

func findByID(cs []model.Contact, id int) (model.Contact, bool) {
	for _, c := range cs {
		if c.ID == id {
			return c, true
		}
	}
	return model.Contact{}, false
}
