package picker

import "fmt"

// Event is one user input the picker reacts to.
type Event interface {
	Kind() string
	isEvent()
}

type QueryChanged struct{ Text string }

type BackspacePressed struct{}

// ContactClicked is a click on a contact's name (a suggestion entry).
type ContactClicked struct{ ID int }

// ChipRemoveClicked is a click on a chip's remove control.
type ChipRemoveClicked struct{ ID int }

type InputFocused struct{}

func (QueryChanged) Kind() string      { return "query" }
func (BackspacePressed) Kind() string  { return "backspace" }
func (ContactClicked) Kind() string    { return "contact-click" }
func (ChipRemoveClicked) Kind() string { return "chip-remove" }
func (InputFocused) Kind() string      { return "focus" }

func (QueryChanged) isEvent()      {}
func (BackspacePressed) isEvent()  {}
func (ContactClicked) isEvent()    {}
func (ChipRemoveClicked) isEvent() {}
func (InputFocused) isEvent()      {}

// Apply is the picker's transition function.
func Apply(s State, ev Event) (State, Outcome) {
	switch e := ev.(type) {
	case QueryChanged:
		return s.QueryChanged(e.Text)
	case BackspacePressed:
		return s.Backspace()
	case ContactClicked:
		if c, ok := s.FindSelected(e.ID); ok {
			return s.Toggle(c)
		}
		if c, ok := s.FindAvailable(e.ID); ok {
			return s.Toggle(c)
		}
		return s.violation("toggle", e.ID, "unknown contact")
	case ChipRemoveClicked:
		c, ok := s.FindSelected(e.ID)
		if !ok {
			return s.violation("remove", e.ID, "not selected")
		}
		return s.Remove(c)
	case InputFocused:
		return s.Focus()
	case nil:
		return s, Outcome{}
	default:
		return s, Outcome{Ignored: fmt.Sprintf("unhandled event %T", ev)}
	}
}
