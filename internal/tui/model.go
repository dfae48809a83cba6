package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"contact-picker/internal/logger"
	"contact-picker/internal/model"
	"contact-picker/internal/picker"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Picker      picker.Options
	Title       string
	Placeholder string
	// Glyphs is "unicode" or "ascii".
	Glyphs string
	// Theme is "light", "dark" or "auto".
	Theme string
}

type Result struct {
	Confirmed bool            `json:"confirmed"`
	Selected  []model.Contact `json:"selected"`
}

func (r Result) Text() string {
	if !r.Confirmed {
		return "cancelled"
	}
	if len(r.Selected) == 0 {
		return "no contacts selected"
	}
	var b strings.Builder
	for _, c := range r.Selected {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", c.ID, c.Name, c.Email)
	}
	return strings.TrimRight(b.String(), "\n")
}

type pickerModel struct {
	state    picker.State
	universe []model.Contact
	input    textinput.Model
	title    string

	width  int
	height int

	showHelp  bool
	confirmed bool
	done      bool

	log *slog.Logger
}

func newPickerModel(contacts []model.Contact, opts Options) pickerModel {
	ti := textinput.New()
	ti.Prompt = glyphMarker() + " "
	ti.Placeholder = strings.TrimSpace(opts.Placeholder)
	ti.CharLimit = 120
	ti.Focus()

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Pick contacts"
	}

	st := picker.New(contacts, opts.Picker)
	m := pickerModel{
		state:    st,
		universe: st.Universe(),
		input:    ti,
		title:    title,
		log:      logger.Component("tui"),
	}
	// The search field has focus from the start.
	m.apply(picker.InputFocused{})
	return m
}

func (m pickerModel) Init() tea.Cmd { return textinput.Blink }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.bodyWidth() - 4
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		z, ok := m.layout().hit(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		switch z.kind {
		case zoneChipRemove:
			m.apply(picker.ChipRemoveClicked{ID: z.id})
		case zoneSuggestion:
			m.apply(picker.ContactClicked{ID: z.id})
		case zoneInput:
			m.apply(picker.InputFocused{})
			return m, m.input.Focus()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case tea.KeyF1:
			m.showHelp = !m.showHelp
			return m, nil
		case tea.KeyTab:
			m.apply(picker.InputFocused{})
			return m, m.input.Focus()
		case tea.KeyBackspace, tea.KeyCtrlH:
			if m.input.Value() == "" {
				// Nothing for the field to delete; the gesture decides whether to arm or remove.
				m.apply(picker.BackspacePressed{})
				return m, nil
			}
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.apply(picker.QueryChanged{Text: after})
	}
	return m, cmd
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	return strings.Join(m.layout().lines, "\n")
}

func (m *pickerModel) apply(ev picker.Event) picker.Outcome {
	next, out := picker.Apply(m.state, ev)
	m.state = next
	if m.input.Value() != next.Query() {
		m.input.SetValue(next.Query())
		m.input.CursorEnd()
	}

	m.log.Debug("event", "kind", ev.Kind(), "changed", out.Changed, "intercepted", out.Intercepted, "armed", next.Armed())
	switch {
	case out.Err != nil:
		m.log.Error("contract violation", "kind", ev.Kind(), "err", out.Err)
	case out.Ignored != "":
		m.log.Warn("event ignored", "kind", ev.Kind(), "reason", out.Ignored)
	}
	if next.Options().Strict {
		if err := picker.Check(m.universe, next); err != nil {
			m.log.Error("invariant broken", "kind", ev.Kind(), "err", err)
		}
	}
	return out
}

func (m pickerModel) result() Result {
	return Result{Confirmed: m.confirmed, Selected: m.state.Selected()}
}

func (m pickerModel) bodyWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}
