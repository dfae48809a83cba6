package tui

import (
	"strings"
	"testing"

	"contact-picker/internal/model"
	"contact-picker/internal/picker"

	tea "github.com/charmbracelet/bubbletea"
)

func testContacts() []model.Contact {
	return []model.Contact{
		{ID: 1, Name: "Ann Hartley", Email: "ann@example.com"},
		{ID: 2, Name: "Bob Stone", Email: "bob@example.com"},
		{ID: 3, Name: "Cara Banks", Email: "cara@example.com"},
	}
}

func newTestModel(t *testing.T) pickerModel {
	t.Helper()
	m := newPickerModel(testContacts(), Options{Picker: picker.Options{Reinsert: picker.ReinsertOriginal}})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(pickerModel)
}

func send(t *testing.T, m pickerModel, msgs ...tea.Msg) pickerModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(pickerModel)
	}
	return m
}

func typeText(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func backspace() tea.Msg { return tea.KeyMsg{Type: tea.KeyBackspace} }

func click(z zone) tea.Msg {
	return tea.MouseMsg{X: z.x0, Y: z.y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func findZone(t *testing.T, m pickerModel, kind zoneKind, id int) zone {
	t.Helper()
	for _, z := range m.layout().zones {
		if z.kind == kind && z.id == id {
			return z
		}
	}
	t.Fatalf("no zone kind=%d id=%d", kind, id)
	return zone{}
}

// pick focuses the field so the list is showing, then clicks the contact.
func pick(t *testing.T, m pickerModel, id int) pickerModel {
	t.Helper()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	return send(t, m, click(findZone(t, m, zoneSuggestion, id)))
}

func selectedIDs(m pickerModel) []int { return model.ContactIDs(m.state.Selected()) }

func TestModel_StartsFocusedWithAllSuggestions(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	if !m.state.ListVisible() {
		t.Fatalf("expected list visible at start")
	}
	if got := len(m.state.Suggestions()); got != 3 {
		t.Fatalf("expected 3 suggestions, got %d", got)
	}
	view := m.View()
	for _, name := range []string{"Ann Hartley", "Bob Stone", "Cara Banks", "No one selected yet."} {
		if !strings.Contains(view, name) {
			t.Fatalf("expected view to contain %q:\n%s", name, view)
		}
	}
}

func TestModel_TypingFiltersSuggestions(t *testing.T) {
	t.Parallel()

	m := send(t, newTestModel(t), typeText("bo"))
	if m.state.Query() != "bo" {
		t.Fatalf("query=%q", m.state.Query())
	}
	got := model.ContactIDs(m.state.Suggestions())
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected only Bob, got %v", got)
	}
}

func TestModel_ClickSuggestionSelectsAndClearsInput(t *testing.T) {
	t.Parallel()

	m := send(t, newTestModel(t), typeText("ann"))
	m = pick(t, m, 1)

	if ids := selectedIDs(m); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected Ann selected, got %v", ids)
	}
	if m.input.Value() != "" || m.state.Query() != "" {
		t.Fatalf("expected cleared input, got input=%q query=%q", m.input.Value(), m.state.Query())
	}
	if len(m.state.Available()) != 2 || m.state.ListVisible() {
		t.Fatalf("expected Ann removed from available and the list hidden")
	}
}

func TestModel_BackspaceArmsThenRemoves(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m = pick(t, m, 1)
	m = pick(t, m, 2)

	m = send(t, m, backspace())
	if !m.state.Armed() {
		t.Fatalf("expected first backspace to arm")
	}
	if !strings.Contains(m.View(), "backspace again to remove Bob Stone") {
		t.Fatalf("expected armed hint in view:\n%s", m.View())
	}

	m = send(t, m, backspace())
	if ids := selectedIDs(m); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected Bob removed, got %v", ids)
	}
	if m.state.Armed() {
		t.Fatalf("expected arm cleared after removal")
	}
}

func TestModel_BackspaceWithTextEditsQuery(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m = pick(t, m, 1)
	m = send(t, m, typeText("bo"), backspace())

	if m.state.Query() != "b" {
		t.Fatalf("expected query %q, got %q", "b", m.state.Query())
	}
	if m.state.Armed() || len(m.state.Selected()) != 1 {
		t.Fatalf("expected selection untouched, armed=%v selected=%v", m.state.Armed(), selectedIDs(m))
	}
}

func TestModel_TypingCancelsArm(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m = pick(t, m, 3)
	m = send(t, m, backspace(), typeText("a"))
	if m.state.Armed() {
		t.Fatalf("expected typing to cancel the arm")
	}
	if len(m.state.Selected()) != 1 {
		t.Fatalf("expected Cara still selected")
	}
}

func TestModel_ChipRemoveClickRestoresMountOrder(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m = pick(t, m, 1)
	m = send(t, m, click(findZone(t, m, zoneChipRemove, 1)))

	if len(m.state.Selected()) != 0 {
		t.Fatalf("expected no selection, got %v", selectedIDs(m))
	}
	got := model.ContactIDs(m.state.Available())
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("available=%v want %v", got, want)
		}
	}
}

func TestModel_ChipRemoveZoneCoversOnlyTheControl(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m = pick(t, m, 2)
	z := findZone(t, m, zoneChipRemove, 2)
	if z.x0 == 0 {
		t.Fatalf("expected remove control after the chip label, got x0=0")
	}
	// Clicking the chip label is not a removal.
	m = send(t, m, tea.MouseMsg{X: 0, Y: z.y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(m.state.Selected()) != 1 {
		t.Fatalf("expected label click to be ignored")
	}
}

func TestModel_EnterConfirmsAndEscCancels(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m = pick(t, m, 2)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	done := next.(pickerModel)
	if cmd == nil || !done.done {
		t.Fatalf("expected enter to quit")
	}
	res := done.result()
	if !res.Confirmed || len(res.Selected) != 1 || res.Selected[0].ID != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if done.View() != "" {
		t.Fatalf("expected empty view after quitting")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(pickerModel).result().Confirmed {
		t.Fatalf("expected esc to cancel")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	t.Parallel()

	m := send(t, newTestModel(t), tea.KeyMsg{Type: tea.KeyF1})
	if !m.showHelp {
		t.Fatalf("expected help shown")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	if m.showHelp {
		t.Fatalf("expected help hidden")
	}
}

func TestModel_SuggestionsCappedByHeight(t *testing.T) {
	t.Parallel()

	var cs []model.Contact
	for i := 1; i <= 40; i++ {
		cs = append(cs, model.Contact{ID: i, Name: "Person " + strings.Repeat("x", i%3), Email: "p@example.com"})
	}
	m := newPickerModel(cs, Options{})
	m = send(t, m, tea.WindowSizeMsg{Width: 60, Height: 16})

	n := 0
	for _, z := range m.layout().zones {
		if z.kind == zoneSuggestion {
			n++
		}
	}
	if n >= 40 || n < 3 {
		t.Fatalf("expected capped suggestions, got %d", n)
	}
	if !strings.Contains(m.View(), "more") {
		t.Fatalf("expected overflow hint in view")
	}
}

func TestResultText(t *testing.T) {
	t.Parallel()

	if got := (Result{}).Text(); got != "cancelled" {
		t.Fatalf("got %q", got)
	}
	if got := (Result{Confirmed: true}).Text(); got != "no contacts selected" {
		t.Fatalf("got %q", got)
	}
	got := Result{Confirmed: true, Selected: testContacts()[:2]}.Text()
	want := "1\tAnn Hartley\tann@example.com\n2\tBob Stone\tbob@example.com"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
