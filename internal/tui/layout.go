package tui

import (
	"fmt"
	"strings"

	"contact-picker/internal/docs"
	"contact-picker/internal/model"

	"github.com/charmbracelet/lipgloss"
)

type zoneKind int

const (
	zoneInput zoneKind = iota + 1
	zoneChipRemove
	zoneSuggestion
)

// zone is a clickable cell range [x0, x1) on row y.
type zone struct {
	kind zoneKind
	id   int
	y    int
	x0   int
	x1   int
}

type screen struct {
	lines []string
	zones []zone
}

func (s *screen) add(line string) int {
	s.lines = append(s.lines, line)
	return len(s.lines) - 1
}

func (s screen) hit(x, y int) (zone, bool) {
	for _, z := range s.zones {
		if z.y == y && x >= z.x0 && x < z.x1 {
			return z, true
		}
	}
	return zone{}, false
}

// layout renders the picker and records where the clickable parts landed, so
// mouse handling and View agree on positions.
func (m pickerModel) layout() screen {
	var sc screen
	w := m.bodyWidth()

	sc.add(styleTitle().Render(m.title))
	sc.add("")
	m.layoutChips(&sc, w)
	sc.add("")

	y := sc.add(renderInputLine(w, m.input.View()))
	sc.zones = append(sc.zones, zone{kind: zoneInput, y: y, x0: 0, x1: w})

	sugg := m.state.Suggestions()
	limit := m.suggestionLimit(len(sc.lines))
	for i, c := range sugg {
		if i >= limit {
			sc.add(styleMuted().Render(fmt.Sprintf("  %s %d more", glyphEllipsis(), len(sugg)-limit)))
			break
		}
		y := sc.add(fitLine(renderSuggestion(c), w))
		sc.zones = append(sc.zones, zone{kind: zoneSuggestion, id: c.ID, y: y, x0: 0, x1: w})
	}

	sc.add("")
	sc.add(fitLine(m.footer(), w))

	if m.showHelp {
		sc.add("")
		for _, l := range strings.Split(RenderMarkdown(docs.MustGet("terminal"), w), "\n") {
			sc.add(l)
		}
	}
	return sc
}

func (m pickerModel) layoutChips(sc *screen, w int) {
	chips := m.state.Selected()
	if len(chips) == 0 {
		sc.add(styleMuted().Render("No one selected yet."))
		return
	}
	armed := m.state.Armed()

	var row strings.Builder
	x := 0
	y := len(sc.lines)
	for _, c := range chips {
		chip, removeAt := renderChip(c, armed)
		cw := lipgloss.Width(chip)
		if x > 0 && x+1+cw > w {
			sc.add(row.String())
			row.Reset()
			x = 0
			y = len(sc.lines)
		}
		if x > 0 {
			row.WriteString(" ")
			x++
		}
		row.WriteString(chip)
		sc.zones = append(sc.zones, zone{kind: zoneChipRemove, id: c.ID, y: y, x0: x + removeAt, x1: x + cw})
		x += cw
	}
	sc.add(row.String())
}

// renderChip returns the chip and the cell offset where its remove control starts.
func renderChip(c model.Contact, armed bool) (string, int) {
	left := styleChip(armed).Render(" " + c.Initials() + " " + c.Name + " ")
	remove := styleChipRemove(armed).Render(glyphRemove())
	pad := styleChip(armed).Render(" ")
	return left + remove + pad, lipgloss.Width(left)
}

func renderSuggestion(c model.Contact) string {
	return " " + styleAvatar().Render(" "+c.Initials()+" ") + " " + c.Name + "  " + styleEmail().Render(c.Email)
}

func (m pickerModel) suggestionLimit(used int) int {
	if m.height <= 0 {
		return 12
	}
	// Leave room for the blank line, footer and "more" hint.
	n := m.height - used - 3
	if n < 3 {
		n = 3
	}
	return n
}

func (m pickerModel) footer() string {
	if last, ok := m.state.LastSelected(); ok && m.state.Armed() {
		return styleChip(true).Render(" backspace again to remove "+last.Name+" ") + " " + styleMuted().Render("type to cancel")
	}
	sep := " " + glyphSeparator() + " "
	parts := []string{
		fmt.Sprintf("%d selected", len(m.state.Selected())),
		"enter confirm",
		"esc quit",
		"f1 help",
	}
	return styleMuted().Render(strings.Join(parts, sep))
}
