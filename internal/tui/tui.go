package tui

import (
	"contact-picker/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the picker until the user confirms or quits.
func Run(contacts []model.Contact, opts Options) (Result, error) {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	applyGlyphPreference(opts.Glyphs)

	m := newPickerModel(contacts, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return Result{}, err
	}
	pm, ok := final.(pickerModel)
	if !ok {
		return Result{}, nil
	}
	return pm.result(), nil
}
