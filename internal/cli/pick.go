package cli

import (
	"strings"

	"contact-picker/internal/model"
	"contact-picker/internal/tui"

	"github.com/spf13/cobra"
)

func newPickCmd(app *App) *cobra.Command {
	var failOnCancel bool

	cmd := &cobra.Command{
		Use:     "pick",
		Aliases: []string{"tui"},
		Short:   "Pick contacts in the terminal and print the selection",
		Long: strings.TrimSpace(`
Open the picker in the terminal. Type to filter, click a suggestion to add it,
click a chip's remove control or press backspace twice on an empty field to take
it back out. Enter prints the selection; esc or ctrl+c cancels.
`),
		Example: strings.TrimSpace(`
contactpicker pick --format text
contactpicker --reinsert name pick --fail-on-cancel
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick(cmd, app, failOnCancel)
		},
	}

	cmd.Flags().BoolVar(&failOnCancel, "fail-on-cancel", false, "Exit non-zero when the picker is cancelled")
	return cmd
}

func runPick(cmd *cobra.Command, app *App, failOnCancel bool) error {
	contacts, err := app.loadContacts(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	opts, err := app.pickerOptions(cmd)
	if err != nil {
		return writeErr(cmd, err)
	}

	cfg := app.config()
	tuiOpts := tui.Options{
		Picker:      opts,
		Placeholder: cfg.PlaceholderOrDefault(),
	}
	if cfg.TUI != nil {
		tuiOpts.Glyphs = cfg.TUI.Glyphs
		tuiOpts.Theme = cfg.TUI.Theme
	}

	res, err := tui.Run(contacts, tuiOpts)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := writeOut(cmd, app, envelope{
		Data: res,
		Meta: map[string]any{
			"count":  len(res.Selected),
			"ids":    model.ContactIDs(res.Selected),
			"source": sourceLabel(app.contactsPath()),
		},
	}); err != nil {
		return err
	}
	if failOnCancel && !res.Confirmed {
		return writeErr(cmd, errCancelled)
	}
	return nil
}

func sourceLabel(path string) string {
	if path == "" {
		return "seed"
	}
	return path
}

