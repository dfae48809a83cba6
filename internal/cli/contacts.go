package cli

import (
	"fmt"
	"strconv"
	"strings"

	"contact-picker/internal/model"
	"contact-picker/internal/picker"
	"contact-picker/internal/store"

	"github.com/spf13/cobra"
)

type contactList []model.Contact

func (cs contactList) Text() string {
	if len(cs) == 0 {
		return "no contacts"
	}
	var b strings.Builder
	for _, c := range cs {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", c.ID, c.Name, c.Email)
	}
	return strings.TrimRight(b.String(), "\n")
}

type contactDetail model.Contact

func (c contactDetail) Text() string {
	lines := []string{
		"id:     " + strconv.Itoa(c.ID),
		"name:   " + c.Name,
		"email:  " + c.Email,
	}
	if c.AvatarURL != "" {
		lines = append(lines, "avatar: "+c.AvatarURL)
	}
	return strings.Join(lines, "\n")
}

func newContactsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Inspect, import and export contact directories",
	}
	cmd.AddCommand(newContactsListCmd(app))
	cmd.AddCommand(newContactsFilterCmd(app))
	cmd.AddCommand(newContactsShowCmd(app))
	cmd.AddCommand(newContactsImportCmd(app))
	cmd.AddCommand(newContactsExportCmd(app))
	return cmd
}

func newContactsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the directory in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := app.loadContacts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: contactList(cs),
				Meta: map[string]any{"count": len(cs), "source": sourceLabel(app.contactsPath())},
			})
		},
	}
}

func newContactsFilterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <query>",
		Short: "Show the suggestions a query would produce",
		Long: strings.TrimSpace(`
Apply the picker's filter: a case-insensitive substring match on the name,
keeping directory order. An empty query matches everyone.
`),
		Example: `contactpicker contacts filter an --format text`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := app.loadContacts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			opts, err := app.pickerOptions(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, _ := picker.New(cs, opts).QueryChanged(args[0])
			matches := st.Matches()
			return writeOut(cmd, app, envelope{
				Data: contactList(matches),
				Meta: map[string]any{"count": len(matches), "query": args[0]},
			})
		},
	}
}

func newContactsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid contact id: %q", args[0]))
			}
			cs, err := app.loadContacts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := store.FindContact(cs, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: contactDetail(c)})
		},
	}
}

func newContactsImportCmd(app *App) *cobra.Command {
	var into string
	var replace bool
	var use bool

	cmd := &cobra.Command{
		Use:   "import <contacts.json>",
		Short: "Copy a JSON directory into a SQLite directory",
		Long: strings.TrimSpace(`
Import a JSON contacts list into a SQLite file, keeping the list order as the
display order. Contacts with an existing id are updated in place; new ones go
after the current tail. --replace empties the table first.
`),
		Example: strings.TrimSpace(`
contactpicker contacts import team.json --into ~/.contactpicker/contacts.db
contactpicker contacts import team.json --into team.db --replace --use
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := expandHome(strings.TrimSpace(into))
			if dst == "" {
				return writeErr(cmd, fmt.Errorf("contacts import: missing --into"))
			}
			if kind, err := store.SourceKindForPath(dst); err != nil || kind != store.SourceSQLite {
				return writeErr(cmd, fmt.Errorf("contacts import: --into must be a .sqlite or .db file, got %q", dst))
			}
			cs, err := store.LoadContactsJSON(expandHome(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := store.ImportContactsSQLite(cmd.Context(), dst, cs, replace)
			if err != nil {
				return writeErr(cmd, err)
			}

			hints := []string{"contactpicker --contacts " + dst + " contacts list"}
			if use {
				cfg := app.config()
				cfg.ContactsPath = dst
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
				hints = []string{"contactpicker contacts list"}
			}
			return writeOut(cmd, app, envelope{
				Data:  res,
				Meta:  map[string]any{"used": use},
				Hints: hints,
			})
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "Destination SQLite file (.sqlite or .db)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Drop existing contacts before importing")
	cmd.Flags().BoolVar(&use, "use", false, "Make the imported file the configured contactsPath")
	return cmd
}

func newContactsExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <contacts.json>",
		Short: "Write the current directory out as JSON",
		Long: strings.TrimSpace(`
Write the directory selected by --contacts (or the seed list) to a JSON file in
display order. The result can be edited and imported again.
`),
		Example: strings.TrimSpace(`
contactpicker contacts export seed.json
contactpicker --contacts team.db contacts export team.json
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := expandHome(strings.TrimSpace(args[0]))
			if kind, err := store.SourceKindForPath(dst); err != nil || kind != store.SourceJSON {
				return writeErr(cmd, fmt.Errorf("contacts export: destination must be a .json file, got %q", args[0]))
			}
			cs, err := app.loadContacts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.WriteContactsJSON(dst, cs); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data:  map[string]any{"path": dst, "exported": len(cs)},
				Meta:  map[string]any{"source": sourceLabel(app.contactsPath())},
				Hints: []string{"contactpicker contacts import " + dst + " --into contacts.db"},
			})
		},
	}
}
