package cli

import (
	"strings"

	"contact-picker/internal/picker"
	"contact-picker/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ~/.contactpicker/config.json",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the config file and the values in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			opts, err := app.pickerOptions(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg := app.config()
			return writeOut(cmd, app, envelope{
				Data: cfg,
				Meta: map[string]any{
					"path": path,
					"keys": store.ConfigKeys(),
					"effective": map[string]any{
						"contacts":    sourceLabel(app.contactsPath()),
						"reinsert":    string(opts.Reinsert),
						"strict":      opts.Strict,
						"placeholder": cfg.PlaceholderOrDefault(),
						"sessionTtl":  cfg.SessionTTL().String(),
					},
				},
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one config key (an empty value clears it)",
		Long:  "Known keys: " + strings.Join(store.ConfigKeys(), ", "),
		Example: strings.TrimSpace(`
contactpicker config set contactsPath ~/team.db
contactpicker config set reinsert name
contactpicker config set web.sessionTtl 10m
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			if err := store.SetConfigValue(cfg, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if _, err := picker.ParseReinsertPolicy(cfg.Reinsert); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			path, _ := store.ConfigPath()
			return writeOut(cmd, app, envelope{
				Data: cfg,
				Meta: map[string]any{"path": path, "updated": args[0]},
			})
		},
	}
}
