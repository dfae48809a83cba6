package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"contact-picker/internal/format"
	"contact-picker/internal/logger"
	"contact-picker/internal/model"
	"contact-picker/internal/picker"
	"contact-picker/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	ContactsPath string
	PrettyJSON   bool
	Format       string
	Strict       bool
	Reinsert     string
	LogFile      string
	Debug        bool

	cfg *store.GlobalConfig
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "contactpicker",
		Short:        "Pick people from a contacts directory (TUI, browser and CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Pick interactively; the selection is printed on enter
  contactpicker

  # Use your own directory
  contactpicker --contacts ~/team.json pick --format text

  # Serve the picker to a browser
  contactpicker web --addr 127.0.0.1:3335
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick(cmd, app, false)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(app.LogFile); err != nil {
			return writeErr(cmd, err)
		}
		logger.SetDebug(app.Debug)
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		logger.Component("cli").Debug("command", "path", cmd.CommandPath(), "args", args)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ContactsPath, "contacts", envOr("CONTACTPICKER_CONTACTS", ""), "Contacts directory (.json, .sqlite or .db; default: config contactsPath, else the built-in list)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CONTACTPICKER_FORMAT", "json"), "Output format ("+strings.Join(format.Formats(), "|")+")")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", envBool("CONTACTPICKER_PRETTY", false), "Pretty-print output")
	cmd.PersistentFlags().BoolVar(&app.Strict, "strict", envBool("CONTACTPICKER_STRICT", false), "Report stale clicks as contract violations (default: config strict)")
	cmd.PersistentFlags().StringVar(&app.Reinsert, "reinsert", envOr("CONTACTPICKER_REINSERT", ""), "Where removed chips return in the list (original|append|name; default: config reinsert, else original)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("CONTACTPICKER_LOG_FILE", ""), "Log file (default: "+logger.DefaultPath()+")")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", envBool("CONTACTPICKER_DEBUG", false), "Log every picker event")

	cmd.AddCommand(newPickCmd(app))
	cmd.AddCommand(newContactsCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newWebTUICmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func (app *App) config() *store.GlobalConfig {
	if app.cfg == nil {
		return &store.GlobalConfig{}
	}
	return app.cfg
}

// contactsPath resolves --contacts / CONTACTPICKER_CONTACTS, then config. Empty means the seed list.
func (app *App) contactsPath() string {
	if p := strings.TrimSpace(app.ContactsPath); p != "" {
		return expandHome(p)
	}
	return expandHome(strings.TrimSpace(app.config().ContactsPath))
}

func (app *App) loadContacts(ctx context.Context) ([]model.Contact, error) {
	return store.LoadContacts(ctx, app.contactsPath())
}

func (app *App) pickerOptions(cmd *cobra.Command) (picker.Options, error) {
	cfg := app.config()

	raw := strings.TrimSpace(app.Reinsert)
	if raw == "" {
		raw = cfg.Reinsert
	}
	policy, err := picker.ParseReinsertPolicy(raw)
	if err != nil {
		return picker.Options{}, err
	}

	strict := cfg.Strict
	if flagOrEnvSet(cmd, "strict", "CONTACTPICKER_STRICT") {
		strict = app.Strict
	}
	return picker.Options{Reinsert: policy, Strict: strict}, nil
}

// childArgs are the persistent flags a subprocess needs to see the same directory and options.
func (app *App) childArgs(cmd *cobra.Command) []string {
	var args []string
	if p := app.contactsPath(); p != "" {
		args = append(args, "--contacts", p)
	}
	if r := strings.TrimSpace(app.Reinsert); r != "" {
		args = append(args, "--reinsert", r)
	}
	if flagOrEnvSet(cmd, "strict", "CONTACTPICKER_STRICT") {
		args = append(args, "--strict="+strconv.FormatBool(app.Strict))
	}
	if p := strings.TrimSpace(app.LogFile); p != "" {
		args = append(args, "--log-file", p)
	}
	if app.Debug {
		args = append(args, "--debug")
	}
	return args
}

func flagOrEnvSet(cmd *cobra.Command, flag, env string) bool {
	if f := cmd.Flag(flag); f != nil && f.Changed {
		return true
	}
	return strings.TrimSpace(os.Getenv(env)) != ""
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + p[1:]
		}
	}
	return p
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
