package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"contact-picker/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the picker to a browser (server-rendered, Datastar)",
		Long: strings.TrimSpace(`
Serve the picker from a local HTTP server. Each page load mounts its own picker;
events go to the server and come back as Datastar patches of the chips and the
suggestion list. Idle pickers are dropped after --session-ttl.
`),
		Example: strings.TrimSpace(`
contactpicker web --addr 127.0.0.1:3335
contactpicker --contacts team.db web --addr :3335 --open=false
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()

			listenAddr := strings.TrimSpace(addr)
			if !cmd.Flags().Changed("addr") && cfg.Web != nil && strings.TrimSpace(cfg.Web.Addr) != "" {
				listenAddr = strings.TrimSpace(cfg.Web.Addr)
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}
			sessionTTL := ttl
			if !cmd.Flags().Changed("session-ttl") {
				sessionTTL = cfg.SessionTTL()
			}

			contacts, err := app.loadContacts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			opts, err := app.pickerOptions(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:        listenAddr,
				Contacts:    contacts,
				Picker:      opts,
				Placeholder: cfg.PlaceholderOrDefault(),
				SessionTTL:  sessionTTL,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, envelope{
				Data: map[string]any{
					"addr":       actualAddr,
					"url":        url,
					"contacts":   len(contacts),
					"source":     sourceLabel(app.contactsPath()),
					"reinsert":   string(opts.Reinsert),
					"strict":     opts.Strict,
					"sessionTtl": sessionTTL.String(),
					"opened":     opened,
					"openError":  openErr,
					"startedAt":  time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "contactpicker web running at %s (%d contacts)\n", url, len(contacts))
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			return http.Serve(ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3335", "Bind address (host:port or :port; default: config web.addr)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the UI in your default browser")
	cmd.Flags().DurationVar(&ttl, "session-ttl", 30*time.Minute, "Drop pickers idle for this long (default: config web.sessionTtl)")
	return cmd
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		return exec.Command("xdg-open", path).Run()
	}
}
