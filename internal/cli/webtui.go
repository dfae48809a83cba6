package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contact-picker/internal/webtui"

	"github.com/spf13/cobra"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the terminal picker in your browser (PTY + WebSocket, experimental)",
		Long: strings.TrimSpace(`
Run the terminal picker over the web via a server-side PTY and a browser terminal emulator.

Notes:
- Experimental demo mode (no auth).
- Each browser tab starts its own ` + "`contactpicker pick`" + ` subprocess on the server.
`),
		Example: strings.TrimSpace(`
contactpicker webtui --addr 127.0.0.1:3334
contactpicker --contacts team.json --reinsert name webtui
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			listenAddr := strings.TrimSpace(addr)
			if !cmd.Flags().Changed("addr") && cfg.WebTUI != nil && strings.TrimSpace(cfg.WebTUI.Addr) != "" {
				listenAddr = strings.TrimSpace(cfg.WebTUI.Addr)
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}
			// Fail here rather than in every spawned session.
			if _, err := app.loadContacts(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if _, err := app.pickerOptions(cmd); err != nil {
				return writeErr(cmd, err)
			}

			childArgs := append(app.childArgs(cmd), "pick", "--format", "text")
			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr: listenAddr,
				Args: childArgs,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, envelope{
				Data: map[string]any{
					"addr":      srv.Addr(),
					"childArgs": childArgs,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: []string{"open http://" + srv.Addr()},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "contactpicker webtui running at http://%s\n", srv.Addr())
			return http.ListenAndServe(srv.Addr(), srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3334", "Bind address (host:port or :port; default: config webtui.addr)")
	return cmd
}
