package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/aside/internal/app"
	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/infrastructure/config"
	"github.com/doeshing/aside/internal/infrastructure/panel"
	"github.com/doeshing/aside/internal/ports"
)

// NewServeCommand creates the serve command running the panel bridge.
func NewServeCommand(container *app.Container, clipboard ports.Clipboard) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local panel bridge",
		Long: "Serve starts the localhost WebSocket bridge the sidebar panel connects to\n" +
			"and watches the config file, reconnecting on every settings change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// First connection attempt runs in the background so the panel is
			// reachable immediately even while credentials resolve.
			go func() {
				if _, err := container.Session.Connect(ctx); err != nil {
					container.Logger.Error("initial connect failed", err, nil)
				}
			}()

			watcher := config.NewWatcher(container.SettingsLoader, container.Logger)
			go func() {
				err := watcher.Run(ctx, func(settings domain.ConnectionSettings) {
					if _, err := container.Session.UpdateSettings(ctx, settings); err != nil {
						container.Logger.Error("reconnect after config change failed", err, nil)
					}
				})
				if err != nil && ctx.Err() == nil {
					container.Logger.Error("config watcher stopped", err, nil)
				}
			}()

			server := panel.NewServer(container.Session, clipboard, container.Logger, port)
			return server.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", DefaultPanelPort, "Port to bind on 127.0.0.1")
	return cmd
}
