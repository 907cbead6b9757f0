package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rgehrsitz/facplan/internal/api"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning operations as a JSON API",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			addr := a.settings.Addr
			if v, _ := cmd.Flags().GetString("addr"); v != "" {
				addr = v
			}

			server := api.New(api.Config{
				Addr:    addr,
				Log:     a.log,
				Planner: a.planner,
				Version: version,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		}),
	}
	cmd.Flags().String("addr", "", "Listen address (default $FACPLAN_ADDR or :8080)")
	return cmd
}
