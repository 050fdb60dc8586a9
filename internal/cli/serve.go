package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ivrflow/internal/server"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the flow API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			provider, err := c.Config.LookupProvider(c.noCache, c.Logger)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				srv := server.New(st, server.WithLookup(provider), server.WithLogger(c.Logger))
				return c.runServer(cmd.Context(), addr, srv.Handler())
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// runServer serves h on addr until ctx is cancelled, then shuts down
// gracefully. A listener failure cancels the shutdown watcher and vice versa.
func (c *CLI) runServer(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("serving flow API", "addr", ln.Addr().String(), "store", c.Config.Store.Backend)
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Warn("graceful shutdown incomplete", "err", err)
			return srv.Close()
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
