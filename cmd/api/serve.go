package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/headline-service/internal/delivery/http/handler"
	"github.com/user/headline-service/internal/delivery/http/router"
	"github.com/user/headline-service/internal/site"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the headline API and the per-site listeners",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := zap.L()
		env, err := initEnvironment(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		servers, err := buildServers(port, env.Sites, env.Handler, logger)
		if err != nil {
			return err
		}
		return runServers(ctx, servers, cfg.Server.ShutdownTimeout, logger)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "API port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildServers returns the API server followed by one server per site that
// declares a port.
func buildServers(apiPort int, sites *site.Registry, h *handler.Handler, logger *zap.Logger) ([]*http.Server, error) {
	servers := []*http.Server{newServer(apiPort, router.New(h, logger))}
	for _, s := range sites.All() {
		if s.Port == 0 {
			continue
		}
		if s.Port == apiPort {
			return nil, eris.Errorf("site %s: port %d is already used by the API", s.Name, s.Port)
		}
		servers = append(servers, newServer(s.Port, router.NewSite(h, s.Name, logger)))
	}
	return servers, nil
}

func newServer(port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		// A scrape can take the full page load timeout plus settle time.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

// runServers serves until ctx is done or one server fails, then shuts all of
// them down.
func runServers(ctx context.Context, servers []*http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("Starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrapf(err, "listen on %s", srv.Addr)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, eris.Wrapf(err, "shutdown %s", srv.Addr))
			}
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
