package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raysh454/pharmaflow/internal/app"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the HTTP + WebSocket API. SIGINT or SIGTERM stops accepting
connections, waits for in-flight requests up to server.shutdown_timeout,
then exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.ListenAddr = addr
			}
			return runServe(cmd.Context(), cfg.Server, &cfg.Config)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.listen_addr)")
	return cmd
}

func runServe(ctx context.Context, srvCfg server.Config, appCfg *app.Config) error {
	logger := logging.New("server")

	comps, err := app.NewComponents(appCfg, logger)
	if err != nil {
		return err
	}
	orch, err := app.NewOrchestrator(appCfg, comps, logger)
	if err != nil {
		_ = comps.Close()
		return err
	}

	srv, err := server.NewServer(srvCfg, orch, logger)
	if err != nil {
		_ = orch.Close(context.Background())
		return err
	}
	httpSrv := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			logging.Field{Key: "addr", Value: httpSrv.Addr},
			logging.Field{Key: "agents_mode", Value: string(appCfg.Agents.Mode)})
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = orch.Close(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := orch.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
