package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadapter "todohub/internal/adapter/http"
	"todohub/internal/adapter/telemetry"
	"todohub/pkg/config"
)

type serveOptions struct {
	port  string
	stdio bool
}

func serveCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the MCP endpoint",
		Long: `Start the todo service.

The REST API and the streamable HTTP MCP endpoint share one in-memory store.
With --stdio the same store is also served as MCP over stdin/stdout.

Examples:
  todohub serve
  todohub serve --port 9000
  todohub serve --stdio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "HTTP port (overrides PORT)")
	cmd.Flags().BoolVar(&opts.stdio, "stdio", false, "also serve MCP over stdin/stdout")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if opts.port != "" {
		cfg.Port = opts.port
	}

	if opts.stdio && !cfg.MCPEnabled {
		return errors.New("--stdio requires MCP_ENABLED=true")
	}

	configureGin(cfg.IsProduction(), opts.stdio, os.Stderr)

	logger, err := config.NewLokiLogger(cfg.ServiceName, cfg.LokiURL)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger.Zap())
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics := tel.AppMetrics
	metrics.StartSystemMetrics(ctx)

	container := httpadapter.NewContainer(cfg, logger, tel.NewTelemetryProbe(logger.Logger), metrics)

	var metricsHandler http.Handler
	if cfg.MetricsPort == "" {
		metricsHandler = tel.MetricsHandler()
	}

	server := httpadapter.NewServer(cfg, container, metrics, logger, metricsHandler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.ListenAndServe)

	if opts.stdio {
		g.Go(func() error {
			// The stdio client going away ends the process.
			defer stop()

			err := container.MCPServer.ServeStdio(gctx, os.Stdin, os.Stdout)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		logger.Logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		return errors.Join(server.Shutdown(shutdownCtx), tel.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Logger.Error("Server stopped with error", zap.Error(err))
		return err
	}

	return nil
}

// configureGin switches gin to release mode in production. With stdio, stdout
// carries MCP frames only, so gin output goes to stderr as well.
func configureGin(production, stdio bool, stderr io.Writer) {
	if production || stdio {
		gin.SetMode(gin.ReleaseMode)
	}

	if stdio {
		gin.DefaultWriter = stderr
	}
}
