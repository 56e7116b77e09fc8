package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/mcp"
	"github.com/viant/servicenow-mcp/internal/telemetry"
	mcpconfig "github.com/viant/servicenow-mcp/mcp/config"
)

const shutdownTimeout = 10 * time.Second

// Version is reported as service.version; set at build time with
// -ldflags "-X github.com/viant/servicenow-mcp/cmd.Version=v1.2.3".
var Version = "dev"

// ServeCmd launches an MCP server that exposes the record tools over stdio
// or HTTP. Flags override the transport and address from the config file.
type ServeCmd struct {
	Transport string `short:"t" long:"transport" description:"MCP transport" choice:"stdio" choice:"http"`
	Addr      string `short:"a" long:"addr" description:"HTTP listen address (http transport)"`
}

func (c *ServeCmd) Execute(_ []string) error {
	override(func(cfg *mcpconfig.Config) {
		if c.Transport != "" {
			cfg.Transport = c.Transport
		}
		if c.Addr != "" {
			cfg.Addr = c.Addr
		}
	})
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	cfg := svc.Config()
	logger := svc.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetryConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTelemetry(flushCtx)
		_ = svc.Shutdown(flushCtx)
	}()

	mcpServer, err := mcp.NewServer(svc.NewHandler, cfg.Server)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	switch cfg.Transport {
	case mcpconfig.TransportHTTP:
		httpSrv := mcpServer.HTTP(ctx, cfg.Addr)
		httpSrv.Handler = svc.HTTPHandler(httpSrv.Handler)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
				return
			}
			errCh <- nil
		}()
		logger.InfoContext(ctx, "MCP server listening", "transport", cfg.Transport, "addr", httpSrv.Addr)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = httpSrv.Shutdown(closeCtx)
		}()
	default:
		stdioSrv := mcpServer.Stdio(ctx)
		go func() {
			errCh <- stdioSrv.ListenAndServe()
		}()
		logger.InfoContext(ctx, "MCP server running", "transport", cfg.Transport, "pid", os.Getpid())
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}

func telemetryConfig(cfg *mcpconfig.Config) telemetry.Config {
	return telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		TracingEnabled: cfg.Telemetry.Tracing,
		MetricsEnabled: cfg.Telemetry.Metrics,
	}
}
