package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/viant/servicenow-mcp/internal/logging"
	"github.com/viant/servicenow-mcp/mcp"
	mcpconfig "github.com/viant/servicenow-mcp/mcp/config"
)

var (
	cfgPath   string
	overrides []func(cfg *mcpconfig.Config)

	svcOnce sync.Once
	svcInst *mcp.Service
	svcErr  error
)

// setConfigPath remembers the CLI-level -f/--config parameter so that the
// service singleton can be created lazily by whichever sub-command is executed
// first.
func setConfigPath(p string) { cfgPath = p }

// override registers a config adjustment applied before the service is built.
func override(fn func(cfg *mcpconfig.Config)) { overrides = append(overrides, fn) }

// loadConfig reads the optional config file, then applies environment
// variables and command-line overrides, in that order.
func loadConfig(ctx context.Context) (*mcpconfig.Config, error) {
	cfg := &mcpconfig.Config{}
	if cfgPath != "" {
		var err error
		if cfg, err = mcpconfig.Load(ctx, cfgPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	for _, fn := range overrides {
		fn(cfg)
	}
	cfg.Init()
	if debug := os.Getenv("SERVICENOW_MCP_DEBUG_CONFIG"); debug == "1" {
		_ = json.NewEncoder(os.Stderr).Encode(cfg)
	}
	return cfg, nil
}

// newLogger writes JSON logs to stderr; stdout carries the stdio transport.
func newLogger(cfg *mcpconfig.Config) *slog.Logger {
	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger
}

// serviceSingleton initialises an mcp.Service only once and reuses the instance
// across sub-commands within the same CLI invocation.
func serviceSingleton() (*mcp.Service, error) {
	svcOnce.Do(func() {
		ctx := context.Background()
		cfg, err := loadConfig(ctx)
		if err != nil {
			svcErr = err
			return
		}
		svcInst, svcErr = mcp.New(ctx, mcp.WithConfig(cfg), mcp.WithLogger(newLogger(cfg)))
		if svcErr == nil {
			svcErr = svcInst.Start(ctx)
		}
	})
	return svcInst, svcErr
}
