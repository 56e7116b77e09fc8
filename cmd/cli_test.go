package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mcpconfig "github.com/viant/servicenow-mcp/mcp/config"
)

func TestExtractConfigPath(t *testing.T) {
	var testCases = []struct {
		args   []string
		expect string
	}{
		{args: []string{"serve", "-f", "cfg.yaml"}, expect: "cfg.yaml"},
		{args: []string{"--config", "s3://bucket/cfg.yaml", "list-tools"}, expect: "s3://bucket/cfg.yaml"},
		{args: []string{"exec", "--config=cfg.json", "-n", "read-record"}, expect: "cfg.json"},
		{args: []string{"serve", "-f"}, expect: ""},
		{args: []string{"serve"}, expect: ""},
	}
	for _, testCase := range testCases {
		assert.EqualValues(t, testCase.expect, extractConfigPath(testCase.args), "%v", testCase.args)
	}
}

func TestExecCmd_Arguments(t *testing.T) {
	file := filepath.Join(t.TempDir(), "args.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"table":"incident","query":"active=true"}`), 0o600))

	var testCases = []struct {
		description string
		cmd         *ExecCmd
		expect      map[string]interface{}
		expectErr   bool
	}{
		{description: "none", cmd: &ExecCmd{}, expect: map[string]interface{}{}},
		{description: "inline", cmd: &ExecCmd{Inline: `{"table":"incident"}`}, expect: map[string]interface{}{"table": "incident"}},
		{description: "file", cmd: &ExecCmd{File: file}, expect: map[string]interface{}{"table": "incident", "query": "active=true"}},
		{description: "invalid", cmd: &ExecCmd{Inline: `[1]`}, expectErr: true},
		{description: "missing file", cmd: &ExecCmd{File: file + ".missing"}, expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := testCase.cmd.arguments()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("instance: dev1\ntransport: stdio\ntools:\n  - read-\n"), 0o600))

	t.Setenv(mcpconfig.EnvInstance, "dev2")
	setConfigPath(file)
	overrides = nil
	defer func() {
		setConfigPath("")
		overrides = nil
	}()
	override(func(cfg *mcpconfig.Config) { cfg.Transport = mcpconfig.TransportHTTP })

	cfg, err := loadConfig(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, "dev2", cfg.Instance)
	assert.EqualValues(t, mcpconfig.TransportHTTP, cfg.Transport)
	assert.EqualValues(t, mcpconfig.DefaultAddr, cfg.Addr)
	assert.EqualValues(t, []string{"read-"}, cfg.Tools)
}

func TestTelemetryConfig(t *testing.T) {
	previous := Version
	Version = "v1.2.3"
	defer func() { Version = previous }()

	cfg := &mcpconfig.Config{Telemetry: &mcpconfig.Telemetry{OTLPEndpoint: "localhost:4318", Tracing: true}}
	cfg.Init()
	actual := telemetryConfig(cfg)
	assert.EqualValues(t, "v1.2.3", actual.ServiceVersion)
	assert.EqualValues(t, "servicenow-mcp", actual.ServiceName)
	assert.EqualValues(t, "localhost:4318", actual.OTLPEndpoint)
	assert.True(t, actual.TracingEnabled)
	assert.False(t, actual.MetricsEnabled)
}
